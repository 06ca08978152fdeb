package viewcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"prodpulse/store"
)

const kpiKey = "prodpulse:views:kpi"

// Cache keeps hot view snapshots in Redis so dashboards polling the KPI
// endpoint do not rescan the fact table on every hit. It exists for latency
// only: every method degrades to a miss or a no-op when Redis is absent,
// and the importer invalidates it after each fact load.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps an optional Redis client. A nil client yields a cache that
// always misses, which keeps callers free of nil checks.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) GetKPI(ctx context.Context) (*store.KPISnapshot, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, kpiKey).Bytes()
	if err != nil {
		return nil, false
	}
	var k store.KPISnapshot
	if err := json.Unmarshal(data, &k); err != nil {
		return nil, false
	}
	return &k, true
}

func (c *Cache) SetKPI(ctx context.Context, k *store.KPISnapshot) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(k)
	if err != nil {
		return
	}
	c.client.Set(ctx, kpiKey, data, c.ttl)
}

// Invalidate drops every cached snapshot. Called on every fact insert so
// correctness never depends on the TTL.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, kpiKey)
}
