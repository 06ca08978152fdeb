package etl

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"prodpulse/store"
)

// Invalidator drops any cached view snapshots after facts change.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Importer runs the full normalize-then-load pass over the intake buffer
// and leaves a persisted, published trail of what happened. Dimensions load
// first so the fact loader can resolve codes against a complete store.
type Importer struct {
	db         *store.DB
	normalizer *Normalizer
	loader     *Loader
	cache      Invalidator
	siteID     string
	topic      string
	sampleSize int
}

type ImporterConfig struct {
	DB         *store.DB
	Cache      Invalidator // optional
	SiteID     string
	Topic      string
	SampleSize int
}

func NewImporter(cfg ImporterConfig) *Importer {
	sample := cfg.SampleSize
	if sample <= 0 {
		sample = 10
	}
	return &Importer{
		db:         cfg.DB,
		normalizer: NewNormalizer(cfg.DB),
		loader:     NewLoader(cfg.DB),
		cache:      cfg.Cache,
		siteID:     cfg.SiteID,
		topic:      cfg.Topic,
		sampleSize: sample,
	}
}

// Run executes one import pass. There is no transactional wrapping: an
// interrupted run leaves whatever was already committed, and re-running
// is safe for dimensions (upsert) but duplicates already-loaded facts.
func (im *Importer) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		SiteID:    im.siteID,
		StartedAt: time.Now(),
	}
	if err := im.db.CreateImportRun(report.RunID); err != nil {
		return nil, fmt.Errorf("importer: %w", err)
	}

	rows, err := im.db.ListRawRows()
	if err != nil {
		im.finish(report, "failed", err.Error())
		return nil, fmt.Errorf("importer: %w", err)
	}
	report.RawRows = int64(len(rows))

	counts, err := im.normalizer.Run(rows)
	report.Dimensions = counts
	if err != nil {
		im.finish(report, "failed", err.Error())
		return nil, fmt.Errorf("importer: %w", err)
	}

	loaded, rejections := im.loader.Run(rows)
	report.FactsLoaded = loaded
	report.RowsRejected = int64(len(rejections))
	if len(rejections) > im.sampleSize {
		rejections = rejections[:im.sampleSize]
	}
	report.Rejections = rejections

	im.finish(report, "completed", "")
	im.publish(report)

	if im.cache != nil && loaded > 0 {
		im.cache.Invalidate(ctx)
	}

	log.Printf("etl: run %s done: %d raw, %d loaded, %d rejected, %d dimension keys",
		report.RunID, report.RawRows, report.FactsLoaded, report.RowsRejected, counts.Total())
	return report, nil
}

func (im *Importer) finish(report *Report, status, errDetail string) {
	report.FinishedAt = time.Now()
	err := im.db.FinishImportRun(report.RunID, status,
		report.RawRows, report.FactsLoaded, report.RowsRejected,
		report.Dimensions.Total(), report.SampleJSON(), errDetail)
	if err != nil {
		log.Printf("etl: finish run %s: %v", report.RunID, err)
	}
}

// publish stages the run report in the outbox; the messaging drainer
// delivers it to Kafka when a broker is reachable.
func (im *Importer) publish(report *Report) {
	if im.topic == "" {
		return
	}
	payload, err := report.Encode()
	if err != nil {
		log.Printf("etl: encode report %s: %v", report.RunID, err)
		return
	}
	if err := im.db.EnqueueOutbox(im.topic, payload, "import_report", im.siteID); err != nil {
		log.Printf("etl: enqueue report %s: %v", report.RunID, err)
	}
}
