package www

import (
	"net/http/httptest"
	"testing"
)

func TestQueryLimit(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 200},
		{"limit=50", 50},
		{"limit=0", 200}, // LIMIT 0 would return nothing
		{"limit=-3", 200},
		{"limit=abc", 200},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/api/records?"+tt.query, nil)
		if got := queryLimit(r, 200); got != tt.want {
			t.Errorf("queryLimit(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}
