package etl

import (
	"encoding/json"
	"time"

	"prodpulse/store"
)

// RejectedRow pairs a dropped raw line with the reason it was dropped.
type RejectedRow struct {
	Reason string        `json:"reason"`
	Row    *store.RawRow `json:"row"`
}

// DimensionCounts tallies how many distinct natural keys each dimension
// received during a run.
type DimensionCounts struct {
	Customers   int64 `json:"customers"`
	Employees   int64 `json:"employees"`
	Items       int64 `json:"items"`
	Machines    int64 `json:"machines"`
	Operations  int64 `json:"operations"`
	Departments int64 `json:"departments"`
}

func (c DimensionCounts) Total() int64 {
	return c.Customers + c.Employees + c.Items + c.Machines + c.Operations + c.Departments
}

// Report summarizes one import run. Rows are never dropped silently: the
// count and a capped sample of the rejected lines travel with the report.
type Report struct {
	RunID        string          `json:"run_id"`
	SiteID       string          `json:"site_id"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   time.Time       `json:"finished_at"`
	RawRows      int64           `json:"raw_rows"`
	FactsLoaded  int64           `json:"facts_loaded"`
	RowsRejected int64           `json:"rows_rejected"`
	Dimensions   DimensionCounts `json:"dimensions"`
	Rejections   []RejectedRow   `json:"rejection_sample"`
}

// SampleJSON renders the rejection sample for persistence alongside the run.
func (r *Report) SampleJSON() string {
	if len(r.Rejections) == 0 {
		return "[]"
	}
	data, err := json.Marshal(r.Rejections)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func (r *Report) Encode() ([]byte, error) {
	return json.Marshal(r)
}
