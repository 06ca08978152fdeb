package store

import (
	"fmt"
	"time"
)

// ImportRun is the persisted record of one ETL pass over the intake buffer.
// It is what turns silently dropped rows into an auditable number.
type ImportRun struct {
	ID              int64      `json:"id"`
	RunID           string     `json:"run_id"`
	Status          string     `json:"status"`
	RawRows         int64      `json:"raw_rows"`
	FactsLoaded     int64      `json:"facts_loaded"`
	RowsRejected    int64      `json:"rows_rejected"`
	DimsUpserted    int64      `json:"dims_upserted"`
	RejectionSample string     `json:"rejection_sample"`
	ErrorDetail     string     `json:"error_detail"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at"`
}

const importRunSelectCols = `id, run_id, status, raw_rows, facts_loaded, rows_rejected,
dims_upserted, rejection_sample, error_detail, started_at, finished_at`

func scanImportRun(row interface{ Scan(...any) error }) (*ImportRun, error) {
	var r ImportRun
	var startedAt, finishedAt any
	err := row.Scan(&r.ID, &r.RunID, &r.Status, &r.RawRows, &r.FactsLoaded, &r.RowsRejected,
		&r.DimsUpserted, &r.RejectionSample, &r.ErrorDetail, &startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}
	r.StartedAt = parseTime(startedAt)
	r.FinishedAt = parseTimePtr(finishedAt)
	return &r, nil
}

func (db *DB) CreateImportRun(runID string) error {
	_, err := db.Exec(db.Q(`INSERT INTO import_runs (run_id) VALUES (?)`), runID)
	if err != nil {
		return fmt.Errorf("create import run: %w", err)
	}
	return nil
}

func (db *DB) FinishImportRun(runID, status string, rawRows, factsLoaded, rowsRejected, dimsUpserted int64, rejectionSample, errorDetail string) error {
	_, err := db.Exec(db.Q(`UPDATE import_runs SET status=?, raw_rows=?, facts_loaded=?, rows_rejected=?,
		dims_upserted=?, rejection_sample=?, error_detail=?, finished_at=datetime('now','localtime')
		WHERE run_id=?`),
		status, rawRows, factsLoaded, rowsRejected, dimsUpserted, rejectionSample, errorDetail, runID)
	if err != nil {
		return fmt.Errorf("finish import run: %w", err)
	}
	return nil
}

func (db *DB) GetImportRun(runID string) (*ImportRun, error) {
	row := db.QueryRow(db.Q(`SELECT `+importRunSelectCols+` FROM import_runs WHERE run_id=?`), runID)
	return scanImportRun(row)
}

func (db *DB) ListImportRuns(limit int) ([]*ImportRun, error) {
	rows, err := db.Query(db.Q(`SELECT `+importRunSelectCols+` FROM import_runs ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []*ImportRun
	for rows.Next() {
		r, err := scanImportRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
