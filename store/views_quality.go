package store

import (
	"database/sql"
	"time"
)

// Quality grades, from best to worst. The bands are evaluated in order and
// the first match wins.
const (
	GradePerfect          = "Perfect"
	GradeExcellent        = "Excellent"
	GradeGood             = "Good"
	GradeNeedsImprovement = "Needs Improvement"
	GradeCritical         = "Critical"
)

type QualityRow struct {
	RecordID             int64     `json:"record_id"`
	DocNum               string    `json:"doc_num"`
	DocDate              time.Time `json:"doc_date"`
	CustomerCode         *string   `json:"customer_code"`
	ItemCode             *string   `json:"item_code"`
	ProducedQty          int64     `json:"produced_qty"`
	RejectedQty          int64     `json:"rejected_qty"`
	RejectionRatePercent float64   `json:"rejection_rate_percent"`
	Grade                string    `json:"quality_grade"`
}

// GradeFor classifies a produced/rejected pair into a rejection rate and a
// quality grade. The rate here is rejects over total units handled
// (produced + rejected), so 95 good and 5 bad grades as exactly 5%; the
// dashboard's rejected-over-produced ratio is a different metric and stays
// separate. Callers must exclude the produced=0, rejected=0 case first:
// "nothing happened" is not the same as "perfect quality".
func GradeFor(produced, rejected int64) (float64, string) {
	if rejected == 0 {
		return 0, GradePerfect
	}
	rate := float64(rejected) * 100.0 / float64(produced+rejected)
	switch {
	case rate <= 5:
		return rate, GradeExcellent
	case rate <= 10:
		return rate, GradeGood
	case rate <= 20:
		return rate, GradeNeedsImprovement
	default:
		return rate, GradeCritical
	}
}

// QualityRows grades each production record with activity. Records where
// nothing was produced and nothing was rejected are excluded entirely.
func (db *DB) QualityRows(limit int) ([]*QualityRow, error) {
	rows, err := db.Query(db.Q(`SELECT id, doc_num, doc_date, customer_code, item_code, produced_qty, rejected_qty
		FROM production_records
		WHERE produced_qty + rejected_qty > 0
		ORDER BY doc_date DESC, id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*QualityRow
	for rows.Next() {
		var q QualityRow
		var docDate any
		var custCode, itemCode sql.NullString
		if err := rows.Scan(&q.RecordID, &q.DocNum, &docDate, &custCode, &itemCode, &q.ProducedQty, &q.RejectedQty); err != nil {
			return nil, err
		}
		q.DocDate = parseTime(docDate)
		if custCode.Valid {
			q.CustomerCode = &custCode.String
		}
		if itemCode.Valid {
			q.ItemCode = &itemCode.String
		}
		q.RejectionRatePercent, q.Grade = GradeFor(q.ProducedQty, q.RejectedQty)
		out = append(out, &q)
	}
	return out, rows.Err()
}

// QualityGradeCounts rolls the graded rows up into a count per grade.
func (db *DB) QualityGradeCounts() (map[string]int64, error) {
	rows, err := db.Query(`SELECT produced_qty, rejected_qty
		FROM production_records
		WHERE produced_qty + rejected_qty > 0`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var produced, rejected int64
		if err := rows.Scan(&produced, &rejected); err != nil {
			return nil, err
		}
		_, grade := GradeFor(produced, rejected)
		counts[grade]++
	}
	return counts, rows.Err()
}
