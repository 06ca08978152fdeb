package store

// KPISnapshot is the single-row global rollup. The two average rates are
// computed per record and then averaged, so every order weighs the same
// regardless of volume. Unlike the dashboard projection this view uses the
// zero-branch safe division: a record that produced nothing contributes a
// 0 rate, never a NULL.
type KPISnapshot struct {
	TotalOrders       int64   `json:"total_orders"`
	DistinctCustomers int64   `json:"distinct_customers"`
	DistinctItems     int64   `json:"distinct_items"`
	DistinctEmployees int64   `json:"distinct_employees"`
	PressQty          int64   `json:"press_qty"`
	ProcessedQty      int64   `json:"processed_qty"`
	ProducedQty       int64   `json:"produced_qty"`
	RejectedQty       int64   `json:"rejected_qty"`
	TodayMfgQty       int64   `json:"today_mfg_qty"`
	TotalQty          int64   `json:"total_qty"`
	WOQty             int64   `json:"wo_qty"`
	TotalValue        float64 `json:"total_value"`
	AvgRejectionRate  float64 `json:"avg_rejection_rate_percent"`
	AvgEfficiency     float64 `json:"avg_efficiency_percent"`
}

func (db *DB) KPISnapshot() (*KPISnapshot, error) {
	row := db.QueryRow(`SELECT
		COUNT(*),
		COUNT(DISTINCT customer_code),
		COUNT(DISTINCT item_code),
		COUNT(DISTINCT employee_code),
		COALESCE(SUM(press_qty), 0),
		COALESCE(SUM(processed_qty), 0),
		COALESCE(SUM(produced_qty), 0),
		COALESCE(SUM(rejected_qty), 0),
		COALESCE(SUM(today_mfg_qty), 0),
		COALESCE(SUM(total_qty), 0),
		COALESCE(SUM(wo_qty), 0),
		COALESCE(SUM(total_value), 0),
		COALESCE(AVG(CASE WHEN produced_qty > 0 THEN rejected_qty * 100.0 / produced_qty ELSE 0 END), 0),
		COALESCE(AVG(CASE WHEN total_qty > 0 THEN produced_qty * 100.0 / total_qty ELSE 0 END), 0)
	FROM production_records`)

	var k KPISnapshot
	var press, processed, produced, rejected, today, total, wo, value, rejRate, eff any
	err := row.Scan(&k.TotalOrders, &k.DistinctCustomers, &k.DistinctItems, &k.DistinctEmployees,
		&press, &processed, &produced, &rejected, &today, &total, &wo,
		&value, &rejRate, &eff)
	if err != nil {
		return nil, err
	}
	k.PressQty = toInt(press)
	k.ProcessedQty = toInt(processed)
	k.ProducedQty = toInt(produced)
	k.RejectedQty = toInt(rejected)
	k.TodayMfgQty = toInt(today)
	k.TotalQty = toInt(total)
	k.WOQty = toInt(wo)
	k.TotalValue = toFloat(value)
	k.AvgRejectionRate = toFloat(rejRate)
	k.AvgEfficiency = toFloat(eff)
	return &k, nil
}
