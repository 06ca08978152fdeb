package store

import (
	"database/sql"
	"time"
)

// Grouped rollups for the trend and utilization dashboards. Date-based
// rollups group on doc_date, which the schema keeps non-null. The
// department, customer and machine rollups keep NULL (or empty) grouping
// keys as their own group rather than filtering them out; the averaged
// rates use the same zero-branch division as the KPI snapshot.

type DailySummary struct {
	Date        time.Time `json:"date"`
	Orders      int64     `json:"orders"`
	ProducedQty int64     `json:"produced_qty"`
	RejectedQty int64     `json:"rejected_qty"`
	TotalQty    int64     `json:"total_qty"`
	TotalValue  float64   `json:"total_value"`
}

func (db *DB) DailySummaries() ([]*DailySummary, error) {
	rows, err := db.Query(`SELECT doc_date, COUNT(*),
		COALESCE(SUM(produced_qty), 0), COALESCE(SUM(rejected_qty), 0),
		COALESCE(SUM(total_qty), 0), COALESCE(SUM(total_value), 0)
	FROM production_records
	GROUP BY doc_date
	ORDER BY doc_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*DailySummary
	for rows.Next() {
		var s DailySummary
		var date, produced, rejected, total, value any
		if err := rows.Scan(&date, &s.Orders, &produced, &rejected, &total, &value); err != nil {
			return nil, err
		}
		s.Date = parseTime(date)
		s.ProducedQty = toInt(produced)
		s.RejectedQty = toInt(rejected)
		s.TotalQty = toInt(total)
		s.TotalValue = toFloat(value)
		out = append(out, &s)
	}
	return out, rows.Err()
}

type MonthlySummary struct {
	Year             int     `json:"year"`
	Month            int     `json:"month"`
	MonthName        string  `json:"month_name"`
	Orders           int64   `json:"orders"`
	ProducedQty      int64   `json:"produced_qty"`
	RejectedQty      int64   `json:"rejected_qty"`
	TotalQty         int64   `json:"total_qty"`
	TotalValue       float64 `json:"total_value"`
	AvgRejectionRate float64 `json:"avg_rejection_rate_percent"`
}

// MonthlySummaries returns exactly one row per distinct (year, month) pair,
// ascending by year then month.
func (db *DB) MonthlySummaries() ([]*MonthlySummary, error) {
	d := db.dialect
	yearExpr := d.YearExpr("doc_date")
	monthExpr := d.MonthExpr("doc_date")
	rows, err := db.Query(`SELECT ` + yearExpr + `, ` + monthExpr + `, COUNT(*),
		COALESCE(SUM(produced_qty), 0), COALESCE(SUM(rejected_qty), 0),
		COALESCE(SUM(total_qty), 0), COALESCE(SUM(total_value), 0),
		COALESCE(AVG(CASE WHEN produced_qty > 0 THEN rejected_qty * 100.0 / produced_qty ELSE 0 END), 0)
	FROM production_records
	GROUP BY ` + yearExpr + `, ` + monthExpr + `
	ORDER BY ` + yearExpr + `, ` + monthExpr)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*MonthlySummary
	for rows.Next() {
		var s MonthlySummary
		var produced, rejected, total, value, rejRate any
		if err := rows.Scan(&s.Year, &s.Month, &s.Orders, &produced, &rejected, &total, &value, &rejRate); err != nil {
			return nil, err
		}
		if s.Month >= 1 && s.Month <= 12 {
			s.MonthName = time.Month(s.Month).String()
		}
		s.ProducedQty = toInt(produced)
		s.RejectedQty = toInt(rejected)
		s.TotalQty = toInt(total)
		s.TotalValue = toFloat(value)
		s.AvgRejectionRate = toFloat(rejRate)
		out = append(out, &s)
	}
	return out, rows.Err()
}

type DepartmentSummary struct {
	DepartmentName   string  `json:"department_name"`
	Orders           int64   `json:"orders"`
	ProducedQty      int64   `json:"produced_qty"`
	RejectedQty      int64   `json:"rejected_qty"`
	TotalValue       float64 `json:"total_value"`
	AvgRejectionRate float64 `json:"avg_rejection_rate_percent"`
}

// DepartmentSummaries groups by the denormalized department name. Records
// with no department end up in the empty-name group.
func (db *DB) DepartmentSummaries() ([]*DepartmentSummary, error) {
	rows, err := db.Query(`SELECT department_name, COUNT(*),
		COALESCE(SUM(produced_qty), 0), COALESCE(SUM(rejected_qty), 0),
		COALESCE(SUM(total_value), 0),
		COALESCE(AVG(CASE WHEN produced_qty > 0 THEN rejected_qty * 100.0 / produced_qty ELSE 0 END), 0)
	FROM production_records
	GROUP BY department_name
	ORDER BY department_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*DepartmentSummary
	for rows.Next() {
		var s DepartmentSummary
		var produced, rejected, value, rejRate any
		if err := rows.Scan(&s.DepartmentName, &s.Orders, &produced, &rejected, &value, &rejRate); err != nil {
			return nil, err
		}
		s.ProducedQty = toInt(produced)
		s.RejectedQty = toInt(rejected)
		s.TotalValue = toFloat(value)
		s.AvgRejectionRate = toFloat(rejRate)
		out = append(out, &s)
	}
	return out, rows.Err()
}

type CustomerSummary struct {
	CustomerCode     *string `json:"customer_code"`
	CustomerName     string  `json:"customer_name"`
	Orders           int64   `json:"orders"`
	ProducedQty      int64   `json:"produced_qty"`
	TotalQty         int64   `json:"total_qty"`
	TotalValue       float64 `json:"total_value"`
	AvgRejectionRate float64 `json:"avg_rejection_rate_percent"`
}

// CustomerSummaries groups by customer. Records with an unresolved customer
// form their own NULL-code group so totals still add up.
func (db *DB) CustomerSummaries() ([]*CustomerSummary, error) {
	rows, err := db.Query(`SELECT p.customer_code, COALESCE(c.name, ''), COUNT(*),
		COALESCE(SUM(p.produced_qty), 0), COALESCE(SUM(p.total_qty), 0),
		COALESCE(SUM(p.total_value), 0),
		COALESCE(AVG(CASE WHEN p.produced_qty > 0 THEN p.rejected_qty * 100.0 / p.produced_qty ELSE 0 END), 0)
	FROM production_records p
	LEFT JOIN customers c ON p.customer_code = c.code
	GROUP BY p.customer_code, c.name
	ORDER BY p.customer_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*CustomerSummary
	for rows.Next() {
		var s CustomerSummary
		var code sql.NullString
		var produced, total, value, rejRate any
		if err := rows.Scan(&code, &s.CustomerName, &s.Orders, &produced, &total, &value, &rejRate); err != nil {
			return nil, err
		}
		if code.Valid {
			s.CustomerCode = &code.String
		}
		s.ProducedQty = toInt(produced)
		s.TotalQty = toInt(total)
		s.TotalValue = toFloat(value)
		s.AvgRejectionRate = toFloat(rejRate)
		out = append(out, &s)
	}
	return out, rows.Err()
}

type MachineUtilization struct {
	MachineCode  *string `json:"machine_code"`
	PerDayCost   float64 `json:"per_day_cost"`
	Orders       int64   `json:"orders"`
	PressQty     int64   `json:"press_qty"`
	ProcessedQty int64   `json:"processed_qty"`
	ProducedQty  int64   `json:"produced_qty"`
	TotalValue   float64 `json:"total_value"`
}

// MachineUtilizations groups by machine, NULL machine included.
func (db *DB) MachineUtilizations() ([]*MachineUtilization, error) {
	rows, err := db.Query(`SELECT p.machine_code, COALESCE(m.per_day_cost, 0), COUNT(*),
		COALESCE(SUM(p.press_qty), 0), COALESCE(SUM(p.processed_qty), 0),
		COALESCE(SUM(p.produced_qty), 0), COALESCE(SUM(p.total_value), 0)
	FROM production_records p
	LEFT JOIN machines m ON p.machine_code = m.code
	GROUP BY p.machine_code, m.per_day_cost
	ORDER BY p.machine_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*MachineUtilization
	for rows.Next() {
		var s MachineUtilization
		var code sql.NullString
		var cost, press, processed, produced, value any
		if err := rows.Scan(&code, &cost, &s.Orders, &press, &processed, &produced, &value); err != nil {
			return nil, err
		}
		if code.Valid {
			s.MachineCode = &code.String
		}
		s.PerDayCost = toFloat(cost)
		s.PressQty = toInt(press)
		s.ProcessedQty = toInt(processed)
		s.ProducedQty = toInt(produced)
		s.TotalValue = toFloat(value)
		out = append(out, &s)
	}
	return out, rows.Err()
}
