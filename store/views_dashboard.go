package store

import (
	"database/sql"
	"time"
)

// DashboardRow is the full denormalized projection of one production record
// joined to every dimension. Missing dimension data never drops the row;
// the joined fields just stay empty. The three ratio metrics use
// NULL-propagating division: a zero or missing denominator yields nil, so
// consumers can tell "no data" apart from a genuine 0 rate.
type DashboardRow struct {
	RecordID       int64     `json:"record_id"`
	DocNum         string    `json:"doc_num"`
	DocDate        time.Time `json:"doc_date"`
	Year           int       `json:"production_year"`
	Month          int       `json:"production_month"`
	MonthName      string    `json:"production_month_name"`
	WeekdayName    string    `json:"production_weekday_name"`
	CustomerCode   *string   `json:"customer_code"`
	CustomerName   string    `json:"customer_name"`
	Buyer          string    `json:"buyer"`
	EmployeeCode   *string   `json:"employee_code"`
	EmployeeName   string    `json:"employee_name"`
	ItemCode       *string   `json:"item_code"`
	ItemName       string    `json:"item_name"`
	MachineCode    *string   `json:"machine_code"`
	MachineCost    float64   `json:"machine_per_day_cost"`
	OperationCode  *string   `json:"operation_code"`
	OperationName  string    `json:"operation_name"`
	DepartmentName string    `json:"department_name"`
	Designer       string    `json:"designer"`
	DeliveryPeriod string    `json:"delivery_period"`
	PressQty       int64     `json:"press_qty"`
	ProcessedQty   int64     `json:"processed_qty"`
	ProducedQty    int64     `json:"produced_qty"`
	RejectedQty    int64     `json:"rejected_qty"`
	TodayMfgQty    int64     `json:"today_mfg_qty"`
	TotalQty       int64     `json:"total_qty"`
	WOQty          int64     `json:"wo_qty"`
	TotalValue     float64   `json:"total_value"`
	RepeatOrder    bool      `json:"repeat_order"`

	RejectionRatePercent *float64 `json:"rejection_rate_percent"`
	ValuePerUnit         *float64 `json:"value_per_unit"`
	EfficiencyPercent    *float64 `json:"efficiency_percent"`
}

// DashboardRows returns the dashboard projection, newest documents first.
// customerCode filters when non-empty.
func (db *DB) DashboardRows(customerCode string, limit int) ([]*DashboardRow, error) {
	query := `SELECT p.id, p.doc_num, p.doc_date,
		p.customer_code, COALESCE(c.name,''), COALESCE(c.buyer,''),
		p.employee_code, COALESCE(e.name,''),
		p.item_code, COALESCE(i.name,''),
		p.machine_code, COALESCE(m.per_day_cost,0),
		p.operation_code, COALESCE(o.name,''),
		p.department_name, p.designer, p.delivery_period,
		p.press_qty, p.processed_qty, p.produced_qty, p.rejected_qty,
		p.today_mfg_qty, p.total_qty, p.wo_qty, p.total_value, p.repeat_order,
		p.rejected_qty * 100.0 / NULLIF(p.produced_qty, 0),
		p.total_value / NULLIF(p.total_qty, 0),
		p.produced_qty * 100.0 / NULLIF(p.total_qty, 0)
	FROM production_records p
	LEFT JOIN customers c  ON p.customer_code = c.code
	LEFT JOIN employees e  ON p.employee_code = e.code
	LEFT JOIN items i      ON p.item_code = i.code
	LEFT JOIN machines m   ON p.machine_code = m.code
	LEFT JOIN operations o ON p.operation_code = o.code`

	var args []any
	if customerCode != "" {
		query += ` WHERE p.customer_code = ?`
		args = append(args, customerCode)
	}
	query += ` ORDER BY p.doc_date DESC, p.id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(db.Q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*DashboardRow
	for rows.Next() {
		var d DashboardRow
		var docDate, machineCost, totalValue, rejRate, vpu, eff, repeatOrder any
		var custCode, empCode, itemCode, machCode, opCode sql.NullString
		err := rows.Scan(&d.RecordID, &d.DocNum, &docDate,
			&custCode, &d.CustomerName, &d.Buyer,
			&empCode, &d.EmployeeName,
			&itemCode, &d.ItemName,
			&machCode, &machineCost,
			&opCode, &d.OperationName,
			&d.DepartmentName, &d.Designer, &d.DeliveryPeriod,
			&d.PressQty, &d.ProcessedQty, &d.ProducedQty, &d.RejectedQty,
			&d.TodayMfgQty, &d.TotalQty, &d.WOQty, &totalValue, &repeatOrder,
			&rejRate, &vpu, &eff)
		if err != nil {
			return nil, err
		}
		d.DocDate = parseTime(docDate)
		d.Year = d.DocDate.Year()
		d.Month = int(d.DocDate.Month())
		d.MonthName = d.DocDate.Month().String()
		d.WeekdayName = d.DocDate.Weekday().String()
		d.MachineCost = toFloat(machineCost)
		d.TotalValue = toFloat(totalValue)
		d.RepeatOrder = toBool(repeatOrder)
		d.RejectionRatePercent = toFloatPtr(rejRate)
		d.ValuePerUnit = toFloatPtr(vpu)
		d.EfficiencyPercent = toFloatPtr(eff)
		if custCode.Valid {
			d.CustomerCode = &custCode.String
		}
		if empCode.Valid {
			d.EmployeeCode = &empCode.String
		}
		if itemCode.Valid {
			d.ItemCode = &itemCode.String
		}
		if machCode.Valid {
			d.MachineCode = &machCode.String
		}
		if opCode.Valid {
			d.OperationCode = &opCode.String
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}
