package store

import (
	"database/sql"
	"fmt"
)

// RawRow mirrors one line of the raw_manufacturing_data intake buffer.
// Every field is text: the buffer is shaped by the source spreadsheet,
// not by us. NULL and empty string both mean "absent".
type RawRow struct {
	CustCode          string `json:"cust_code"`
	CustName          string `json:"cust_name"`
	Buyer             string `json:"buyer"`
	EmpCode           string `json:"emp_code"`
	EmpName           string `json:"emp_name"`
	ItemCode          string `json:"item_code"`
	ItemName          string `json:"item_name"`
	MachineCode       string `json:"machine_code"`
	PerDayMachineCost string `json:"per_day_machine_cost"`
	OperationCode     string `json:"operation_code"`
	OperationName     string `json:"operation_name"`
	DepartmentName    string `json:"department_name"`
	DocNum            string `json:"doc_num"`
	DocDate           string `json:"doc_date"`
	Designer          string `json:"designer"`
	DeliveryPeriod    string `json:"delivery_period"`
	PressQty          string `json:"press_qty"`
	ProcessedQty      string `json:"processed_qty"`
	ProducedQty       string `json:"produced_qty"`
	RejectedQty       string `json:"rejected_qty"`
	TodayMfgQty       string `json:"today_mfg_qty"`
	TotalQty          string `json:"total_qty"`
	WOQty             string `json:"wo_qty"`
	TotalValue        string `json:"total_value"`
	Repeat            string `json:"repeat"`
}

const rawSelectCols = `COALESCE("Cust Code",''), COALESCE("Cust Name",''), COALESCE("Buyer",''),
COALESCE("EMP Code",''), COALESCE("Emp Name",''),
COALESCE("Item Code",''), COALESCE("Item Name",''),
COALESCE("Machine Code",''), COALESCE("Per day Machine Cost",''),
COALESCE("Operation Code",''), COALESCE("Operation Name",''),
COALESCE("Department Name",''),
COALESCE("Doc Num",''), COALESCE("Doc Date",''),
COALESCE("Designer",''), COALESCE("Delivery Period",''),
COALESCE("Press Qty",''), COALESCE("Processed Qty",''),
COALESCE("Produced Qty",''), COALESCE("Rejected Qty",''),
COALESCE("today Manufactured qty",''), COALESCE("TotalQty",''),
COALESCE("WO Qty",''), COALESCE("TotalValue",''), COALESCE("Repeat",'')`

func scanRawRow(row interface{ Scan(...any) error }) (*RawRow, error) {
	var r RawRow
	err := row.Scan(
		&r.CustCode, &r.CustName, &r.Buyer,
		&r.EmpCode, &r.EmpName,
		&r.ItemCode, &r.ItemName,
		&r.MachineCode, &r.PerDayMachineCost,
		&r.OperationCode, &r.OperationName,
		&r.DepartmentName,
		&r.DocNum, &r.DocDate,
		&r.Designer, &r.DeliveryPeriod,
		&r.PressQty, &r.ProcessedQty,
		&r.ProducedQty, &r.RejectedQty,
		&r.TodayMfgQty, &r.TotalQty,
		&r.WOQty, &r.TotalValue, &r.Repeat,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanRawRows(rows *sql.Rows) ([]*RawRow, error) {
	var out []*RawRow
	for rows.Next() {
		r, err := scanRawRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListRawRows reads the entire intake buffer in storage order.
func (db *DB) ListRawRows() ([]*RawRow, error) {
	rows, err := db.Query(`SELECT ` + rawSelectCols + ` FROM raw_manufacturing_data`)
	if err != nil {
		return nil, fmt.Errorf("list raw rows: %w", err)
	}
	defer rows.Close()
	return scanRawRows(rows)
}

func (db *DB) CountRawRows() (int64, error) {
	var n int64
	err := db.QueryRow(`SELECT COUNT(*) FROM raw_manufacturing_data`).Scan(&n)
	return n, err
}

// InsertRawRow stages one raw line. Population of the intake buffer is
// normally done by external tooling; this exists for backfills and tests.
func (db *DB) InsertRawRow(r *RawRow) error {
	_, err := db.Exec(db.Q(`INSERT INTO raw_manufacturing_data (
		"Cust Code", "Cust Name", "Buyer",
		"EMP Code", "Emp Name",
		"Item Code", "Item Name",
		"Machine Code", "Per day Machine Cost",
		"Operation Code", "Operation Name",
		"Department Name",
		"Doc Num", "Doc Date",
		"Designer", "Delivery Period",
		"Press Qty", "Processed Qty",
		"Produced Qty", "Rejected Qty",
		"today Manufactured qty", "TotalQty",
		"WO Qty", "TotalValue", "Repeat"
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		r.CustCode, r.CustName, r.Buyer,
		r.EmpCode, r.EmpName,
		r.ItemCode, r.ItemName,
		r.MachineCode, r.PerDayMachineCost,
		r.OperationCode, r.OperationName,
		r.DepartmentName,
		r.DocNum, r.DocDate,
		r.Designer, r.DeliveryPeriod,
		r.PressQty, r.ProcessedQty,
		r.ProducedQty, r.RejectedQty,
		r.TodayMfgQty, r.TotalQty,
		r.WOQty, r.TotalValue, r.Repeat,
	)
	if err != nil {
		return fmt.Errorf("insert raw row: %w", err)
	}
	return nil
}

// ClearRawRows empties the intake buffer after a successful import cycle.
func (db *DB) ClearRawRows() error {
	_, err := db.Exec(`DELETE FROM raw_manufacturing_data`)
	return err
}
