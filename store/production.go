package store

import (
	"database/sql"
	"fmt"
	"time"
)

// ProductionRecord is one manufacturing document line. The five code
// references are soft: nil means the source row carried no code or one
// that no dimension row matched. The record loads either way.
type ProductionRecord struct {
	ID             int64     `json:"id"`
	DocNum         string    `json:"doc_num"`
	DocDate        time.Time `json:"doc_date"`
	CustomerCode   *string   `json:"customer_code"`
	EmployeeCode   *string   `json:"employee_code"`
	ItemCode       *string   `json:"item_code"`
	MachineCode    *string   `json:"machine_code"`
	OperationCode  *string   `json:"operation_code"`
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
	CreatedAt      time.Time `json:"created_at"`
}

const productionSelectCols = `id, doc_num, doc_date, customer_code, employee_code, item_code,
machine_code, operation_code, department_name, designer, delivery_period,
press_qty, processed_qty, produced_qty, rejected_qty, today_mfg_qty,
total_qty, wo_qty, total_value, repeat_order, created_at`

func scanProductionRecord(row interface{ Scan(...any) error }) (*ProductionRecord, error) {
	var p ProductionRecord
	var docDate, createdAt, totalValue, repeatOrder any
	var custCode, empCode, itemCode, machCode, opCode sql.NullString
	err := row.Scan(&p.ID, &p.DocNum, &docDate, &custCode, &empCode, &itemCode,
		&machCode, &opCode, &p.DepartmentName, &p.Designer, &p.DeliveryPeriod,
		&p.PressQty, &p.ProcessedQty, &p.ProducedQty, &p.RejectedQty, &p.TodayMfgQty,
		&p.TotalQty, &p.WOQty, &totalValue, &repeatOrder, &createdAt)
	if err != nil {
		return nil, err
	}
	p.DocDate = parseTime(docDate)
	p.CreatedAt = parseTime(createdAt)
	p.TotalValue = toFloat(totalValue)
	p.RepeatOrder = toBool(repeatOrder)
	if custCode.Valid {
		p.CustomerCode = &custCode.String
	}
	if empCode.Valid {
		p.EmployeeCode = &empCode.String
	}
	if itemCode.Valid {
		p.ItemCode = &itemCode.String
	}
	if machCode.Valid {
		p.MachineCode = &machCode.String
	}
	if opCode.Valid {
		p.OperationCode = &opCode.String
	}
	return &p, nil
}

func scanProductionRecords(rows *sql.Rows) ([]*ProductionRecord, error) {
	var records []*ProductionRecord
	for rows.Next() {
		p, err := scanProductionRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	return records, rows.Err()
}

// InsertProductionRecord appends one fact row. There is no natural key and
// no upsert path: loading the same document line twice creates two rows.
func (db *DB) InsertProductionRecord(p *ProductionRecord) error {
	var custCode, empCode, itemCode, machCode, opCode any
	if p.CustomerCode != nil {
		custCode = *p.CustomerCode
	}
	if p.EmployeeCode != nil {
		empCode = *p.EmployeeCode
	}
	if p.ItemCode != nil {
		itemCode = *p.ItemCode
	}
	if p.MachineCode != nil {
		machCode = *p.MachineCode
	}
	if p.OperationCode != nil {
		opCode = *p.OperationCode
	}
	query := db.Q(`INSERT INTO production_records (
		doc_num, doc_date, customer_code, employee_code, item_code,
		machine_code, operation_code, department_name, designer, delivery_period,
		press_qty, processed_qty, produced_qty, rejected_qty, today_mfg_qty,
		total_qty, wo_qty, total_value, repeat_order
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	args := []any{
		p.DocNum, p.DocDate.Format("2006-01-02"), custCode, empCode, itemCode,
		machCode, opCode, p.DepartmentName, p.Designer, p.DeliveryPeriod,
		p.PressQty, p.ProcessedQty, p.ProducedQty, p.RejectedQty, p.TodayMfgQty,
		p.TotalQty, p.WOQty, p.TotalValue, p.RepeatOrder,
	}
	if db.driver == "postgres" {
		err := db.QueryRow(query+` RETURNING id`, args...).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("insert production record: %w", err)
		}
		return nil
	}
	result, err := db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("insert production record: %w", err)
	}
	p.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert production record id: %w", err)
	}
	return nil
}

func (db *DB) GetProductionRecord(id int64) (*ProductionRecord, error) {
	row := db.QueryRow(db.Q(`SELECT `+productionSelectCols+` FROM production_records WHERE id=?`), id)
	return scanProductionRecord(row)
}

func (db *DB) ListProductionRecords(limit int) ([]*ProductionRecord, error) {
	rows, err := db.Query(db.Q(`SELECT `+productionSelectCols+` FROM production_records ORDER BY doc_date DESC, id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProductionRecords(rows)
}

func (db *DB) CountProductionRecords() (int64, error) {
	var n int64
	err := db.QueryRow(`SELECT COUNT(*) FROM production_records`).Scan(&n)
	return n, err
}
