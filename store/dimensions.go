package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Dimension lookup tables. Each is keyed by a business-meaningful code
// (department by a unique name with a surrogate id). Upserts overwrite
// descriptive attributes and never delete: the stores only grow.

type Customer struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Buyer     string    `json:"buyer"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Employee struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Item struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Machine struct {
	Code       string    `json:"code"`
	PerDayCost float64   `json:"per_day_cost"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Operation struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// UpsertCustomer inserts the customer or overwrites its descriptive
// attributes if the code already exists. The explicit look-up-then-write
// keeps the same behavior on both dialects without ON CONFLICT syntax.
func (db *DB) UpsertCustomer(code, name, buyer string) error {
	if code == "" {
		return errors.New("upsert customer: empty code")
	}
	exists, err := db.keyExists("customers", code)
	if err != nil {
		return fmt.Errorf("upsert customer %s: %w", code, err)
	}
	if exists {
		_, err = db.Exec(db.Q(`UPDATE customers SET name=?, buyer=?, updated_at=datetime('now','localtime') WHERE code=?`),
			name, buyer, code)
	} else {
		_, err = db.Exec(db.Q(`INSERT INTO customers (code, name, buyer) VALUES (?, ?, ?)`),
			code, name, buyer)
	}
	if err != nil {
		return fmt.Errorf("upsert customer %s: %w", code, err)
	}
	return nil
}

func (db *DB) UpsertEmployee(code, name string) error {
	if code == "" {
		return errors.New("upsert employee: empty code")
	}
	exists, err := db.keyExists("employees", code)
	if err != nil {
		return fmt.Errorf("upsert employee %s: %w", code, err)
	}
	if exists {
		_, err = db.Exec(db.Q(`UPDATE employees SET name=?, updated_at=datetime('now','localtime') WHERE code=?`),
			name, code)
	} else {
		_, err = db.Exec(db.Q(`INSERT INTO employees (code, name) VALUES (?, ?)`), code, name)
	}
	if err != nil {
		return fmt.Errorf("upsert employee %s: %w", code, err)
	}
	return nil
}

func (db *DB) UpsertItem(code, name string) error {
	if code == "" {
		return errors.New("upsert item: empty code")
	}
	exists, err := db.keyExists("items", code)
	if err != nil {
		return fmt.Errorf("upsert item %s: %w", code, err)
	}
	if exists {
		_, err = db.Exec(db.Q(`UPDATE items SET name=?, updated_at=datetime('now','localtime') WHERE code=?`),
			name, code)
	} else {
		_, err = db.Exec(db.Q(`INSERT INTO items (code, name) VALUES (?, ?)`), code, name)
	}
	if err != nil {
		return fmt.Errorf("upsert item %s: %w", code, err)
	}
	return nil
}

func (db *DB) UpsertMachine(code string, perDayCost float64) error {
	if code == "" {
		return errors.New("upsert machine: empty code")
	}
	exists, err := db.keyExists("machines", code)
	if err != nil {
		return fmt.Errorf("upsert machine %s: %w", code, err)
	}
	if exists {
		_, err = db.Exec(db.Q(`UPDATE machines SET per_day_cost=?, updated_at=datetime('now','localtime') WHERE code=?`),
			perDayCost, code)
	} else {
		_, err = db.Exec(db.Q(`INSERT INTO machines (code, per_day_cost) VALUES (?, ?)`), code, perDayCost)
	}
	if err != nil {
		return fmt.Errorf("upsert machine %s: %w", code, err)
	}
	return nil
}

func (db *DB) UpsertOperation(code, name string) error {
	if code == "" {
		return errors.New("upsert operation: empty code")
	}
	exists, err := db.keyExists("operations", code)
	if err != nil {
		return fmt.Errorf("upsert operation %s: %w", code, err)
	}
	if exists {
		_, err = db.Exec(db.Q(`UPDATE operations SET name=?, updated_at=datetime('now','localtime') WHERE code=?`),
			name, code)
	} else {
		_, err = db.Exec(db.Q(`INSERT INTO operations (code, name) VALUES (?, ?)`), code, name)
	}
	if err != nil {
		return fmt.Errorf("upsert operation %s: %w", code, err)
	}
	return nil
}

// UpsertDepartment registers a department name and returns its surrogate id.
// Departments carry no descriptive attributes, so an existing name is a no-op.
func (db *DB) UpsertDepartment(name string) (int64, error) {
	if name == "" {
		return 0, errors.New("upsert department: empty name")
	}
	var id int64
	err := db.QueryRow(db.Q(`SELECT id FROM departments WHERE name=?`), name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("upsert department %s: %w", name, err)
	}
	if db.driver == "postgres" {
		err = db.QueryRow(db.Q(`INSERT INTO departments (name) VALUES (?) RETURNING id`), name).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("upsert department %s: %w", name, err)
		}
		return id, nil
	}
	res, err := db.Exec(db.Q(`INSERT INTO departments (name) VALUES (?)`), name)
	if err != nil {
		return 0, fmt.Errorf("upsert department %s: %w", name, err)
	}
	return res.LastInsertId()
}

// keyExists reports whether a code is present in one of the code-keyed
// dimension tables. The table name is always a compile-time constant here.
func (db *DB) keyExists(table, code string) (bool, error) {
	var one int
	err := db.QueryRow(db.Q(`SELECT 1 FROM `+table+` WHERE code=?`), code).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// HasCode reports whether a natural key is already registered in one of the
// code-keyed dimension tables. The fact loader uses this to decide between
// a hard reference and a NULL.
func (db *DB) HasCode(table, code string) (bool, error) {
	switch table {
	case "customers", "employees", "items", "machines", "operations":
	default:
		return false, fmt.Errorf("has code: unknown table %s", table)
	}
	if code == "" {
		return false, nil
	}
	return db.keyExists(table, code)
}

func (db *DB) GetCustomer(code string) (*Customer, error) {
	var c Customer
	var createdAt, updatedAt any
	err := db.QueryRow(db.Q(`SELECT code, name, buyer, created_at, updated_at FROM customers WHERE code=?`), code).
		Scan(&c.Code, &c.Name, &c.Buyer, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

func (db *DB) GetEmployee(code string) (*Employee, error) {
	var e Employee
	var createdAt, updatedAt any
	err := db.QueryRow(db.Q(`SELECT code, name, created_at, updated_at FROM employees WHERE code=?`), code).
		Scan(&e.Code, &e.Name, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return &e, nil
}

func (db *DB) GetItem(code string) (*Item, error) {
	var i Item
	var createdAt, updatedAt any
	err := db.QueryRow(db.Q(`SELECT code, name, created_at, updated_at FROM items WHERE code=?`), code).
		Scan(&i.Code, &i.Name, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	i.CreatedAt = parseTime(createdAt)
	i.UpdatedAt = parseTime(updatedAt)
	return &i, nil
}

func (db *DB) GetMachine(code string) (*Machine, error) {
	var m Machine
	var createdAt, updatedAt any
	err := db.QueryRow(db.Q(`SELECT code, per_day_cost, created_at, updated_at FROM machines WHERE code=?`), code).
		Scan(&m.Code, &m.PerDayCost, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	m.CreatedAt = parseTime(createdAt)
	m.UpdatedAt = parseTime(updatedAt)
	return &m, nil
}

func (db *DB) GetOperation(code string) (*Operation, error) {
	var o Operation
	var createdAt, updatedAt any
	err := db.QueryRow(db.Q(`SELECT code, name, created_at, updated_at FROM operations WHERE code=?`), code).
		Scan(&o.Code, &o.Name, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	o.CreatedAt = parseTime(createdAt)
	o.UpdatedAt = parseTime(updatedAt)
	return &o, nil
}

func (db *DB) GetDepartmentByName(name string) (*Department, error) {
	var d Department
	var createdAt any
	err := db.QueryRow(db.Q(`SELECT id, name, created_at FROM departments WHERE name=?`), name).
		Scan(&d.ID, &d.Name, &createdAt)
	if err != nil {
		return nil, err
	}
	d.CreatedAt = parseTime(createdAt)
	return &d, nil
}

func (db *DB) ListCustomers() ([]*Customer, error) {
	rows, err := db.Query(`SELECT code, name, buyer, created_at, updated_at FROM customers ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Customer
	for rows.Next() {
		var c Customer
		var createdAt, updatedAt any
		if err := rows.Scan(&c.Code, &c.Name, &c.Buyer, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		c.CreatedAt = parseTime(createdAt)
		c.UpdatedAt = parseTime(updatedAt)
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (db *DB) ListEmployees() ([]*Employee, error) {
	rows, err := db.Query(`SELECT code, name, created_at, updated_at FROM employees ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Employee
	for rows.Next() {
		var e Employee
		var createdAt, updatedAt any
		if err := rows.Scan(&e.Code, &e.Name, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		e.CreatedAt = parseTime(createdAt)
		e.UpdatedAt = parseTime(updatedAt)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (db *DB) ListItems() ([]*Item, error) {
	rows, err := db.Query(`SELECT code, name, created_at, updated_at FROM items ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Item
	for rows.Next() {
		var i Item
		var createdAt, updatedAt any
		if err := rows.Scan(&i.Code, &i.Name, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		i.CreatedAt = parseTime(createdAt)
		i.UpdatedAt = parseTime(updatedAt)
		out = append(out, &i)
	}
	return out, rows.Err()
}

func (db *DB) ListMachines() ([]*Machine, error) {
	rows, err := db.Query(`SELECT code, per_day_cost, created_at, updated_at FROM machines ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Machine
	for rows.Next() {
		var m Machine
		var createdAt, updatedAt any
		if err := rows.Scan(&m.Code, &m.PerDayCost, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		m.CreatedAt = parseTime(createdAt)
		m.UpdatedAt = parseTime(updatedAt)
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (db *DB) ListOperations() ([]*Operation, error) {
	rows, err := db.Query(`SELECT code, name, created_at, updated_at FROM operations ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Operation
	for rows.Next() {
		var o Operation
		var createdAt, updatedAt any
		if err := rows.Scan(&o.Code, &o.Name, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		o.CreatedAt = parseTime(createdAt)
		o.UpdatedAt = parseTime(updatedAt)
		out = append(out, &o)
	}
	return out, rows.Err()
}

func (db *DB) ListDepartments() ([]*Department, error) {
	rows, err := db.Query(`SELECT id, name, created_at FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Department
	for rows.Next() {
		var d Department
		var createdAt any
		if err := rows.Scan(&d.ID, &d.Name, &createdAt); err != nil {
			return nil, err
		}
		d.CreatedAt = parseTime(createdAt)
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (db *DB) CountDimension(table string) (int64, error) {
	switch table {
	case "customers", "employees", "items", "machines", "operations", "departments":
	default:
		return 0, fmt.Errorf("count dimension: unknown table %s", table)
	}
	var n int64
	err := db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n)
	return n, err
}
