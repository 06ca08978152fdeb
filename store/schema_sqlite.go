package store

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS raw_manufacturing_data (
    "Cust Code"              TEXT,
    "Cust Name"              TEXT,
    "Buyer"                  TEXT,
    "EMP Code"               TEXT,
    "Emp Name"               TEXT,
    "Item Code"              TEXT,
    "Item Name"              TEXT,
    "Machine Code"           TEXT,
    "Per day Machine Cost"   TEXT,
    "Operation Code"         TEXT,
    "Operation Name"         TEXT,
    "Department Name"        TEXT,
    "Doc Num"                TEXT,
    "Doc Date"               TEXT,
    "Designer"               TEXT,
    "Delivery Period"        TEXT,
    "Press Qty"              TEXT,
    "Processed Qty"          TEXT,
    "Produced Qty"           TEXT,
    "Rejected Qty"           TEXT,
    "today Manufactured qty" TEXT,
    "TotalQty"               TEXT,
    "WO Qty"                 TEXT,
    "TotalValue"             TEXT,
    "Repeat"                 TEXT
);

CREATE TABLE IF NOT EXISTS customers (
    code       TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    buyer      TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS employees (
    code       TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS items (
    code       TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS machines (
    code         TEXT PRIMARY KEY,
    per_day_cost REAL NOT NULL DEFAULT 0,
    created_at   TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at   TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS operations (
    code       TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS departments (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    name       TEXT NOT NULL UNIQUE,
    created_at TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS production_records (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    doc_num         TEXT NOT NULL,
    doc_date        TEXT NOT NULL,
    customer_code   TEXT REFERENCES customers(code),
    employee_code   TEXT REFERENCES employees(code),
    item_code       TEXT REFERENCES items(code),
    machine_code    TEXT REFERENCES machines(code),
    operation_code  TEXT REFERENCES operations(code),
    department_name TEXT NOT NULL DEFAULT '',
    designer        TEXT NOT NULL DEFAULT '',
    delivery_period TEXT NOT NULL DEFAULT '',
    press_qty       INTEGER NOT NULL DEFAULT 0,
    processed_qty   INTEGER NOT NULL DEFAULT 0,
    produced_qty    INTEGER NOT NULL DEFAULT 0,
    rejected_qty    INTEGER NOT NULL DEFAULT 0,
    today_mfg_qty   INTEGER NOT NULL DEFAULT 0,
    total_qty       INTEGER NOT NULL DEFAULT 0,
    wo_qty          INTEGER NOT NULL DEFAULT 0,
    total_value     REAL NOT NULL DEFAULT 0,
    repeat_order    INTEGER NOT NULL DEFAULT 0,
    created_at      TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_production_doc_date ON production_records(doc_date);
CREATE INDEX IF NOT EXISTS idx_production_customer ON production_records(customer_code);
CREATE INDEX IF NOT EXISTS idx_production_item ON production_records(item_code);
CREATE INDEX IF NOT EXISTS idx_production_machine ON production_records(machine_code);
CREATE INDEX IF NOT EXISTS idx_production_department ON production_records(department_name);

CREATE TABLE IF NOT EXISTS import_runs (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id           TEXT NOT NULL UNIQUE,
    status           TEXT NOT NULL DEFAULT 'running',
    raw_rows         INTEGER NOT NULL DEFAULT 0,
    facts_loaded     INTEGER NOT NULL DEFAULT 0,
    rows_rejected    INTEGER NOT NULL DEFAULT 0,
    dims_upserted    INTEGER NOT NULL DEFAULT 0,
    rejection_sample TEXT NOT NULL DEFAULT '[]',
    error_detail     TEXT NOT NULL DEFAULT '',
    started_at       TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    finished_at      TEXT
);

CREATE TABLE IF NOT EXISTS outbox (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    topic      TEXT NOT NULL,
    payload    BLOB NOT NULL,
    msg_type   TEXT NOT NULL DEFAULT '',
    site_id    TEXT NOT NULL DEFAULT '',
    retries    INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    sent_at    TEXT
);

CREATE TABLE IF NOT EXISTS admin_users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
`
