package store

const schemaPostgres = `
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
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS employees (
    code       TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS items (
    code       TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS machines (
    code         TEXT PRIMARY KEY,
    per_day_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS operations (
    code       TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS departments (
    id         BIGSERIAL PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS production_records (
    id              BIGSERIAL PRIMARY KEY,
    doc_num         TEXT NOT NULL,
    doc_date        DATE NOT NULL,
    customer_code   TEXT REFERENCES customers(code),
    employee_code   TEXT REFERENCES employees(code),
    item_code       TEXT REFERENCES items(code),
    machine_code    TEXT REFERENCES machines(code),
    operation_code  TEXT REFERENCES operations(code),
    department_name TEXT NOT NULL DEFAULT '',
    designer        TEXT NOT NULL DEFAULT '',
    delivery_period TEXT NOT NULL DEFAULT '',
    press_qty       BIGINT NOT NULL DEFAULT 0,
    processed_qty   BIGINT NOT NULL DEFAULT 0,
    produced_qty    BIGINT NOT NULL DEFAULT 0,
    rejected_qty    BIGINT NOT NULL DEFAULT 0,
    today_mfg_qty   BIGINT NOT NULL DEFAULT 0,
    total_qty       BIGINT NOT NULL DEFAULT 0,
    wo_qty          BIGINT NOT NULL DEFAULT 0,
    total_value     NUMERIC(14,2) NOT NULL DEFAULT 0,
    repeat_order    BOOLEAN NOT NULL DEFAULT FALSE,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_production_doc_date ON production_records(doc_date);
CREATE INDEX IF NOT EXISTS idx_production_customer ON production_records(customer_code);
CREATE INDEX IF NOT EXISTS idx_production_item ON production_records(item_code);
CREATE INDEX IF NOT EXISTS idx_production_machine ON production_records(machine_code);
CREATE INDEX IF NOT EXISTS idx_production_department ON production_records(department_name);

CREATE TABLE IF NOT EXISTS import_runs (
    id               BIGSERIAL PRIMARY KEY,
    run_id           TEXT NOT NULL UNIQUE,
    status           TEXT NOT NULL DEFAULT 'running',
    raw_rows         BIGINT NOT NULL DEFAULT 0,
    facts_loaded     BIGINT NOT NULL DEFAULT 0,
    rows_rejected    BIGINT NOT NULL DEFAULT 0,
    dims_upserted    BIGINT NOT NULL DEFAULT 0,
    rejection_sample JSONB NOT NULL DEFAULT '[]',
    error_detail     TEXT NOT NULL DEFAULT '',
    started_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    finished_at      TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS outbox (
    id         BIGSERIAL PRIMARY KEY,
    topic      TEXT NOT NULL,
    payload    BYTEA NOT NULL,
    msg_type   TEXT NOT NULL DEFAULT '',
    site_id    TEXT NOT NULL DEFAULT '',
    retries    INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    sent_at    TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at) WHERE sent_at IS NULL;

CREATE TABLE IF NOT EXISTS admin_users (
    id            BIGSERIAL PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
