package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"prodpulse/config"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	db, err := Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: dbPath},
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

func strPtr(s string) *string { return &s }

// --- Dimension tests ---

func TestCustomerUpsert(t *testing.T) {
	db := testDB(t)

	if err := db.UpsertCustomer("C001", "Acme Corp", "J. Smith"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.GetCustomer("C001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Acme Corp" {
		t.Errorf("Name = %q, want %q", got.Name, "Acme Corp")
	}
	if got.Buyer != "J. Smith" {
		t.Errorf("Buyer = %q, want %q", got.Buyer, "J. Smith")
	}

	// Same code again with different attributes: overwrite, not duplicate
	if err := db.UpsertCustomer("C001", "Acme Corporation", "K. Jones"); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got2, _ := db.GetCustomer("C001")
	if got2.Name != "Acme Corporation" {
		t.Errorf("Name after overwrite = %q, want %q", got2.Name, "Acme Corporation")
	}
	if got2.Buyer != "K. Jones" {
		t.Errorf("Buyer after overwrite = %q, want %q", got2.Buyer, "K. Jones")
	}
	count, _ := db.CountDimension("customers")
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	// Empty code is rejected
	if err := db.UpsertCustomer("", "Nameless", ""); err == nil {
		t.Error("expected error for empty code")
	}
}

func TestEmployeeUpsert(t *testing.T) {
	db := testDB(t)

	db.UpsertEmployee("E100", "Maria Lopez")
	db.UpsertEmployee("E100", "Maria Lopez-Garcia")
	db.UpsertEmployee("E200", "Tom Chen")

	got, err := db.GetEmployee("E100")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Maria Lopez-Garcia" {
		t.Errorf("Name = %q, want %q", got.Name, "Maria Lopez-Garcia")
	}

	list, err := db.ListEmployees()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("len = %d, want 2", len(list))
	}
	// Ordered by code
	if list[0].Code != "E100" || list[1].Code != "E200" {
		t.Errorf("order = %q, %q, want E100, E200", list[0].Code, list[1].Code)
	}
}

func TestMachineUpsert(t *testing.T) {
	db := testDB(t)

	db.UpsertMachine("M-01", 1500.50)
	got, err := db.GetMachine("M-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PerDayCost != 1500.50 {
		t.Errorf("PerDayCost = %f, want 1500.50", got.PerDayCost)
	}

	db.UpsertMachine("M-01", 1600.00)
	got2, _ := db.GetMachine("M-01")
	if got2.PerDayCost != 1600.00 {
		t.Errorf("PerDayCost after overwrite = %f, want 1600.00", got2.PerDayCost)
	}
}

func TestDepartmentUpsert(t *testing.T) {
	db := testDB(t)

	id1, err := db.UpsertDepartment("Stamping")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if id1 == 0 {
		t.Fatal("id should be assigned")
	}

	// Same name returns the same surrogate id
	id2, err := db.UpsertDepartment("Stamping")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if id2 != id1 {
		t.Errorf("id = %d, want %d", id2, id1)
	}

	db.UpsertDepartment("Welding")
	list, _ := db.ListDepartments()
	if len(list) != 2 {
		t.Errorf("len = %d, want 2", len(list))
	}

	got, err := db.GetDepartmentByName("Welding")
	if err != nil {
		t.Fatalf("getByName: %v", err)
	}
	if got.Name != "Welding" {
		t.Errorf("Name = %q, want %q", got.Name, "Welding")
	}
}

func TestHasCode(t *testing.T) {
	db := testDB(t)

	db.UpsertItem("I-9", "Bracket")

	ok, err := db.HasCode("items", "I-9")
	if err != nil {
		t.Fatalf("hasCode: %v", err)
	}
	if !ok {
		t.Error("I-9 should exist")
	}

	ok, _ = db.HasCode("items", "I-MISSING")
	if ok {
		t.Error("I-MISSING should not exist")
	}

	// Unknown table is rejected, not interpolated
	if _, err := db.HasCode("production_records", "x"); err == nil {
		t.Error("expected error for non-dimension table")
	}
}

// --- Production record tests ---

func TestProductionRecordInsertGet(t *testing.T) {
	db := testDB(t)

	db.UpsertCustomer("C001", "Acme", "")

	p := &ProductionRecord{
		DocNum:         "DOC-1",
		DocDate:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		CustomerCode:   strPtr("C001"),
		DepartmentName: "Stamping",
		ProducedQty:    100,
		RejectedQty:    10,
		TotalQty:       100,
		TotalValue:     5000,
		RepeatOrder:    true,
	}
	if err := db.InsertProductionRecord(p); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("ID should be assigned")
	}

	got, err := db.GetProductionRecord(p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.DocNum != "DOC-1" {
		t.Errorf("DocNum = %q, want %q", got.DocNum, "DOC-1")
	}
	if !got.DocDate.Equal(p.DocDate) {
		t.Errorf("DocDate = %v, want %v", got.DocDate, p.DocDate)
	}
	if got.CustomerCode == nil || *got.CustomerCode != "C001" {
		t.Errorf("CustomerCode = %v, want C001", got.CustomerCode)
	}
	if got.EmployeeCode != nil {
		t.Errorf("EmployeeCode = %v, want nil", got.EmployeeCode)
	}
	if got.ProducedQty != 100 || got.RejectedQty != 10 {
		t.Errorf("qtys = %d/%d, want 100/10", got.ProducedQty, got.RejectedQty)
	}
	if got.TotalValue != 5000 {
		t.Errorf("TotalValue = %f, want 5000", got.TotalValue)
	}
	if !got.RepeatOrder {
		t.Error("RepeatOrder should be true")
	}
}

func TestProductionRecordAppendOnly(t *testing.T) {
	db := testDB(t)

	p := &ProductionRecord{DocNum: "DOC-7", DocDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	if err := db.InsertProductionRecord(p); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	// Same document number again: two rows, no uniqueness
	p2 := &ProductionRecord{DocNum: "DOC-7", DocDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	if err := db.InsertProductionRecord(p2); err != nil {
		t.Fatalf("second insert: %v", err)
	}
	count, _ := db.CountProductionRecords()
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestListProductionRecordsOrder(t *testing.T) {
	db := testDB(t)

	db.InsertProductionRecord(&ProductionRecord{DocNum: "OLD", DocDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	db.InsertProductionRecord(&ProductionRecord{DocNum: "NEW", DocDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)})

	records, err := db.ListProductionRecords(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if records[0].DocNum != "NEW" {
		t.Errorf("first = %q, want NEW (newest first)", records[0].DocNum)
	}
}

// --- Raw intake tests ---

func TestRawRowRoundTrip(t *testing.T) {
	db := testDB(t)

	r := &RawRow{
		CustCode: "C001", CustName: "Acme", Buyer: "J. Smith",
		DocNum: "DOC-1", DocDate: "2024-01-15",
		ProducedQty: "100", TotalValue: "5000.00", Repeat: "1",
	}
	if err := db.InsertRawRow(r); err != nil {
		t.Fatalf("insert: %v", err)
	}

	rows, err := db.ListRawRows()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len = %d, want 1", len(rows))
	}
	if rows[0].CustCode != "C001" || rows[0].DocDate != "2024-01-15" {
		t.Errorf("got %+v", rows[0])
	}
	// Unset cells come back as empty strings, not NULLs
	if rows[0].MachineCode != "" {
		t.Errorf("MachineCode = %q, want empty", rows[0].MachineCode)
	}

	if err := db.ClearRawRows(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	count, _ := db.CountRawRows()
	if count != 0 {
		t.Errorf("count after clear = %d, want 0", count)
	}
}

// --- Import run tests ---

func TestImportRunLifecycle(t *testing.T) {
	db := testDB(t)

	if err := db.CreateImportRun("run-1"); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := db.GetImportRun("run-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != "running" {
		t.Errorf("Status = %q, want %q", got.Status, "running")
	}
	if got.FinishedAt != nil {
		t.Error("FinishedAt should be nil while running")
	}

	err = db.FinishImportRun("run-1", "completed", 10, 8, 2, 5, `[{"reason":"missing document number"}]`, "")
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	got2, _ := db.GetImportRun("run-1")
	if got2.Status != "completed" {
		t.Errorf("Status = %q, want %q", got2.Status, "completed")
	}
	if got2.RawRows != 10 || got2.FactsLoaded != 8 || got2.RowsRejected != 2 || got2.DimsUpserted != 5 {
		t.Errorf("counts = %d/%d/%d/%d, want 10/8/2/5", got2.RawRows, got2.FactsLoaded, got2.RowsRejected, got2.DimsUpserted)
	}
	if got2.FinishedAt == nil {
		t.Error("FinishedAt should be set")
	}

	// Duplicate run_id is refused
	if err := db.CreateImportRun("run-1"); err == nil {
		t.Error("expected error for duplicate run_id")
	}

	db.CreateImportRun("run-2")
	runs, _ := db.ListImportRuns(10)
	if len(runs) != 2 {
		t.Fatalf("len = %d, want 2", len(runs))
	}
	// Most recent first
	if runs[0].RunID != "run-2" {
		t.Errorf("first = %q, want run-2", runs[0].RunID)
	}
}

// --- Outbox tests ---

func TestOutboxLifecycle(t *testing.T) {
	db := testDB(t)

	if err := db.EnqueueOutbox("prodpulse.import-reports", []byte(`{"run_id":"r1"}`), "import_report", "plant-1"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	db.EnqueueOutbox("prodpulse.import-reports", []byte(`{"run_id":"r2"}`), "import_report", "plant-1")

	msgs, err := db.ListPendingOutbox(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2", len(msgs))
	}
	if msgs[0].MsgType != "import_report" {
		t.Errorf("msg_type = %q, want %q", msgs[0].MsgType, "import_report")
	}
	if msgs[0].SiteID != "plant-1" {
		t.Errorf("site_id = %q, want %q", msgs[0].SiteID, "plant-1")
	}

	db.AckOutbox(msgs[0].ID)
	msgs2, _ := db.ListPendingOutbox(10)
	if len(msgs2) != 1 {
		t.Errorf("pending after ack = %d, want 1", len(msgs2))
	}

	db.IncrementOutboxRetries(msgs2[0].ID)
	msgs3, _ := db.ListPendingOutbox(10)
	if msgs3[0].Retries != 1 {
		t.Errorf("retries = %d, want 1", msgs3[0].Retries)
	}
}

// --- Admin user tests ---

func TestAdminUsers(t *testing.T) {
	db := testDB(t)

	exists, _ := db.AdminUserExists()
	if exists {
		t.Error("fresh db should have no admin users")
	}

	if err := db.CreateAdminUser("admin", "hash-value"); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := db.GetAdminUser("admin")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PasswordHash != "hash-value" {
		t.Errorf("PasswordHash = %q, want %q", got.PasswordHash, "hash-value")
	}

	exists, _ = db.AdminUserExists()
	if !exists {
		t.Error("admin user should exist")
	}

	if _, err := db.GetAdminUser("nobody"); err == nil {
		t.Error("expected error for missing user")
	}
}

// --- Dialect tests ---

func TestRebind(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"SELECT * FROM t WHERE a=? AND b=?", "SELECT * FROM t WHERE a=$1 AND b=$2"},
		{"INSERT INTO t (a) VALUES (?)", "INSERT INTO t (a) VALUES ($1)"},
		{"SELECT 1", "SELECT 1"},
	}
	for _, tt := range tests {
		got := Rebind(tt.input)
		if got != tt.want {
			t.Errorf("Rebind(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		input any
		want  float64
	}{
		{float64(1.5), 1.5},
		{int64(3), 3},
		{"5000.00", 5000},
		{[]byte("12.25"), 12.25},
		{nil, 0},
	}
	for _, tt := range tests {
		if got := toFloat(tt.input); got != tt.want {
			t.Errorf("toFloat(%v) = %f, want %f", tt.input, got, tt.want)
		}
	}
}

func TestParseTimeLayouts(t *testing.T) {
	got := parseTime("2024-01-15")
	if got.Year() != 2024 || got.Month() != time.January || got.Day() != 15 {
		t.Errorf("parseTime date-only = %v", got)
	}
	got2 := parseTime("2024-01-15 10:30:00")
	if got2.Hour() != 10 {
		t.Errorf("parseTime datetime = %v", got2)
	}
	if !parseTime("").IsZero() {
		t.Error("empty string should parse to zero time")
	}
}
