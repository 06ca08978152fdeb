package etl

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"prodpulse/config"
	"prodpulse/store"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *store.DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	db, err := store.Open(&config.DatabaseConfig{
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

// --- Normalizer tests ---

func TestNormalizerDistinctKeys(t *testing.T) {
	db := testDB(t)
	n := NewNormalizer(db)

	rows := []*store.RawRow{
		{CustCode: "C001", CustName: "Acme", Buyer: "J. Smith", EmpCode: "E1", EmpName: "Maria"},
		{CustCode: "C001", CustName: "Acme", Buyer: "J. Smith", ItemCode: "I-1", ItemName: "Bracket"},
		{CustCode: "C002", CustName: "Globex", MachineCode: "M-01", PerDayMachineCost: "1500.50"},
		{OperationCode: "OP-9", OperationName: "Deburr", DepartmentName: "Stamping"},
	}

	counts, err := n.Run(rows)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if counts.Customers != 2 {
		t.Errorf("Customers = %d, want 2", counts.Customers)
	}
	if counts.Employees != 1 || counts.Items != 1 || counts.Machines != 1 || counts.Operations != 1 || counts.Departments != 1 {
		t.Errorf("counts = %+v", counts)
	}
	if counts.Total() != 7 {
		t.Errorf("Total = %d, want 7", counts.Total())
	}

	m, err := db.GetMachine("M-01")
	if err != nil {
		t.Fatalf("get machine: %v", err)
	}
	if m.PerDayCost != 1500.50 {
		t.Errorf("PerDayCost = %f, want 1500.50", m.PerDayCost)
	}
}

func TestNormalizerLastRowWins(t *testing.T) {
	db := testDB(t)
	n := NewNormalizer(db)

	rows := []*store.RawRow{
		{CustCode: "C001", CustName: "Acme Corp", Buyer: "J. Smith"},
		{CustCode: "C001", CustName: "Acme Corporation", Buyer: "K. Jones"},
	}
	if _, err := n.Run(rows); err != nil {
		t.Fatalf("run: %v", err)
	}

	c, err := db.GetCustomer("C001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if c.Name != "Acme Corporation" || c.Buyer != "K. Jones" {
		t.Errorf("got %q/%q, want the later row's attributes", c.Name, c.Buyer)
	}
}

func TestNormalizerSkipsEmptyKeys(t *testing.T) {
	db := testDB(t)
	n := NewNormalizer(db)

	rows := []*store.RawRow{
		{CustCode: "", CustName: "Orphan name"},
		{CustCode: "  ", EmpCode: "   ", DepartmentName: " "},
		{CustCode: "C001", CustName: "Acme"},
	}
	counts, err := n.Run(rows)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if counts.Customers != 1 {
		t.Errorf("Customers = %d, want 1 (empty keys skipped)", counts.Customers)
	}
	if counts.Employees != 0 || counts.Departments != 0 {
		t.Errorf("counts = %+v, want no employees or departments", counts)
	}
}

func TestNormalizerIdempotent(t *testing.T) {
	db := testDB(t)
	n := NewNormalizer(db)

	rows := []*store.RawRow{
		{CustCode: "C001", CustName: "Acme", ItemCode: "I-1", ItemName: "Bracket", DepartmentName: "Stamping"},
	}
	if _, err := n.Run(rows); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := n.Run(rows); err != nil {
		t.Fatalf("second run: %v", err)
	}

	for _, table := range []string{"customers", "items", "departments"} {
		count, err := db.CountDimension(table)
		if err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("%s count = %d, want 1 after rerun", table, count)
		}
	}
}

func TestParseCost(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1500.50", 1500.50},
		{"1,500.50", 1500.50},
		{"", 0},
		{"not-a-number", 0},
		{" 42 ", 42},
	}
	for _, tt := range tests {
		if got := parseCost(tt.input); got != tt.want {
			t.Errorf("parseCost(%q) = %f, want %f", tt.input, got, tt.want)
		}
	}
}

// --- Loader tests ---

func TestLoaderEligibility(t *testing.T) {
	db := testDB(t)
	l := NewLoader(db)

	rows := []*store.RawRow{
		{DocNum: "DOC-1", DocDate: "2024-01-15", ProducedQty: "100"},
		{DocNum: "", DocDate: "2024-01-15"},     // no document number
		{DocNum: "DOC-2", DocDate: ""},          // no date
		{DocNum: "DOC-3", DocDate: "not-a-date"}, // unparseable date
	}
	loaded, rejected := l.Run(rows)
	if loaded != 1 {
		t.Errorf("loaded = %d, want 1", loaded)
	}
	if len(rejected) != 3 {
		t.Fatalf("rejected = %d, want 3", len(rejected))
	}
	if rejected[0].Reason != "missing document number" {
		t.Errorf("reason = %q, want %q", rejected[0].Reason, "missing document number")
	}
	if rejected[1].Reason != "missing or unparseable document date" {
		t.Errorf("reason = %q", rejected[1].Reason)
	}

	count, _ := db.CountProductionRecords()
	if count != 1 {
		t.Errorf("records = %d, want 1", count)
	}
}

func TestLoaderEmptyBufferIsNotAnError(t *testing.T) {
	db := testDB(t)
	l := NewLoader(db)

	loaded, rejected := l.Run(nil)
	if loaded != 0 || len(rejected) != 0 {
		t.Errorf("loaded/rejected = %d/%d, want 0/0", loaded, len(rejected))
	}
}

func TestLoaderDefaultsAndCoercion(t *testing.T) {
	db := testDB(t)
	l := NewLoader(db)

	rows := []*store.RawRow{
		{DocNum: "DOC-1", DocDate: "2024-01-15", ProducedQty: "", TotalValue: "", Repeat: "YES"},
		{DocNum: "DOC-2", DocDate: "2024-01-16", ProducedQty: "10.7", TotalValue: "1,234.50", Repeat: "no"},
	}
	loaded, rejected := l.Run(rows)
	if loaded != 2 || len(rejected) != 0 {
		t.Fatalf("loaded/rejected = %d/%d, want 2/0", loaded, len(rejected))
	}

	records, _ := db.ListProductionRecords(10)
	byDoc := map[string]*store.ProductionRecord{}
	for _, r := range records {
		byDoc[r.DocNum] = r
	}

	if byDoc["DOC-1"].ProducedQty != 0 || byDoc["DOC-1"].TotalValue != 0 {
		t.Errorf("DOC-1 empty cells should default to 0, got %+v", byDoc["DOC-1"])
	}
	if !byDoc["DOC-1"].RepeatOrder {
		t.Error("DOC-1 Repeat=YES should be true")
	}
	if byDoc["DOC-2"].ProducedQty != 10 {
		t.Errorf("DOC-2 ProducedQty = %d, want 10 (decimal truncated)", byDoc["DOC-2"].ProducedQty)
	}
	if byDoc["DOC-2"].TotalValue != 1234.50 {
		t.Errorf("DOC-2 TotalValue = %f, want 1234.50", byDoc["DOC-2"].TotalValue)
	}
	if byDoc["DOC-2"].RepeatOrder {
		t.Error("DOC-2 Repeat=no should be false")
	}
}

func TestLoaderRejectsMalformedQty(t *testing.T) {
	db := testDB(t)
	l := NewLoader(db)

	rows := []*store.RawRow{
		{DocNum: "DOC-1", DocDate: "2024-01-15", ProducedQty: "lots"},
		{DocNum: "DOC-2", DocDate: "2024-01-15", RejectedQty: "-5"},
		{DocNum: "DOC-3", DocDate: "2024-01-15", TotalQty: "-0.7"},
	}
	loaded, rejected := l.Run(rows)
	if loaded != 0 || len(rejected) != 3 {
		t.Fatalf("loaded/rejected = %d/%d, want 0/3", loaded, len(rejected))
	}
	if rejected[0].Reason != `bad produced qty "lots"` {
		t.Errorf("reason = %q", rejected[0].Reason)
	}
	// Counters are non-negative: a negative cell is malformed, not a value
	if rejected[1].Reason != `bad rejected qty "-5"` {
		t.Errorf("reason = %q", rejected[1].Reason)
	}
	if rejected[2].Reason != `bad total qty "-0.7"` {
		t.Errorf("reason = %q", rejected[2].Reason)
	}

	count, _ := db.CountProductionRecords()
	if count != 0 {
		t.Errorf("records = %d, want 0", count)
	}
}

func TestLoaderSoftForeignKeys(t *testing.T) {
	db := testDB(t)
	db.UpsertCustomer("C001", "Acme", "")
	l := NewLoader(db)

	rows := []*store.RawRow{
		{DocNum: "DOC-1", DocDate: "2024-01-15", CustCode: "C001", EmpCode: "E-UNKNOWN"},
	}
	loaded, rejected := l.Run(rows)
	if loaded != 1 || len(rejected) != 0 {
		t.Fatalf("loaded/rejected = %d/%d, want 1/0", loaded, len(rejected))
	}

	records, _ := db.ListProductionRecords(10)
	r := records[0]
	if r.CustomerCode == nil || *r.CustomerCode != "C001" {
		t.Errorf("CustomerCode = %v, want C001", r.CustomerCode)
	}
	// Unknown employee code loads as NULL, the row itself survives
	if r.EmployeeCode != nil {
		t.Errorf("EmployeeCode = %v, want nil", r.EmployeeCode)
	}
}

func TestLoaderDateLayouts(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
	}{
		{"2024-01-15", true},
		{"2024/01/15", true},
		{"15-01-2024", true},
		{"15/01/2024", true},
		{"2024-01-15 10:30:00", true},
		{"Jan 15 2024", false},
		{"", false},
	}
	for _, tt := range tests {
		_, ok := parseDocDate(tt.input)
		if ok != tt.ok {
			t.Errorf("parseDocDate(%q) ok = %v, want %v", tt.input, ok, tt.ok)
		}
	}
}

// --- Importer tests ---

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) Invalidate(_ context.Context) { f.calls++ }

func TestImporterEndToEnd(t *testing.T) {
	db := testDB(t)
	inv := &fakeInvalidator{}

	db.InsertRawRow(&store.RawRow{
		CustCode: "C001", CustName: "Acme", Buyer: "J. Smith",
		DocNum: "DOC-1", DocDate: "2024-01-15",
		ProducedQty: "100", RejectedQty: "10", TotalQty: "100", TotalValue: "5000",
	})
	db.InsertRawRow(&store.RawRow{
		CustCode: "C002", CustName: "Globex",
		DocNum: "", DocDate: "2024-01-16", // rejected: no document number
	})

	im := NewImporter(ImporterConfig{
		DB:     db,
		Cache:  inv,
		SiteID: "plant-1",
		Topic:  "prodpulse.import-reports",
	})

	report, err := im.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.RawRows != 2 {
		t.Errorf("RawRows = %d, want 2", report.RawRows)
	}
	if report.FactsLoaded != 1 {
		t.Errorf("FactsLoaded = %d, want 1", report.FactsLoaded)
	}
	if report.RowsRejected != 1 {
		t.Errorf("RowsRejected = %d, want 1", report.RowsRejected)
	}
	if report.Dimensions.Customers != 2 {
		t.Errorf("Customers = %d, want 2 (rejected rows still feed dimensions)", report.Dimensions.Customers)
	}
	if len(report.Rejections) != 1 || report.Rejections[0].Reason != "missing document number" {
		t.Errorf("Rejections = %+v", report.Rejections)
	}
	if inv.calls != 1 {
		t.Errorf("invalidator calls = %d, want 1", inv.calls)
	}

	// Run is persisted
	run, err := db.GetImportRun(report.RunID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if run.Status != "completed" {
		t.Errorf("Status = %q, want completed", run.Status)
	}
	if run.RawRows != 2 || run.FactsLoaded != 1 || run.RowsRejected != 1 {
		t.Errorf("persisted counts = %d/%d/%d", run.RawRows, run.FactsLoaded, run.RowsRejected)
	}

	// Report is staged for delivery
	msgs, _ := db.ListPendingOutbox(10)
	if len(msgs) != 1 {
		t.Fatalf("outbox len = %d, want 1", len(msgs))
	}
	if msgs[0].Topic != "prodpulse.import-reports" || msgs[0].MsgType != "import_report" {
		t.Errorf("outbox msg = %+v", msgs[0])
	}
	var decoded Report
	if err := json.Unmarshal(msgs[0].Payload, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.RunID != report.RunID || decoded.SiteID != "plant-1" {
		t.Errorf("payload = %+v", decoded)
	}
}

func TestImporterEmptyBuffer(t *testing.T) {
	db := testDB(t)
	inv := &fakeInvalidator{}

	im := NewImporter(ImporterConfig{DB: db, Cache: inv, SiteID: "plant-1"})
	report, err := im.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.RawRows != 0 || report.FactsLoaded != 0 || report.RowsRejected != 0 {
		t.Errorf("report = %+v, want all zeros", report)
	}
	// Nothing loaded, nothing to invalidate
	if inv.calls != 0 {
		t.Errorf("invalidator calls = %d, want 0", inv.calls)
	}
}

func TestImporterSampleCap(t *testing.T) {
	db := testDB(t)

	for i := 0; i < 5; i++ {
		db.InsertRawRow(&store.RawRow{DocNum: "", DocDate: "2024-01-01"})
	}

	im := NewImporter(ImporterConfig{DB: db, SampleSize: 2})
	report, err := im.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.RowsRejected != 5 {
		t.Errorf("RowsRejected = %d, want 5", report.RowsRejected)
	}
	if len(report.Rejections) != 2 {
		t.Errorf("sample len = %d, want 2 (capped)", len(report.Rejections))
	}
}

func TestImporterRerunDuplicatesFacts(t *testing.T) {
	db := testDB(t)

	db.InsertRawRow(&store.RawRow{DocNum: "DOC-1", DocDate: "2024-01-15", CustCode: "C001", CustName: "Acme"})

	im := NewImporter(ImporterConfig{DB: db})
	if _, err := im.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := im.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	// Dimensions stay distinct, facts duplicate: the buffer was not cleared
	custs, _ := db.CountDimension("customers")
	if custs != 1 {
		t.Errorf("customers = %d, want 1", custs)
	}
	facts, _ := db.CountProductionRecords()
	if facts != 2 {
		t.Errorf("facts = %d, want 2 (append-only fact table)", facts)
	}
	runs, _ := db.ListImportRuns(10)
	if len(runs) != 2 {
		t.Errorf("runs = %d, want 2", len(runs))
	}
}
