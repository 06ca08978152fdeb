package etl

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"prodpulse/store"
)

// Loader maps eligible raw rows into production records. A row is eligible
// when it carries a document number and a parseable document date; anything
// else is collected as a rejection, never thrown away unseen. References to
// dimensions are soft: a code that no dimension row matches loads as NULL.
// The fact table has no natural key, so loading the same buffer twice
// duplicates its facts.
type Loader struct {
	db *store.DB
}

func NewLoader(db *store.DB) *Loader {
	return &Loader{db: db}
}

// docDateLayouts are tried in order against the raw date cell.
var docDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Run loads every eligible row. A failure is fatal only to its own row;
// the loader always finishes the batch.
func (l *Loader) Run(rows []*store.RawRow) (loaded int64, rejected []RejectedRow) {
	for _, r := range rows {
		if reason := l.loadRow(r); reason != "" {
			rejected = append(rejected, RejectedRow{Reason: reason, Row: r})
			continue
		}
		loaded++
	}
	return loaded, rejected
}

// loadRow maps one raw row and returns "" on success or the rejection reason.
func (l *Loader) loadRow(r *store.RawRow) string {
	docNum := strings.TrimSpace(r.DocNum)
	if docNum == "" {
		return "missing document number"
	}
	docDate, ok := parseDocDate(r.DocDate)
	if !ok {
		return "missing or unparseable document date"
	}

	p := &store.ProductionRecord{
		DocNum:         docNum,
		DocDate:        docDate,
		DepartmentName: strings.TrimSpace(r.DepartmentName),
		Designer:       strings.TrimSpace(r.Designer),
		DeliveryPeriod: strings.TrimSpace(r.DeliveryPeriod),
		RepeatOrder:    truthy(r.Repeat),
	}

	var err error
	if p.PressQty, err = parseQty(r.PressQty); err != nil {
		return fmt.Sprintf("bad press qty %q", r.PressQty)
	}
	if p.ProcessedQty, err = parseQty(r.ProcessedQty); err != nil {
		return fmt.Sprintf("bad processed qty %q", r.ProcessedQty)
	}
	if p.ProducedQty, err = parseQty(r.ProducedQty); err != nil {
		return fmt.Sprintf("bad produced qty %q", r.ProducedQty)
	}
	if p.RejectedQty, err = parseQty(r.RejectedQty); err != nil {
		return fmt.Sprintf("bad rejected qty %q", r.RejectedQty)
	}
	if p.TodayMfgQty, err = parseQty(r.TodayMfgQty); err != nil {
		return fmt.Sprintf("bad today manufactured qty %q", r.TodayMfgQty)
	}
	if p.TotalQty, err = parseQty(r.TotalQty); err != nil {
		return fmt.Sprintf("bad total qty %q", r.TotalQty)
	}
	if p.WOQty, err = parseQty(r.WOQty); err != nil {
		return fmt.Sprintf("bad wo qty %q", r.WOQty)
	}
	if p.TotalValue, err = parseValue(r.TotalValue); err != nil {
		return fmt.Sprintf("bad total value %q", r.TotalValue)
	}

	p.CustomerCode = l.resolve("customers", r.CustCode)
	p.EmployeeCode = l.resolve("employees", r.EmpCode)
	p.ItemCode = l.resolve("items", r.ItemCode)
	p.MachineCode = l.resolve("machines", r.MachineCode)
	p.OperationCode = l.resolve("operations", r.OperationCode)

	if err := l.db.InsertProductionRecord(p); err != nil {
		return fmt.Sprintf("insert failed: %v", err)
	}
	return ""
}

// resolve returns a pointer to the code when the dimension store has it,
// nil otherwise. Pre-nulling unmatched codes is what keeps the declared
// foreign keys from ever firing: the loader, not the database, is the
// gatekeeper of referential consistency.
func (l *Loader) resolve(table, rawCode string) *string {
	code := strings.TrimSpace(rawCode)
	if code == "" {
		return nil
	}
	ok, err := l.db.HasCode(table, code)
	if err != nil {
		log.Printf("etl: resolve %s %q: %v", table, code, err)
		return nil
	}
	if !ok {
		return nil
	}
	return &code
}

func parseDocDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range docDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseQty coerces a counter cell. Empty means 0; a decimal string is
// truncated; a negative or otherwise malformed cell rejects the row, since
// the counters are non-negative by definition and a stored negative would
// skew every averaged rate downstream.
func parseQty(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, ferr
		}
		if f < 0 {
			return 0, fmt.Errorf("negative quantity %v", f)
		}
		n = int64(f)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative quantity %d", n)
	}
	return n, nil
}

// parseValue coerces a monetary cell, empty meaning 0.00.
func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

// truthy reports whether a raw repeat-order cell marks a repeat.
// Only an explicit yes counts; everything else is false.
func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y":
		return true
	}
	return false
}
