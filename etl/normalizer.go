package etl

import (
	"fmt"
	"strconv"
	"strings"

	"prodpulse/store"
)

// Normalizer populates the dimension tables from the intake buffer.
// For each dimension it collects the distinct non-empty natural keys with
// their most recently seen descriptive attributes, then upserts each one.
// Re-running over unchanged raw data leaves the dimension stores unchanged;
// the stores only ever grow in distinct key count.
type Normalizer struct {
	db *store.DB
}

func NewNormalizer(db *store.DB) *Normalizer {
	return &Normalizer{db: db}
}

type customerAttrs struct {
	name  string
	buyer string
}

// Run extracts and upserts all six dimensions. Rows with an empty key are
// excluded from that dimension's population; that is not an error. A scan
// of the slice runs front to back, so when the buffer carries duplicate
// keys with divergent attributes the last row wins.
func (n *Normalizer) Run(rows []*store.RawRow) (DimensionCounts, error) {
	var counts DimensionCounts

	customers := map[string]customerAttrs{}
	employees := map[string]string{}
	items := map[string]string{}
	machines := map[string]float64{}
	operations := map[string]string{}
	departments := map[string]struct{}{}

	for _, r := range rows {
		if code := strings.TrimSpace(r.CustCode); code != "" {
			customers[code] = customerAttrs{name: strings.TrimSpace(r.CustName), buyer: strings.TrimSpace(r.Buyer)}
		}
		if code := strings.TrimSpace(r.EmpCode); code != "" {
			employees[code] = strings.TrimSpace(r.EmpName)
		}
		if code := strings.TrimSpace(r.ItemCode); code != "" {
			items[code] = strings.TrimSpace(r.ItemName)
		}
		if code := strings.TrimSpace(r.MachineCode); code != "" {
			machines[code] = parseCost(r.PerDayMachineCost)
		}
		if code := strings.TrimSpace(r.OperationCode); code != "" {
			operations[code] = strings.TrimSpace(r.OperationName)
		}
		if name := strings.TrimSpace(r.DepartmentName); name != "" {
			departments[name] = struct{}{}
		}
	}

	for code, attrs := range customers {
		if err := n.db.UpsertCustomer(code, attrs.name, attrs.buyer); err != nil {
			return counts, fmt.Errorf("normalize customers: %w", err)
		}
		counts.Customers++
	}
	for code, name := range employees {
		if err := n.db.UpsertEmployee(code, name); err != nil {
			return counts, fmt.Errorf("normalize employees: %w", err)
		}
		counts.Employees++
	}
	for code, name := range items {
		if err := n.db.UpsertItem(code, name); err != nil {
			return counts, fmt.Errorf("normalize items: %w", err)
		}
		counts.Items++
	}
	for code, cost := range machines {
		if err := n.db.UpsertMachine(code, cost); err != nil {
			return counts, fmt.Errorf("normalize machines: %w", err)
		}
		counts.Machines++
	}
	for code, name := range operations {
		if err := n.db.UpsertOperation(code, name); err != nil {
			return counts, fmt.Errorf("normalize operations: %w", err)
		}
		counts.Operations++
	}
	for name := range departments {
		if _, err := n.db.UpsertDepartment(name); err != nil {
			return counts, fmt.Errorf("normalize departments: %w", err)
		}
		counts.Departments++
	}
	return counts, nil
}

// parseCost coerces a raw cost cell. A cell that cannot be parsed behaves
// like an absent one: machine cost is descriptive, not load-bearing.
func parseCost(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return f
}
