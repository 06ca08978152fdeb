package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Dialect interface {
	Placeholder(n int) string
	Now() string
	// YearExpr/MonthExpr/DayExpr return SQL extracting a calendar part
	// from a date column as an integer.
	YearExpr(col string) string
	MonthExpr(col string) string
	DayExpr(col string) string
}

type sqliteDialect struct{}

func (d sqliteDialect) Placeholder(_ int) string { return "?" }
func (d sqliteDialect) Now() string              { return "datetime('now','localtime')" }
func (d sqliteDialect) YearExpr(col string) string {
	return fmt.Sprintf("CAST(strftime('%%Y', %s) AS INTEGER)", col)
}
func (d sqliteDialect) MonthExpr(col string) string {
	return fmt.Sprintf("CAST(strftime('%%m', %s) AS INTEGER)", col)
}
func (d sqliteDialect) DayExpr(col string) string {
	return fmt.Sprintf("CAST(strftime('%%d', %s) AS INTEGER)", col)
}

type postgresDialect struct{}

func (d postgresDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }
func (d postgresDialect) Now() string              { return "NOW()" }
func (d postgresDialect) YearExpr(col string) string {
	return fmt.Sprintf("CAST(EXTRACT(YEAR FROM %s) AS INTEGER)", col)
}
func (d postgresDialect) MonthExpr(col string) string {
	return fmt.Sprintf("CAST(EXTRACT(MONTH FROM %s) AS INTEGER)", col)
}
func (d postgresDialect) DayExpr(col string) string {
	return fmt.Sprintf("CAST(EXTRACT(DAY FROM %s) AS INTEGER)", col)
}

// parseTime converts a scanned timestamp value to time.Time.
// Handles both SQLite (returns string) and Postgres (returns time.Time).
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if t == "" {
			return time.Time{}
		}
		for _, layout := range []string{
			"2006-01-02 15:04:05",
			time.RFC3339,
			time.RFC3339Nano,
			"2006-01-02 15:04:05-07:00",
			"2006-01-02 15:04:05.999999-07:00",
			"2006-01-02",
		} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}

// parseTimePtr is like parseTime but returns nil for zero/missing timestamps.
func parseTimePtr(v any) *time.Time {
	t := parseTime(v)
	if t.IsZero() {
		return nil
	}
	return &t
}

// toFloat converts a scanned numeric value to float64. Postgres NUMERIC
// arrives as string or []byte through database/sql; SQLite returns float64.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case []byte:
		f, _ := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
		return f
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f
	}
	return 0
}

// toFloatPtr is like toFloat but preserves NULL as nil. Views that divide
// with NULLIF depend on the NULL surviving all the way to the consumer.
func toFloatPtr(v any) *float64 {
	if v == nil {
		return nil
	}
	f := toFloat(v)
	return &f
}

// toInt converts a scanned aggregate to int64. Postgres returns SUM of a
// BIGINT column as NUMERIC, which arrives as string through database/sql.
func toInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case []byte, string:
		return int64(toFloat(v))
	}
	return 0
}

// toBool converts a scanned boolean. Postgres returns bool, SQLite 0/1.
func toBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int64:
		return b != 0
	case int:
		return b != 0
	case string:
		return b == "1" || b == "true" || b == "t"
	}
	return false
}

// Rebind rewrites ? placeholders to $1, $2, ... for PostgreSQL.
func Rebind(query string) string {
	n := 0
	var b strings.Builder
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteString(fmt.Sprintf("$%d", n))
		} else {
			b.WriteByte(query[i])
		}
	}
	return b.String()
}
