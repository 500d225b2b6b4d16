// Package source provides row-oriented access to the legacy forum database
// being migrated. The importer core only ever sees the Querier interface and
// generic Rows, so it stays independent of the source engine and schema.
package source

import (
	"fmt"
	"strconv"
	"time"
)

// Row is one record from a source query, keyed by column name.
// Accessors tolerate the driver-dependent raw types (int64, []byte, strings)
// so transforms don't have to care how the driver surfaced a column.
type Row map[string]any

// Str returns the named column as a string, or "" when absent or NULL.
func (r Row) Str(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns the named column as an int64, or 0 when absent, NULL
// or not numeric.
func (r Row) Int64(key string) int64 {
	switch v := r[key].(type) {
	case nil:
		return 0
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// Int returns the named column as an int.
func (r Row) Int(key string) int {
	return int(r.Int64(key))
}

// Time returns the named column as a time.Time. Numeric values are read as
// Unix seconds; strings are tried against the common SQL datetime layouts.
// Returns the zero time when the column is absent or unparseable.
func (r Row) Time(key string) time.Time {
	switch v := r[key].(type) {
	case nil:
		return time.Time{}
	case time.Time:
		return v
	case int64:
		return time.Unix(v, 0).UTC()
	case int:
		return time.Unix(int64(v), 0).UTC()
	default:
		s := r.Str(key)
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
		return time.Time{}
	}
}

// Querier is the query surface the migration consumes from the source
// database: arbitrary SQL returning field-access rows, plus count queries
// for progress totals.
type Querier interface {
	Query(query string, args ...any) ([]Row, error)
	Count(query string, args ...any) (int, error)
	Close() error
}
