package domain

import (
	"slices"
	"time"
)

// TimestampColumn holds the capture time appended to every record.
const TimestampColumn = "timestamp"

// TimestampLayout renders the capture time as ISO-8601 with microseconds and
// an explicit +00:00 offset, e.g. 2024-05-01T09:30:00.123456+00:00.
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

// RegistrationID identifies one registration. UUID-shaped, but treated as opaque.
type RegistrationID string

func (id RegistrationID) String() string { return string(id) }

// Record is one flattened registration: an ordered set of column -> value.
//
// Setting a key that already exists overwrites the value but keeps the
// column's original position. Flattening relies on this: two source paths
// with the same leaf name end up as a single column holding the later value.
type Record struct {
	keys   []string
	values map[string]any
}

// Set stores value under key.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Stamp sets the capture timestamp column from t (converted to UTC).
func (r *Record) Stamp(t time.Time) {
	r.Set(TimestampColumn, t.UTC().Format(TimestampLayout))
}

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the column names in insertion order.
func (r Record) Keys() []string { return slices.Clone(r.keys) }

// Len returns the number of columns.
func (r Record) Len() int { return len(r.keys) }

// Table is the merged report: every successfully fetched record in fetch
// order. Columns are the union of record keys in order of first appearance.
type Table struct {
	Columns []string
	Rows    []Record
}

// NewTable concatenates records. No deduplication happens.
func NewTable(records []Record) Table {
	seen := make(map[string]struct{})
	var columns []string

	for _, rec := range records {
		for _, key := range rec.keys {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			columns = append(columns, key)
		}
	}

	return Table{
		Columns: columns,
		Rows:    slices.Clone(records),
	}
}

// Values returns row i aligned to Columns; missing cells are nil.
func (t Table) Values(i int) []any {
	row := t.Rows[i]
	out := make([]any, len(t.Columns))
	for c, col := range t.Columns {
		out[c] = row.values[col]
	}
	return out
}
