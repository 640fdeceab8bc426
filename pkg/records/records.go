// Package records defines the loosely typed row shared by the parser, the
// cleaning transformers and the profiler. Typed binding into domain structs
// happens later, in the source registry.
package records

// Record is one parsed row keyed by normalized column name. Values start as
// nil or string and may be replaced by transformers with int64, bool or
// time.Time.
type Record map[string]any

// Table is a named, ordered collection of records. Columns keeps the header
// order because maps do not.
type Table struct {
	Name    string
	Columns []string
	Rows    []Record
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// HasColumn reports whether col is part of the header.
func (t Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
