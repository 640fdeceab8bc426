// Package profile computes per-column statistics for loaded tables: null and
// distinct ratios, the most frequent value, and integer ranges. It is a
// diagnostic aid run before reconciliation and has no effect on the report.
package profile

import (
	"fmt"
	"math"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/mfonekpo/springer-capital/pkg/records"
)

// Column is the profile of one column.
type Column struct {
	Table         string
	Column        string
	DataType      string
	RowCount      int
	NullCount     int
	NullPct       float64
	DistinctCount int
	DistinctPct   float64

	// TopValue/TopFreq are set only when 0 < DistinctCount < RowCount.
	TopValue string
	TopFreq  int
	HasTop   bool

	// Min/Max are set only for integer columns.
	Min, Max int64
	HasRange bool
}

type bucket struct {
	text  string
	count int
	first int
}

// Table profiles every column of t in header order. An empty table yields nil.
func Table(t records.Table) []Column {
	if t.Empty() {
		return nil
	}
	name := t.Name
	if name == "" {
		name = "unknown"
	}
	total := t.Len()

	out := make([]Column, 0, len(t.Columns))
	for _, col := range t.Columns {
		p := Column{Table: name, Column: col, RowCount: total}

		// Distinct values are tracked by the xxh3 hash of their canonical text;
		// the first text seen for a hash is kept for display.
		seen := make(map[uint64]*bucket)
		kinds := make(map[string]struct{}, 1)
		for i, r := range t.Rows {
			v := r[col]
			if v == nil {
				p.NullCount++
				continue
			}
			kinds[kindOf(v)] = struct{}{}
			text := canonical(v)
			h := xxh3.HashString(text)
			if b, ok := seen[h]; ok {
				b.count++
			} else {
				seen[h] = &bucket{text: text, count: 1, first: i}
			}
			if n, ok := v.(int64); ok {
				if !p.HasRange {
					p.Min, p.Max, p.HasRange = n, n, true
				} else {
					p.Min = min(p.Min, n)
					p.Max = max(p.Max, n)
				}
			}
		}

		p.DataType = typeName(kinds)
		if p.DataType != "int" {
			p.Min, p.Max, p.HasRange = 0, 0, false
		}
		p.DistinctCount = len(seen)
		p.NullPct = pct(p.NullCount, total)
		p.DistinctPct = pct(p.DistinctCount, total)

		if p.DistinctCount > 0 && p.DistinctCount < total {
			var top *bucket
			for _, b := range seen {
				if top == nil || b.count > top.count || (b.count == top.count && b.first < top.first) {
					top = b
				}
			}
			p.TopValue, p.TopFreq, p.HasTop = top.text, top.count, true
		}
		out = append(out, p)
	}
	return out
}

// All profiles every table, keyed by table name.
func All(tables []records.Table) map[string][]Column {
	out := make(map[string][]Column, len(tables))
	for _, t := range tables {
		out[t.Name] = Table(t)
	}
	return out
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*100*10000) / 10000
}

func kindOf(v any) string {
	switch v.(type) {
	case int64, int:
		return "int"
	case bool:
		return "bool"
	case time.Time:
		return "time"
	case string:
		return "string"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func typeName(kinds map[string]struct{}) string {
	switch len(kinds) {
	case 0:
		return "empty"
	case 1:
		for k := range kinds {
			return k
		}
	}
	return "mixed"
}

func canonical(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(t)
	}
}
