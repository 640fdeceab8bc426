// Package transformer defines the record-level transformation contract used by
// the cleaning stage. Implementations live in transformer/builtin.
package transformer

import "github.com/mfonekpo/springer-capital/pkg/records"

// Transformer rewrites a batch of records. Implementations may mutate records
// in place and may return a shorter slice (filters).
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Func adapts a plain function to Transformer.
type Func func([]records.Record) []records.Record

// Apply implements Transformer.
func (f Func) Apply(in []records.Record) []records.Record { return f(in) }

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs every transformer in order, feeding each the previous output.
func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
