package builtin

import "github.com/mfonekpo/springer-capital/pkg/records"

// Require removes any record missing a value for any of the specified fields.
type Require struct {
	Fields []string
}

// Apply returns a filtered slice containing only records that
// have all required fields present and non-empty.
func (r Require) Apply(in []records.Record) []records.Record {
	out := in[:0]
	for _, rec := range in {
		ok := true
		for _, f := range r.Fields {
			if missing(rec, f) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out
}

// RequireAny removes records where every one of the specified fields is
// missing. A record with at least one value survives.
type RequireAny struct {
	Fields []string
}

// Apply filters in place.
func (r RequireAny) Apply(in []records.Record) []records.Record {
	if len(r.Fields) == 0 {
		return in
	}
	out := in[:0]
	for _, rec := range in {
		for _, f := range r.Fields {
			if !missing(rec, f) {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

func missing(rec records.Record, f string) bool {
	v, exists := rec[f]
	return !exists || v == nil || v == ""
}
