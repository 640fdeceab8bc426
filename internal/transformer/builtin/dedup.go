// Package builtin contains the reusable record transformers the cleaning
// stage chains together: Normalize, Coerce, DeDup, Require and RequireAny.
//
// DeDup collapses duplicate records by a configured key and chooses a winner
// according to a policy:
//
//   - "keep-first" : keep the earliest occurrence (default)
//   - "keep-last"  : keep the latest occurrence
//
// Output order follows the position of each winner in the input, so repeated
// runs over the same input always produce the same slice.
//
// Keys: a record's key is the concatenation of the configured fields as
// strings (nil -> "\x00"). Run DeDup after Normalize/Coerce so that
// types/empty values are consistent.
package builtin

import (
	"fmt"
	"strings"
	"time"

	"github.com/mfonekpo/springer-capital/pkg/records"
)

// DeDup implements an in-memory de-duplication policy.
type DeDup struct {
	// Keys are the field names that form the business key. Passing every
	// column of a table gives whole-row de-duplication.
	Keys []string

	// Policy selects the winner among duplicates: "keep-first" or
	// "keep-last".
	Policy string
}

// Apply returns the winning record for each key, in input order. Records
// lacking one of the key fields are passed through untouched.
func (d DeDup) Apply(in []records.Record) []records.Record {
	if len(in) == 0 || len(d.Keys) == 0 {
		return in
	}
	keepLast := strings.EqualFold(strings.TrimSpace(d.Policy), "keep-last")

	winner := make(map[string]int, len(in))
	keys := make([]string, len(in))
	keyed := make([]bool, len(in))
	for i, r := range in {
		k, ok := d.keyOf(r)
		if !ok {
			continue
		}
		keys[i], keyed[i] = k, true
		if _, seen := winner[k]; !seen || keepLast {
			winner[k] = i
		}
	}

	out := make([]records.Record, 0, len(winner))
	for i, r := range in {
		if !keyed[i] || winner[keys[i]] == i {
			out = append(out, r)
		}
	}
	return out
}

func (d DeDup) keyOf(r records.Record) (string, bool) {
	var b strings.Builder
	for i, k := range d.Keys {
		v, ok := r[k]
		if !ok {
			return "", false
		}
		if i > 0 {
			b.WriteByte('\x1f')
		}
		switch t := v.(type) {
		case nil:
			b.WriteByte('\x00')
		case string:
			b.WriteString(t)
		case time.Time:
			b.WriteString(t.UTC().Format(time.RFC3339Nano))
		default:
			b.WriteString(fmt.Sprint(t))
		}
	}
	return b.String(), true
}
