package builtin

import (
	"strings"

	"github.com/mfonekpo/springer-capital/pkg/records"
)

// Normalize trims string values, folds non-breaking spaces into plain spaces
// and turns blank strings into nil so later steps see a single null form.
type Normalize struct{}

// Apply normalizes every string value in place.
func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			s, ok := v.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
			if s == "" {
				r[k] = nil
				continue
			}
			r[k] = s
		}
	}
	return in
}
