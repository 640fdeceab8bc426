package builtin

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mfonekpo/springer-capital/pkg/records"
)

// Coerce converts string fields into typed values.
//
// Supported target types:
//
//   - "int"       : base-10 integer → int64
//   - "bool"      : strconv.ParseBool vocabulary → bool
//   - "flag"      : Truthy/Falsy vocabulary → bool; anything else, nil
//     included, becomes false
//   - "timestamp" : any of Layouts (or TimestampLayouts) → UTC time.Time;
//     inputs without an offset are read as UTC
//   - "date"      : Layout → time.Time
//   - "digits"    : first run of decimal digits → int64 ("Rp 50000" → 50000)
//   - "string"    : left as-is
type Coerce struct {
	Types  map[string]string // field -> target type
	Layout string            // date layout

	// Layouts overrides TimestampLayouts for "timestamp" fields.
	Layouts []string

	// Truthy/Falsy define the "flag" vocabulary. Matching is exact after
	// trimming. Empty lists fall back to DefaultTruthy/DefaultFalsy.
	Truthy []string
	Falsy  []string

	// NullOnError replaces values that fail to parse with nil. When false the
	// original string is left in place.
	NullOnError bool
}

// DefaultTruthy and DefaultFalsy are the "flag" vocabularies used when Coerce
// does not configure its own.
var (
	DefaultTruthy = []string{"True", "true"}
	DefaultFalsy  = []string{"False", "false"}
)

// TimestampLayouts are tried in order by ParseTimestamp.
var TimestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

var digitRun = regexp.MustCompile(`\d+`)

// Apply coerces every configured field of every record in place.
func (c Coerce) Apply(in []records.Record) []records.Record {
	if len(c.Types) == 0 {
		return in
	}
	truthy := c.Truthy
	falsy := c.Falsy
	if len(truthy) == 0 && len(falsy) == 0 {
		truthy, falsy = DefaultTruthy, DefaultFalsy
	}

	for _, r := range in {
		for field, typ := range c.Types {
			v, ok := r[field]
			if typ == "flag" {
				// Flags are total: a missing column is left missing, but a
				// present nil still resolves to false.
				if ok {
					r[field] = toFlag(v, truthy, falsy)
				}
				continue
			}
			if !ok || v == nil {
				continue
			}
			s, isStr := v.(string)
			if !isStr {
				continue
			}
			s = strings.TrimSpace(s)

			var (
				out    any
				parsed bool
			)
			switch typ {
			case "int":
				if i, err := strconv.ParseInt(s, 10, 64); err == nil {
					out, parsed = i, true
				}
			case "bool":
				if b, err := strconv.ParseBool(s); err == nil {
					out, parsed = b, true
				}
			case "timestamp":
				if t, ok := ParseTimestamp(s, c.Layouts...); ok {
					out, parsed = t, true
				}
			case "date":
				if t, err := time.Parse(c.Layout, s); err == nil {
					out, parsed = t, true
				}
			case "digits":
				if m := digitRun.FindString(s); m != "" {
					if i, err := strconv.ParseInt(m, 10, 64); err == nil {
						out, parsed = i, true
					}
				}
			default:
				continue
			}

			switch {
			case parsed:
				r[field] = out
			case c.NullOnError:
				r[field] = nil
			}
		}
	}
	return in
}

// ParseTimestamp parses s with the given layouts (TimestampLayouts when none
// are given) and returns the instant in UTC. Inputs that carry no offset are
// interpreted as UTC.
func ParseTimestamp(s string, layouts ...string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if len(layouts) == 0 {
		layouts = TimestampLayouts
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func toFlag(v any, truthy, falsy []string) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.TrimSpace(t)
		for _, y := range truthy {
			if s == y {
				return true
			}
		}
		for _, n := range falsy {
			if s == n {
				return false
			}
		}
	}
	return false
}
