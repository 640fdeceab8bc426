package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// CanonicalKey renders a join-key value as the single textual form used on
// both sides of every join, so that a key read as 12, int64(12), 12.0 or
// "12" always matches. It reports false for nil and blank values.
func CanonicalKey(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return "", false
		}
		// Numeric ids that went through a float column ("12.0") collapse to
		// their integer text.
		if f, err := strconv.ParseFloat(s, 64); err == nil && isIntegral(f) && strings.ContainsRune(s, '.') {
			return strconv.FormatInt(int64(f), 10), true
		}
		return s, true
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case float32:
		return canonicalFloat(float64(t))
	case float64:
		return canonicalFloat(t)
	case bool:
		return strconv.FormatBool(t), true
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano), true
	case fmt.Stringer:
		return CanonicalKey(t.String())
	default:
		return CanonicalKey(fmt.Sprint(t))
	}
}

func canonicalFloat(f float64) (string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	if isIntegral(f) {
		return strconv.FormatInt(int64(f), 10), true
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

func isIntegral(f float64) bool {
	return f == math.Trunc(f) && math.Abs(f) < 1<<53
}
