package recon

import (
	"strings"
	"time"

	"github.com/mfonekpo/springer-capital/internal/domain"
)

// zones caches time.LoadLocation results by name. A nil entry marks a name
// that is not a usable zone. Not safe for concurrent use.
type zones map[string]*time.Location

func (z zones) load(name string) *time.Location {
	if loc, ok := z[name]; ok {
		return loc
	}
	var loc *time.Location
	// LoadLocation maps "" to UTC and "Local" to the host zone; neither is a
	// recorded zone.
	if name != "" && name != "Local" {
		if l, err := time.LoadLocation(name); err == nil {
			loc = l
		}
	}
	z[name] = loc
	return loc
}

// effectiveTimezone picks the zone for a referral: the transaction's own
// zone, then the lead's zone for lead-sourced referrals, then the referrer's
// home club, then def.
func effectiveTimezone(r *Row, leads map[string]domain.Lead, def string) string {
	if r.Transaction != nil {
		if tz := text(r.Transaction.TimezoneTransaction); tz != "" {
			return tz
		}
	}
	if l, ok := leadFor(r, leads); ok {
		if tz := text(l.TimezoneLocation); tz != "" {
			return tz
		}
	}
	if tz := text(r.ReferrerTimezone); tz != "" {
		return tz
	}
	return def
}

// leadFor returns the lead a "Lead" referral points at through its source
// transaction id.
func leadFor(r *Row, leads map[string]domain.Lead) (domain.Lead, bool) {
	if r.ReferralSource != domain.SourceLead || r.SourceTransactionID == nil {
		return domain.Lead{}, false
	}
	l, ok := leads[*r.SourceTransactionID]
	return l, ok
}

// localize converts the UTC instant ts into loc and drops the zone, keeping
// the wall clock. Either input being nil yields nil.
func localize(ts *time.Time, loc *time.Location) *time.Time {
	if ts == nil || loc == nil {
		return nil
	}
	l := ts.In(loc)
	naive := time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), l.Minute(), l.Second(), l.Nanosecond(), time.UTC)
	return &naive
}

// localTimes fills LocalReferralAt and LocalTransactionAt. The referral is
// always shown in the effective zone; the transaction keeps its UTC wall
// clock unless it recorded a zone of its own.
func localTimes(r *Row, z zones) {
	r.LocalReferralAt = localize(r.ReferralAt, z.load(r.EffectiveTimezone))

	r.LocalTransactionAt = nil
	tx := r.Transaction
	if tx == nil || tx.TransactionAt == nil {
		return
	}
	if tz := text(tx.TimezoneTransaction); tz != "" {
		r.LocalTransactionAt = localize(tx.TransactionAt, z.load(tz))
		return
	}
	r.LocalTransactionAt = localize(tx.TransactionAt, time.UTC)
}

func text(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
