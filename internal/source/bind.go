package source

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mfonekpo/springer-capital/internal/clean"
	"github.com/mfonekpo/springer-capital/internal/domain"
	"github.com/mfonekpo/springer-capital/internal/transformer/builtin"
	"github.com/mfonekpo/springer-capital/pkg/records"
)

// Bind converts the registry's cleaned tables into typed domain rows. Join-key
// columns go through CanonicalKey; other values are read leniently (strings
// are parsed when a typed value is expected) and anything unreadable becomes
// null. Rows whose own key is missing are dropped from the lookup tables;
// referral rows are always kept.
func Bind(reg *Registry) domain.Inputs {
	return domain.Inputs{
		Referrals:    bindReferrals(reg.Get(clean.Referrals)),
		Statuses:     bindStatuses(reg.Get(clean.Statuses)),
		Rewards:      bindRewards(reg.Get(clean.Rewards)),
		Transactions: bindTransactions(reg.Get(clean.Transactions)),
		Users:        bindUsers(reg.Get(clean.Users)),
		Logs:         bindLogs(reg.Get(clean.ReferralLogs)),
		Leads:        bindLeads(reg.Get(clean.Leads)),
	}
}

func bindReferrals(t records.Table) []domain.Referral {
	// A Caser carries state; one per call keeps Bind safe for concurrent use.
	titler := cases.Title(language.Und)
	out := make([]domain.Referral, 0, t.Len())
	for _, r := range t.Rows {
		id, _ := CanonicalKey(r["referral_id"])
		referrer, _ := CanonicalKey(r["referrer_id"])
		referee, _ := CanonicalKey(r["referee_id"])
		out = append(out, domain.Referral{
			ReferralID:           id,
			ReferrerID:           referrer,
			RefereeID:            referee,
			RefereeName:          titled(titler, r["referee_name"]),
			RefereePhone:         titled(titler, r["referee_phone"]),
			ReferralAt:           timeOf(r["referral_at"]),
			ReferralSource:       deref(strOf(r["referral_source"])),
			ReferralRewardID:     keyOf(r["referral_reward_id"]),
			UserReferralStatusID: keyOf(r["user_referral_status_id"]),
			TransactionID:        keyOf(r["transaction_id"]),
		})
	}
	return out
}

func bindStatuses(t records.Table) []domain.Status {
	out := make([]domain.Status, 0, t.Len())
	for _, r := range t.Rows {
		if id, ok := CanonicalKey(r["id"]); ok {
			out = append(out, domain.Status{ID: id, Description: strOf(r["description"])})
		}
	}
	return out
}

func bindRewards(t records.Table) []domain.Reward {
	out := make([]domain.Reward, 0, t.Len())
	for _, r := range t.Rows {
		if id, ok := CanonicalKey(r["id"]); ok {
			out = append(out, domain.Reward{ID: id, RewardValue: intOf(r["reward_value"])})
		}
	}
	return out
}

func bindTransactions(t records.Table) []domain.Transaction {
	out := make([]domain.Transaction, 0, t.Len())
	for _, r := range t.Rows {
		id, ok := CanonicalKey(r["transaction_id"])
		if !ok {
			continue
		}
		out = append(out, domain.Transaction{
			TransactionID:       id,
			TransactionStatus:   strOf(r["transaction_status"]),
			TransactionType:     strOf(r["transaction_type"]),
			TransactionAt:       timeOf(r["transaction_at"]),
			TimezoneTransaction: strOf(r["timezone_transaction"]),
		})
	}
	return out
}

func bindUsers(t records.Table) []domain.User {
	out := make([]domain.User, 0, t.Len())
	for _, r := range t.Rows {
		id, ok := CanonicalKey(r["user_id"])
		if !ok {
			continue
		}
		out = append(out, domain.User{
			UserID:                id,
			MembershipExpiredDate: timeOf(r["membership_expired_date"]),
			IsDeleted:             boolOf(r["is_deleted"]),
			TimezoneHomeclub:      strOf(r["timezone_homeclub"]),
		})
	}
	return out
}

func bindLogs(t records.Table) []domain.ReferralLog {
	out := make([]domain.ReferralLog, 0, t.Len())
	for _, r := range t.Rows {
		id, ok := CanonicalKey(r["user_referral_id"])
		if !ok {
			continue
		}
		granted := boolOf(r["is_reward_granted"])
		out = append(out, domain.ReferralLog{
			UserReferralID:      id,
			SourceTransactionID: keyOf(r["source_transaction_id"]),
			IsRewardGranted:     granted != nil && *granted,
		})
	}
	return out
}

func bindLeads(t records.Table) []domain.Lead {
	out := make([]domain.Lead, 0, t.Len())
	for _, r := range t.Rows {
		id, ok := CanonicalKey(r["lead_id"])
		if !ok {
			continue
		}
		out = append(out, domain.Lead{
			LeadID:           id,
			TimezoneLocation: strOf(r["timezone_location"]),
			SourceCategory:   strOf(r["source_category"]),
		})
	}
	return out
}

func keyOf(v any) *string {
	if s, ok := CanonicalKey(v); ok {
		return &s
	}
	return nil
}

func strOf(v any) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		return &s
	default:
		return keyOf(t)
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func titled(c cases.Caser, v any) *string {
	s := strOf(v)
	if s == nil {
		return nil
	}
	out := c.String(*s)
	return &out
}

func timeOf(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		u := t.UTC()
		return &u
	case string:
		if ts, ok := builtin.ParseTimestamp(t); ok {
			return &ts
		}
	}
	return nil
}

func intOf(v any) *int64 {
	var n int64
	switch t := v.(type) {
	case int64:
		n = t
	case int:
		n = int64(t)
	case float64:
		if t != t { // NaN
			return nil
		}
		n = int64(t)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return nil
		}
		n = i
	default:
		return nil
	}
	return &n
}

func boolOf(v any) *bool {
	var b bool
	switch t := v.(type) {
	case bool:
		b = t
	case string:
		p, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return nil
		}
		b = p
	default:
		return nil
	}
	return &b
}
