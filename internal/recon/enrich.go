package recon

import (
	"time"

	"go.uber.org/zap"

	"github.com/mfonekpo/springer-capital/internal/domain"
)

// unknownExpiry is the membership expiry assumed for referrers with no usable
// user row. It is always before any evaluation date.
var unknownExpiry = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Row is a referral widened with everything the rules look at. Enrichment
// fills the joined fields; derive fills the rest.
type Row struct {
	domain.Referral

	ReferralStatus            *string
	RewardValue               int64
	Transaction               *domain.Transaction // nil when unmatched
	ReferrerMembershipExpired time.Time
	ReferrerIsDeleted         bool
	ReferrerTimezone          *string
	SourceTransactionID       *string
	RefereeRewardGranted      bool

	EffectiveTimezone  string
	LocalReferralAt    *time.Time // naive
	LocalTransactionAt *time.Time // naive
	ReferralMonth      string     // "2006-01", empty when LocalReferralAt is nil
	TransactionMonth   string
	SourceCategory     *string
	Valid              bool
}

// join is one enrichment step. Steps run in declaration order and a step
// whose source table is empty is skipped.
type join struct {
	name  string
	size  func(domain.Inputs) int
	apply func([]Row, domain.Inputs)
}

var joins = []join{
	{"status", func(in domain.Inputs) int { return len(in.Statuses) }, joinStatus},
	{"reward", func(in domain.Inputs) int { return len(in.Rewards) }, joinReward},
	{"transaction", func(in domain.Inputs) int { return len(in.Transactions) }, joinTransaction},
	{"referrer", func(in domain.Inputs) int { return len(in.Users) }, joinReferrer},
	{"source_transaction", func(in domain.Inputs) int { return len(in.Logs) }, joinSourceTransaction},
	{"reward_granted", func(in domain.Inputs) int { return len(in.Logs) }, joinRewardGranted},
}

// enrich returns one Row per referral, in input order, with every join
// applied. Fields of a skipped or unmatched join keep their defaults.
func enrich(in domain.Inputs, log *zap.Logger) []Row {
	rows := make([]Row, len(in.Referrals))
	for i, r := range in.Referrals {
		rows[i] = Row{
			Referral:                  r,
			ReferrerMembershipExpired: unknownExpiry,
			ReferrerIsDeleted:         true,
		}
	}
	for _, j := range joins {
		if j.size(in) == 0 {
			log.Debug("recon: join skipped, source empty", zap.String("join", j.name))
			continue
		}
		j.apply(rows, in)
	}
	return rows
}

// firstByKey indexes items by key; the first item seen for a key wins and
// blank keys are ignored.
func firstByKey[T any](items []T, key func(T) string) map[string]T {
	m := make(map[string]T, len(items))
	for _, it := range items {
		k := key(it)
		if k == "" {
			continue
		}
		if _, ok := m[k]; !ok {
			m[k] = it
		}
	}
	return m
}

func joinStatus(rows []Row, in domain.Inputs) {
	byID := firstByKey(in.Statuses, func(s domain.Status) string { return s.ID })
	for i := range rows {
		if id := rows[i].UserReferralStatusID; id != nil {
			if s, ok := byID[*id]; ok {
				rows[i].ReferralStatus = s.Description
			}
		}
	}
}

func joinReward(rows []Row, in domain.Inputs) {
	byID := firstByKey(in.Rewards, func(r domain.Reward) string { return r.ID })
	for i := range rows {
		if id := rows[i].ReferralRewardID; id != nil {
			if rw, ok := byID[*id]; ok && rw.RewardValue != nil {
				rows[i].RewardValue = *rw.RewardValue
			}
		}
	}
}

func joinTransaction(rows []Row, in domain.Inputs) {
	byID := firstByKey(in.Transactions, func(t domain.Transaction) string { return t.TransactionID })
	for i := range rows {
		if id := rows[i].TransactionID; id != nil {
			if tx, ok := byID[*id]; ok {
				rows[i].Transaction = &tx
			}
		}
	}
}

func joinReferrer(rows []Row, in domain.Inputs) {
	byID := firstByKey(in.Users, func(u domain.User) string { return u.UserID })
	for i := range rows {
		u, ok := byID[rows[i].ReferrerID]
		if !ok {
			continue
		}
		if u.MembershipExpiredDate != nil {
			rows[i].ReferrerMembershipExpired = *u.MembershipExpiredDate
		}
		if u.IsDeleted != nil {
			rows[i].ReferrerIsDeleted = *u.IsDeleted
		}
		rows[i].ReferrerTimezone = u.TimezoneHomeclub
	}
}

func joinSourceTransaction(rows []Row, in domain.Inputs) {
	src := make(map[string]string)
	for _, l := range in.Logs {
		if l.SourceTransactionID == nil {
			continue
		}
		if _, ok := src[l.UserReferralID]; !ok {
			src[l.UserReferralID] = *l.SourceTransactionID
		}
	}
	for i := range rows {
		if s, ok := src[rows[i].ReferralID]; ok {
			rows[i].SourceTransactionID = &s
		}
	}
}

func joinRewardGranted(rows []Row, in domain.Inputs) {
	granted := make(map[string]bool)
	for _, l := range in.Logs {
		if l.IsRewardGranted {
			granted[l.UserReferralID] = true
		}
	}
	for i := range rows {
		rows[i].RefereeRewardGranted = granted[rows[i].ReferralID]
	}
}
