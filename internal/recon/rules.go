package recon

import (
	"time"

	"github.com/mfonekpo/springer-capital/internal/domain"
)

const monthLayout = "2006-01"

// category maps the referral source to Online/Offline, or to the matched
// lead's category for lead-sourced referrals. Anything else is nil.
func category(r *Row, leads map[string]domain.Lead) *string {
	switch r.ReferralSource {
	case domain.SourceUserSignUp:
		c := domain.CategoryOnline
		return &c
	case domain.SourceDraftTransaction:
		c := domain.CategoryOffline
		return &c
	}
	if l, ok := leadFor(r, leads); ok {
		return l.SourceCategory
	}
	return nil
}

func month(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.Format(monthLayout)
}

// facts are the predicates the rules are written in. Comparisons with a
// missing operand are false.
type facts struct {
	rewardValid bool
	status      string // "" when unknown
	matched     bool
	paid        bool
	isNew       bool
	after       bool // local transaction strictly after local referral
	before      bool // local transaction strictly before local referral
	sameMonth   bool
	member      bool // membership not expired on the evaluation date
	deleted     bool
	granted     bool
}

func factsOf(r *Row, evaluationDate time.Time) facts {
	f := facts{
		rewardValid: r.RewardValue > 0,
		status:      text(r.ReferralStatus),
		matched:     r.Transaction != nil,
		member:      !r.ReferrerMembershipExpired.Before(evaluationDate),
		deleted:     r.ReferrerIsDeleted,
		granted:     r.RefereeRewardGranted,
	}
	if f.matched {
		f.paid = text(r.Transaction.TransactionStatus) == domain.TransactionPaid
		f.isNew = text(r.Transaction.TransactionType) == domain.TransactionNew
	}
	if r.LocalReferralAt != nil && r.LocalTransactionAt != nil {
		f.after = r.LocalTransactionAt.After(*r.LocalReferralAt)
		f.before = r.LocalTransactionAt.Before(*r.LocalReferralAt)
		f.sameMonth = r.ReferralMonth == r.TransactionMonth
	}
	return f
}

// validSuccess: a paid, new, same-month transaction after the referral, with
// a granted positive reward and an active referrer.
func (f facts) validSuccess() bool {
	return f.rewardValid &&
		f.status == domain.StatusSuccess &&
		f.matched && f.paid && f.isNew &&
		f.after && f.sameMonth &&
		f.member && !f.deleted &&
		f.granted
}

// validPendingOrFailed: an unfinished or failed referral that carries no
// reward.
func (f facts) validPendingOrFailed() bool {
	return (f.status == domain.StatusPending || f.status == domain.StatusFailed) && !f.rewardValid
}

// invalidated reports whether any override forces the referral invalid.
func (f facts) invalidated() bool {
	switch {
	case f.rewardValid && f.status != domain.StatusSuccess:
		return true
	case f.rewardValid && !f.matched:
		return true
	case !f.rewardValid && f.paid && f.after:
		// Paid after referral but nothing was rewarded.
		return true
	case f.status == domain.StatusSuccess && !f.rewardValid:
		return true
	case f.before:
		return true
	}
	return false
}

// classify returns the final validity of r.
func classify(r *Row, evaluationDate time.Time) bool {
	f := factsOf(r, evaluationDate)
	provisional := f.validSuccess() || f.validPendingOrFailed()
	return provisional && !f.invalidated()
}
