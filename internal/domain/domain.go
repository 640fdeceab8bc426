// Package domain holds the typed rows the reconciliation engine consumes and
// produces. Nullable columns are pointers; join keys are canonical strings
// (see source.CanonicalKey).
package domain

import "time"

// Status descriptions used by the validity rules.
const (
	StatusSuccess = "Berhasil"
	StatusPending = "Menunggu"
	StatusFailed  = "Tidak Berhasil"
)

// Referral sources with a fixed category.
const (
	SourceUserSignUp       = "User Sign Up"
	SourceDraftTransaction = "Draft Transaction"
	SourceLead             = "Lead"
)

// Referral source categories.
const (
	CategoryOnline  = "Online"
	CategoryOffline = "Offline"
)

// Transaction field values used by the validity rules.
const (
	TransactionPaid = "PAID"
	TransactionNew  = "NEW"
)

// Referral is one row of user_referrals.
type Referral struct {
	ReferralID     string
	ReferrerID     string
	RefereeID      string
	RefereeName    *string
	RefereePhone   *string
	ReferralAt     *time.Time // UTC instant
	ReferralSource string

	ReferralRewardID     *string
	UserReferralStatusID *string
	TransactionID        *string
}

// Status is one row of user_referral_statuses.
type Status struct {
	ID          string
	Description *string
}

// Reward is one row of referral_rewards.
type Reward struct {
	ID          string
	RewardValue *int64
}

// Transaction is one row of paid_transactions.
type Transaction struct {
	TransactionID       string
	TransactionStatus   *string
	TransactionType     *string
	TransactionAt       *time.Time // UTC instant
	TimezoneTransaction *string
}

// User is one row of user_logs.
type User struct {
	UserID                string
	MembershipExpiredDate *time.Time // naive
	IsDeleted             *bool
	TimezoneHomeclub      *string
}

// ReferralLog is one row of user_referral_logs. Several rows may exist per
// referral.
type ReferralLog struct {
	UserReferralID      string
	SourceTransactionID *string
	IsRewardGranted     bool
}

// Lead is one row of lead_log.
type Lead struct {
	LeadID           string
	TimezoneLocation *string
	SourceCategory   *string
}

// Inputs are the typed source tables of one run. Only Referrals must be
// non-empty.
type Inputs struct {
	Referrals    []Referral
	Statuses     []Status
	Rewards      []Reward
	Transactions []Transaction
	Users        []User
	Logs         []ReferralLog
	Leads        []Lead
}

// ReportRow is one line of the reconciliation report.
type ReportRow struct {
	ReferralID                string
	ReferrerID                string
	RefereeID                 string
	ReferralAt                *time.Time // UTC, not local
	ReferralStatus            *string
	TransactionID             *string
	TransactionStatus         *string
	TransactionType           *string
	RewardValue               int64
	RefereeRewardGranted      bool
	ReferrerMembershipExpired time.Time
	ReferrerIsDeleted         bool
	ReferralSourceCategory    *string
	IsBusinessLogicValid      bool
}

// ReportColumns is the fixed report header, in output order.
var ReportColumns = []string{
	"referral_id",
	"referrer_id",
	"referee_id",
	"referral_at",
	"referral_status",
	"transaction_id",
	"transaction_status",
	"transaction_type",
	"reward_value",
	"referee_reward_granted",
	"referrer_membership_expired",
	"referrer_is_deleted",
	"referral_source_category",
	"is_business_logic_valid",
}

// Values returns the row as positional values aligned with ReportColumns.
// Null pointers become nil.
func (r ReportRow) Values() []any {
	return []any{
		r.ReferralID,
		r.ReferrerID,
		r.RefereeID,
		timeOrNil(r.ReferralAt),
		strOrNil(r.ReferralStatus),
		strOrNil(r.TransactionID),
		strOrNil(r.TransactionStatus),
		strOrNil(r.TransactionType),
		r.RewardValue,
		r.RefereeRewardGranted,
		r.ReferrerMembershipExpired,
		r.ReferrerIsDeleted,
		strOrNil(r.ReferralSourceCategory),
		r.IsBusinessLogicValid,
	}
}

// Report is the engine's output: one row per input referral in input order,
// plus the diagnostic counters.
type Report struct {
	Rows    []ReportRow
	Valid   int
	Invalid int
}

func strOrNil(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func timeOrNil(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}
