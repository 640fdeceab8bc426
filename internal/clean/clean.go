// Package clean turns freshly parsed tables into the typed, de-duplicated
// tables the reconciliation engine expects. Each table gets a transformer
// chain derived from its name and columns.
package clean

import (
	"go.uber.org/zap"

	"github.com/mfonekpo/springer-capital/internal/transformer"
	"github.com/mfonekpo/springer-capital/internal/transformer/builtin"
	"github.com/mfonekpo/springer-capital/pkg/records"
)

// Table names produced by the loader (file stems).
const (
	Referrals    = "user_referrals"
	ReferralLogs = "user_referral_logs"
	Rewards      = "referral_rewards"
	Transactions = "paid_transactions"
	Users        = "user_logs"
	Statuses     = "user_referral_statuses"
	Leads        = "lead_log"
)

// TimestampColumns are coerced to UTC instants wherever they appear.
var TimestampColumns = []string{"created_at", "transaction_at", "referral_at", "updated_at", "membership_expired_date"}

// CriticalReferralColumns must be present for a referral row to survive.
var CriticalReferralColumns = []string{"referral_id", "referral_at", "referral_source", "user_referral_status_id"}

// strictTables drop any row with a null cell.
var strictTables = map[string]bool{
	Rewards:      true,
	Transactions: true,
	Users:        true,
	Statuses:     true,
}

// Stats summarizes what cleaning did to one table.
type Stats struct {
	Table   string
	Before  int
	After   int
	Dropped int
	Nulls   int
}

// ChainFor builds the cleaning chain for t:
//
//  1. normalize strings (trim, blank → nil)
//  2. coerce timestamps, reward_value digits and boolean flags
//  3. drop exact duplicate rows (first kept)
//  4. apply the table's null policy
func ChainFor(t records.Table) transformer.Chain {
	types := map[string]string{}
	for _, c := range TimestampColumns {
		if t.HasColumn(c) {
			types[c] = "timestamp"
		}
	}
	if t.HasColumn("reward_value") {
		types["reward_value"] = "digits"
	}
	for _, c := range []string{"is_deleted", "is_reward_granted"} {
		if t.HasColumn(c) {
			types[c] = "flag"
		}
	}

	chain := transformer.Chain{
		builtin.Normalize{},
		builtin.Coerce{Types: types, NullOnError: true},
		builtin.DeDup{Keys: t.Columns, Policy: "keep-first"},
	}

	switch {
	case t.Name == Referrals:
		var critical []string
		for _, c := range CriticalReferralColumns {
			if t.HasColumn(c) {
				critical = append(critical, c)
			}
		}
		chain = append(chain, builtin.Require{Fields: critical})
	case strictTables[t.Name]:
		chain = append(chain, builtin.Require{Fields: t.Columns})
	default:
		n := len(t.Columns)
		if n > 2 {
			n = 2
		}
		chain = append(chain, builtin.RequireAny{Fields: t.Columns[:n]})
	}
	return chain
}

// Table cleans a single table and reports what changed. Empty tables are
// returned untouched.
func Table(t records.Table) (records.Table, Stats) {
	st := Stats{Table: t.Name, Before: t.Len()}
	if t.Empty() {
		return t, st
	}
	rows := make([]records.Record, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = r.Clone()
	}
	out := records.Table{Name: t.Name, Columns: t.Columns, Rows: ChainFor(t).Apply(rows)}

	st.After = out.Len()
	st.Dropped = st.Before - st.After
	for _, r := range out.Rows {
		for _, c := range out.Columns {
			if r[c] == nil {
				st.Nulls++
			}
		}
	}
	return out, st
}

// All cleans every table, logging one line per table.
func All(tables []records.Table, log *zap.Logger) []records.Table {
	if log == nil {
		log = zap.NewNop()
	}
	out := make([]records.Table, 0, len(tables))
	for _, t := range tables {
		c, st := Table(t)
		if !t.Empty() {
			log.Info("clean: table cleaned",
				zap.String("table", st.Table),
				zap.Int("rows_before", st.Before),
				zap.Int("rows_after", st.After),
				zap.Int("dropped", st.Dropped),
				zap.Int("nulls", st.Nulls),
			)
		}
		out = append(out, c)
	}
	return out
}
