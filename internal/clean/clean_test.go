package clean

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfonekpo/springer-capital/pkg/records"
)

func TestTable_Referrals(t *testing.T) {
	in := records.Table{
		Name:    Referrals,
		Columns: []string{"referral_id", "referral_at", "referral_source", "user_referral_status_id", "transaction_id"},
		Rows: []records.Record{
			{"referral_id": "r1", "referral_at": "2024-05-01T10:00:00Z", "referral_source": "Lead", "user_referral_status_id": "1", "transaction_id": nil},
			{"referral_id": "r1", "referral_at": "2024-05-01T10:00:00Z", "referral_source": "Lead", "user_referral_status_id": "1", "transaction_id": nil},
			{"referral_id": "r2", "referral_at": "garbage", "referral_source": "Lead", "user_referral_status_id": "1", "transaction_id": "t1"},
			{"referral_id": "r3", "referral_at": "2024-05-02 08:00:00", "referral_source": " ", "user_referral_status_id": "1", "transaction_id": "t2"},
		},
	}

	out, st := Table(in)

	// r1 duplicate collapses, r2 loses its unparseable timestamp and is then
	// dropped as missing a critical key, r3 has a blank source.
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "r1", out.Rows[0]["referral_id"])
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), out.Rows[0]["referral_at"])
	assert.Nil(t, out.Rows[0]["transaction_id"], "non-critical nulls survive")
	assert.Equal(t, 4, st.Before)
	assert.Equal(t, 3, st.Dropped)

	// Input rows are not mutated.
	assert.Equal(t, "garbage", in.Rows[2]["referral_at"])
}

func TestTable_StrictTablesDropIncompleteRows(t *testing.T) {
	in := records.Table{
		Name:    Rewards,
		Columns: []string{"id", "reward_value"},
		Rows: []records.Record{
			{"id": "1", "reward_value": "Rp 50000"},
			{"id": "2", "reward_value": "none"},
			{"id": "3", "reward_value": nil},
		},
	}
	out, _ := Table(in)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, int64(50000), out.Rows[0]["reward_value"])
}

func TestTable_UsersFlagsAndNaiveExpiry(t *testing.T) {
	in := records.Table{
		Name:    Users,
		Columns: []string{"user_id", "membership_expired_date", "is_deleted", "timezone_homeclub"},
		Rows: []records.Record{
			{"user_id": "u1", "membership_expired_date": "2030-01-01", "is_deleted": "False", "timezone_homeclub": "Asia/Makassar"},
			{"user_id": "u2", "membership_expired_date": "2030-01-01", "is_deleted": "maybe", "timezone_homeclub": "Asia/Jakarta"},
		},
	}
	out, _ := Table(in)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, false, out.Rows[0]["is_deleted"])
	assert.Equal(t, false, out.Rows[1]["is_deleted"], "unknown vocabulary maps to false")
	assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), out.Rows[0]["membership_expired_date"])
}

/*
TestTable_LogsKeepPartialRows verifies the lenient policy for tables outside
the strict set: only rows whose first two columns are both null are dropped.
*/
func TestTable_LogsKeepPartialRows(t *testing.T) {
	in := records.Table{
		Name:    ReferralLogs,
		Columns: []string{"id", "user_referral_id", "source_transaction_id", "is_reward_granted"},
		Rows: []records.Record{
			{"id": "1", "user_referral_id": "r1", "source_transaction_id": nil, "is_reward_granted": "True"},
			{"id": nil, "user_referral_id": "r2", "source_transaction_id": nil, "is_reward_granted": nil},
			{"id": nil, "user_referral_id": nil, "source_transaction_id": "x", "is_reward_granted": "True"},
		},
	}
	out, _ := Table(in)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, true, out.Rows[0]["is_reward_granted"])
	assert.Equal(t, false, out.Rows[1]["is_reward_granted"])
}

func TestTable_EmptyPassesThrough(t *testing.T) {
	out, st := Table(records.Table{Name: Leads})
	assert.True(t, out.Empty())
	assert.Equal(t, 0, st.Before)
}

func TestAll_PreservesOrder(t *testing.T) {
	in := []records.Table{{Name: Statuses}, {Name: Referrals}}
	out := All(in, nil)
	require.Len(t, out, 2)
	assert.Equal(t, Statuses, out[0].Name)
	assert.Equal(t, Referrals, out[1].Name)
}
