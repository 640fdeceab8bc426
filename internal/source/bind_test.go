package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfonekpo/springer-capital/internal/clean"
	"github.com/mfonekpo/springer-capital/pkg/records"
)

func TestBind(t *testing.T) {
	ref := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	reg := NewRegistry(
		records.Table{Name: clean.Referrals, Rows: []records.Record{{
			"referral_id":             int64(7),
			"referrer_id":             "u1",
			"referee_id":              "u2",
			"referee_name":            "jOHN doe",
			"referral_at":             ref,
			"referral_source":         "Lead",
			"referral_reward_id":      "3.0",
			"user_referral_status_id": int64(1),
			"transaction_id":          nil,
		}}},
		records.Table{Name: clean.Rewards, Rows: []records.Record{
			{"id": int64(3), "reward_value": int64(50000)},
			{"id": nil, "reward_value": int64(1)},
		}},
		records.Table{Name: clean.Users, Rows: []records.Record{{
			"user_id":                 "u1",
			"membership_expired_date": "2030-01-01",
			"is_deleted":              false,
			"timezone_homeclub":       "Asia/Makassar",
		}}},
		records.Table{Name: clean.ReferralLogs, Rows: []records.Record{
			{"user_referral_id": "7", "source_transaction_id": "L1", "is_reward_granted": true},
			{"user_referral_id": "7", "source_transaction_id": nil, "is_reward_granted": "nope"},
		}},
	)

	in := Bind(reg)

	require.Len(t, in.Referrals, 1)
	r := in.Referrals[0]
	assert.Equal(t, "7", r.ReferralID)
	assert.Equal(t, "John Doe", *r.RefereeName)
	assert.Nil(t, r.RefereePhone)
	assert.Equal(t, ref, *r.ReferralAt)
	assert.Equal(t, "3", *r.ReferralRewardID, "float-looking keys collapse to integer text")
	assert.Equal(t, "1", *r.UserReferralStatusID)
	assert.Nil(t, r.TransactionID)

	require.Len(t, in.Rewards, 1, "rows without a key are dropped")
	assert.Equal(t, "3", in.Rewards[0].ID)
	assert.Equal(t, int64(50000), *in.Rewards[0].RewardValue)

	require.Len(t, in.Users, 1)
	assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), *in.Users[0].MembershipExpiredDate)
	assert.False(t, *in.Users[0].IsDeleted)

	require.Len(t, in.Logs, 2)
	assert.True(t, in.Logs[0].IsRewardGranted)
	assert.False(t, in.Logs[1].IsRewardGranted)

	assert.Empty(t, in.Statuses)
	assert.Empty(t, in.Transactions)
	assert.Empty(t, in.Leads)
}
