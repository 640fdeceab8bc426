package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfonekpo/springer-capital/pkg/records"
)

func TestTable(t *testing.T) {
	tbl := records.Table{
		Name:    "referral_rewards",
		Columns: []string{"id", "reward_value", "note"},
		Rows: []records.Record{
			{"id": "1", "reward_value": int64(50000), "note": nil},
			{"id": "2", "reward_value": int64(20000), "note": nil},
			{"id": "3", "reward_value": int64(50000), "note": "x"},
			{"id": "4", "reward_value": nil, "note": nil},
		},
	}

	got := Table(tbl)
	require.Len(t, got, 3)

	id := got[0]
	assert.Equal(t, "string", id.DataType)
	assert.Equal(t, 4, id.DistinctCount)
	assert.Equal(t, 100.0, id.DistinctPct)
	assert.False(t, id.HasTop, "all-distinct columns have no top value")

	rv := got[1]
	assert.Equal(t, "int", rv.DataType)
	assert.Equal(t, 1, rv.NullCount)
	assert.Equal(t, 25.0, rv.NullPct)
	assert.Equal(t, 2, rv.DistinctCount)
	assert.True(t, rv.HasTop)
	assert.Equal(t, "50000", rv.TopValue)
	assert.Equal(t, 2, rv.TopFreq)
	assert.True(t, rv.HasRange)
	assert.Equal(t, int64(20000), rv.Min)
	assert.Equal(t, int64(50000), rv.Max)

	note := got[2]
	assert.Equal(t, 3, note.NullCount)
	assert.Equal(t, "x", note.TopValue)
	assert.Equal(t, 1, note.TopFreq)
}

func TestTable_TopValueTieBreaksByFirstSeen(t *testing.T) {
	tbl := records.Table{
		Name:    "t",
		Columns: []string{"c"},
		Rows:    []records.Record{{"c": "b"}, {"c": "a"}, {"c": "a"}, {"c": "b"}, {"c": "z"}},
	}
	got := Table(tbl)
	assert.Equal(t, "b", got[0].TopValue)
}

func TestTable_MixedAndTime(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tbl := records.Table{
		Name:    "t",
		Columns: []string{"m", "ts", "nil"},
		Rows: []records.Record{
			{"m": "x", "ts": ts, "nil": nil},
			{"m": int64(1), "ts": ts, "nil": nil},
		},
	}
	got := Table(tbl)
	assert.Equal(t, "mixed", got[0].DataType)
	assert.False(t, got[0].HasRange)
	assert.Equal(t, "time", got[1].DataType)
	assert.Equal(t, "2024-01-01T00:00:00Z", got[1].TopValue)
	assert.Equal(t, "empty", got[2].DataType)
}

func TestTable_Empty(t *testing.T) {
	assert.Nil(t, Table(records.Table{Name: "lead_log", Columns: []string{"a"}}))
}
