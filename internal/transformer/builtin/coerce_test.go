package builtin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfonekpo/springer-capital/pkg/records"
)

func TestCoerceApply_Basics(t *testing.T) {
	c := Coerce{
		Types: map[string]string{
			"i": "int",
			"b": "bool",
			"d": "date",
			"s": "string",
			"t": "timestamp",
		},
		Layout: "2006-01-02",
	}
	in := []records.Record{{
		"i": "42",
		"b": "true",
		"d": "2025-11-09",
		"s": "hello",
		"t": "2024-05-01 17:30:00+07:00",
	}}

	out := c.Apply(in)
	require.Len(t, out, 1)
	r := out[0]

	assert.Equal(t, int64(42), r["i"])
	assert.Equal(t, true, r["b"])
	assert.Equal(t, time.Date(2025, 11, 9, 0, 0, 0, 0, time.UTC), r["d"])
	assert.Equal(t, "hello", r["s"])
	assert.Equal(t, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC), r["t"])
}

/*
TestCoerceApply_InvalidsPreserve verifies that when parsing fails, the original
string value is left unchanged unless NullOnError is set.
*/
func TestCoerceApply_InvalidsPreserve(t *testing.T) {
	types := map[string]string{"i": "int", "t": "timestamp"}

	kept := Coerce{Types: types}.Apply([]records.Record{{"i": "x", "t": "not a date"}})
	assert.Equal(t, records.Record{"i": "x", "t": "not a date"}, kept[0])

	nulled := Coerce{Types: types, NullOnError: true}.Apply([]records.Record{{"i": "x", "t": "not a date"}})
	assert.Equal(t, records.Record{"i": nil, "t": nil}, nulled[0])
}

func TestCoerceApply_Digits(t *testing.T) {
	c := Coerce{Types: map[string]string{"reward_value": "digits"}, NullOnError: true}
	tests := []struct {
		in   any
		want any
	}{
		{"50000", int64(50000)},
		{"Rp 50000", int64(50000)},
		{"50000.0", int64(50000)},
		{"free", nil},
		{nil, nil},
		{int64(7), int64(7)},
	}
	for _, tt := range tests {
		out := c.Apply([]records.Record{{"reward_value": tt.in}})
		assert.Equal(t, tt.want, out[0]["reward_value"], "input %v", tt.in)
	}
}

/*
TestCoerceApply_Flag verifies that flags are total: the configured vocabulary
maps to true/false and everything else, including nil, becomes false.
*/
func TestCoerceApply_Flag(t *testing.T) {
	c := Coerce{Types: map[string]string{"is_deleted": "flag"}}
	tests := []struct {
		in   any
		want bool
	}{
		{"True", true},
		{" true ", true},
		{"False", false},
		{"yes", false},
		{nil, false},
		{true, true},
	}
	for _, tt := range tests {
		out := c.Apply([]records.Record{{"is_deleted": tt.in}})
		assert.Equal(t, tt.want, out[0]["is_deleted"], "input %v", tt.in)
	}

	// A missing column stays missing.
	out := c.Apply([]records.Record{{"other": "x"}})
	_, ok := out[0]["is_deleted"]
	assert.False(t, ok)
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	for _, s := range []string{
		"2024-05-01T10:30:00Z",
		"2024-05-01T17:30:00+07:00",
		"2024-05-01 10:30:00",
		"2024-05-01 10:30:00+00:00",
		"2024-05-01 10:30:00.000000+00:00",
		"05/01/2024 10:30:00",
	} {
		got, ok := ParseTimestamp(s)
		if assert.True(t, ok, s) {
			assert.True(t, want.Equal(got), "%s -> %s", s, got)
			assert.Equal(t, time.UTC, got.Location())
		}
	}

	_, ok := ParseTimestamp("yesterday")
	assert.False(t, ok)
	_, ok = ParseTimestamp("  ")
	assert.False(t, ok)
}
