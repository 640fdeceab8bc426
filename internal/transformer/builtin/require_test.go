package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mfonekpo/springer-capital/pkg/records"
)

func TestRequire(t *testing.T) {
	in := []records.Record{
		{"a": "1", "b": "2"},
		{"a": "1", "b": nil},
		{"a": "", "b": "2"},
		{"b": "2"},
	}
	got := Require{Fields: []string{"a", "b"}}.Apply(in)
	assert.Equal(t, []records.Record{{"a": "1", "b": "2"}}, got)
}

func TestRequireAny(t *testing.T) {
	in := []records.Record{
		{"a": nil, "b": nil, "c": "x"},
		{"a": "1", "b": nil},
		{"a": nil, "b": "2"},
	}
	got := RequireAny{Fields: []string{"a", "b"}}.Apply(in)
	assert.Equal(t, []records.Record{{"a": "1", "b": nil}, {"a": nil, "b": "2"}}, got)
}

func TestNormalize(t *testing.T) {
	in := []records.Record{{"a": "  x y ", "b": "   ", "c": 3}}
	got := Normalize{}.Apply(in)
	assert.Equal(t, records.Record{"a": "x y", "b": nil, "c": 3}, got[0])
}
