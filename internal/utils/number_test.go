package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"0", 0, true},
		{" 3 ", 3, true},
		{"1.5", 1.5, true},
		{"-2", -2, true},
		{"1e2", 100, true},
		{"0x1A", 26, true},
		{"0b101", 5, true},
		{"0o17", 15, true},
		{"", 0, false},
		{"   ", 0, false},
		{"Often", 0, false},
		{"3 - often", 0, false},
		{"Infinity", 0, false},
		{"inf", 0, false},
		{"NaN", 0, false},
		{"1_000", 0, false},
		{"1,5", 0, false},
		{"1e400", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseLeadingInt(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"3 - often", 3, true},
		{"  2 days", 2, true},
		{"-1x", -1, true},
		{"+4", 4, true},
		{"0x1f", 31, true},
		{"2.9", 2, true},
		{"often 3", 0, false},
		{"", 0, false},
		{"-", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLeadingInt(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseExpectedRange(t *testing.T) {
	min, max, ok := ParseExpectedRange("0-3")
	assert.True(t, ok)
	assert.Equal(t, 0.0, min)
	assert.Equal(t, 3.0, max)

	min, max, ok = ParseExpectedRange(" 1 - 5 ")
	assert.True(t, ok)
	assert.Equal(t, 1.0, min)
	assert.Equal(t, 5.0, max)

	for _, bad := range []string{"", "3", "-1-3", "a-b", "0-3-5"} {
		_, _, ok := ParseExpectedRange(bad)
		assert.False(t, ok, bad)
	}
}
