package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBalance(t *testing.T) {
	tests := []struct {
		balance  int64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1500, "-1,500"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatBalance(tt.balance))
		})
	}
}

func TestFormatVoiceTime(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int64
		expected string
	}{
		{"under a minute", 59, "< 1m"},
		{"minutes only", 90, "1m"},
		{"hours and minutes", 3*3600 + 45*60, "3h 45m"},
		{"whole hours", 7200, "2h"},
		{"days", 2*86400 + 14*3600 + 30*60, "2d 14h 30m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatVoiceTime(tt.seconds))
		})
	}
}

func TestRankPrefix(t *testing.T) {
	assert.Equal(t, "🥇", RankPrefix(1))
	assert.Equal(t, "🥉", RankPrefix(3))
	assert.Equal(t, "#4", RankPrefix(4))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "1,200 Punkty", FormatCurrency(1200, "Punkty"))
}
