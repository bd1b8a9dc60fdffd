package entities

import "fmt"

// LeaderboardMetric selects which ledger column a ranking is ordered by
type LeaderboardMetric string

const (
	LeaderboardLifetime LeaderboardMetric = "lifetime"
	LeaderboardMonthly  LeaderboardMetric = "monthly"
	LeaderboardCurrency LeaderboardMetric = "currency"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 25
)

// Column returns the ledger column for the metric. Only whitelisted column
// names are ever interpolated into SQL.
func (m LeaderboardMetric) Column() (string, error) {
	switch m {
	case LeaderboardLifetime:
		return "activity_points", nil
	case LeaderboardMonthly:
		return "monthly_activity_points", nil
	case LeaderboardCurrency:
		return "gambling_points", nil
	default:
		return "", fmt.Errorf("unknown leaderboard metric %q", string(m))
	}
}

// LeaderboardEntry is one ranked row
type LeaderboardEntry struct {
	Rank     int
	MemberID int64
	Value    int64
}

// NormalizeLeaderboardLimit applies the default and the upper bound
func NormalizeLeaderboardLimit(limit int) int {
	if limit <= 0 {
		return DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return limit
}
