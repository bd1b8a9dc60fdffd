package entities

import "time"

// Rewards credited for member activity
const (
	MessageActivityPoints = 1
	MessageCurrencyPoints = 2
	VoiceActivityPoints   = 10
	VoiceCurrencyPoints   = 20
)

// MemberLedger is the per-guild, per-member account of activity and currency
type MemberLedger struct {
	GuildID               int64      `db:"guild_id"`
	MemberID              int64      `db:"member_id"`
	ActivityPoints        int64      `db:"activity_points"`         // Lifetime, never decreases
	MonthlyActivityPoints int64      `db:"monthly_activity_points"` // Zeroed on the first day of each month
	GamblingPoints        int64      `db:"gambling_points"`         // Spendable currency, never negative
	MessageCount          int64      `db:"message_count"`
	VoiceSeconds          int64      `db:"voice_seconds"`
	LastActivityAt        *time.Time `db:"last_activity_at"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
}

// CanAfford reports whether the member holds at least amount currency
func (l *MemberLedger) CanAfford(amount int64) bool {
	return l.GamblingPoints >= amount
}

// LedgerDelta is a relative change applied to a ledger in a single statement.
// Currency may be negative; the stored balance is clamped at zero.
type LedgerDelta struct {
	Activity     int64
	Monthly      int64
	Currency     int64
	Messages     int64
	VoiceSeconds int64
	TouchedAt    *time.Time // Sets last_activity_at when non-nil
}

// MessageDelta is the reward for one chat message
func MessageDelta(at time.Time) LedgerDelta {
	return LedgerDelta{
		Activity:  MessageActivityPoints,
		Monthly:   MessageActivityPoints,
		Currency:  MessageCurrencyPoints,
		Messages:  1,
		TouchedAt: &at,
	}
}

// VoiceTickDelta is the reward for one qualifying voice scan
func VoiceTickDelta(at time.Time) LedgerDelta {
	return LedgerDelta{
		Activity:  VoiceActivityPoints,
		Monthly:   VoiceActivityPoints,
		Currency:  VoiceCurrencyPoints,
		TouchedAt: &at,
	}
}

// CurrencyDelta changes only the spendable balance
func CurrencyDelta(amount int64) LedgerDelta {
	return LedgerDelta{Currency: amount}
}

// IsZero reports whether applying the delta would change nothing
func (d LedgerDelta) IsZero() bool {
	return d.Activity == 0 && d.Monthly == 0 && d.Currency == 0 &&
		d.Messages == 0 && d.VoiceSeconds == 0 && d.TouchedAt == nil
}
