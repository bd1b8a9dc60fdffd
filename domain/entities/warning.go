package entities

import "time"

// DefaultWarningReason is recorded when a moderator gives no reason
const DefaultWarningReason = "No reason provided."

// Warning is a single moderation warning
type Warning struct {
	ID          int64     `db:"id"`
	GuildID     int64     `db:"guild_id"`
	MemberID    int64     `db:"member_id"`
	ModeratorID int64     `db:"moderator_id"`
	Reason      string    `db:"reason"`
	CreatedAt   time.Time `db:"created_at"`
}

// WarningCount is the number of warnings a member holds
type WarningCount struct {
	MemberID int64
	Count    int
}

// WarnOutcome is the result of recording a warning
type WarnOutcome struct {
	Warning     *Warning
	Count       int
	Limit       int
	Enforcement *EnforcementDecision // Non-nil when the limit was reached
}

// LimitReached reports whether the warning triggered enforcement
func (o *WarnOutcome) LimitReached() bool {
	return o.Enforcement != nil
}
