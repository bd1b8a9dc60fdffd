package entities

import "time"

// EnforcementAction is what happens when a member reaches the warning limit
type EnforcementAction string

const (
	EnforcementKick EnforcementAction = "kick"
	EnforcementBan  EnforcementAction = "ban"
)

// IsValid checks the action is one of the supported actions
func (a EnforcementAction) IsValid() bool {
	return a == EnforcementKick || a == EnforcementBan
}

// EnforcementDecision describes an enforcement that must be applied
type EnforcementDecision struct {
	GuildID  int64
	MemberID int64
	Action   EnforcementAction
	Reason   string
	UnbanAt  *time.Time // Set for timed bans only
}

// ActiveBan is a timed ban awaiting automatic reversal
type ActiveBan struct {
	GuildID   int64     `db:"guild_id"`
	MemberID  int64     `db:"member_id"`
	UnbanAt   time.Time `db:"unban_at"`
	Reason    string    `db:"reason"`
	CreatedAt time.Time `db:"created_at"`
}

// IsExpired reports whether the ban should be lifted at now
func (b *ActiveBan) IsExpired(now time.Time) bool {
	return !b.UnbanAt.After(now)
}

// BanLiftOutcome records how an expired ban was cleared
type BanLiftOutcome string

const (
	BanLiftUnbanned      BanLiftOutcome = "unbanned"
	BanLiftAlreadyLifted BanLiftOutcome = "already_lifted" // External ban was already gone
)
