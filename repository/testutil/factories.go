package testutil

import (
	"time"

	"guildkeeper/domain/entities"
)

// CreateTestWarning creates a warning with default values
func CreateTestWarning(memberID, moderatorID int64, reason string) *entities.Warning {
	return &entities.Warning{
		MemberID:    memberID,
		ModeratorID: moderatorID,
		Reason:      reason,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

// CreateTestActiveBan creates a ban expiring after the given offset from now
func CreateTestActiveBan(memberID int64, offset time.Duration) *entities.ActiveBan {
	return &entities.ActiveBan{
		MemberID: memberID,
		UnbanAt:  time.Now().UTC().Add(offset).Truncate(time.Microsecond),
		Reason:   "Reached warning limit of 3.",
	}
}
