package entities

import "time"

// ActiveVoiceSession marks a member currently present in voice
type ActiveVoiceSession struct {
	GuildID   int64     `db:"guild_id"`
	MemberID  int64     `db:"member_id"`
	StartedAt time.Time `db:"started_at"`
}

// VoiceSession is a completed stay in voice
type VoiceSession struct {
	ID              int64     `db:"id"`
	GuildID         int64     `db:"guild_id"`
	MemberID        int64     `db:"member_id"`
	StartedAt       time.Time `db:"started_at"`
	EndedAt         time.Time `db:"ended_at"`
	DurationSeconds int64     `db:"duration_seconds"`
}

// SessionDurationSeconds returns whole seconds between start and end, never negative
func SessionDurationSeconds(startedAt, endedAt time.Time) int64 {
	d := endedAt.Sub(startedAt)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}

// VoiceTransition is the presence change implied by a voice state update
type VoiceTransition string

const (
	VoiceJoined    VoiceTransition = "joined"
	VoiceLeft      VoiceTransition = "left"
	VoiceMoved     VoiceTransition = "moved"
	VoiceUnchanged VoiceTransition = "unchanged"
)

// ClassifyVoiceTransition derives the transition from previous and new channel ids.
// Empty strings mean "not in a voice channel".
func ClassifyVoiceTransition(prevChannelID, newChannelID string) VoiceTransition {
	switch {
	case prevChannelID == "" && newChannelID != "":
		return VoiceJoined
	case prevChannelID != "" && newChannelID == "":
		return VoiceLeft
	case prevChannelID != newChannelID:
		return VoiceMoved
	default:
		return VoiceUnchanged
	}
}
