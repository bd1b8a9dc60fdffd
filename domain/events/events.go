package events

import (
	"time"

	"guildkeeper/domain/entities"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange       EventType = "balance_change"
	EventTypeMonthlyReset        EventType = "monthly_reset"
	EventTypeVoiceSessionClosed  EventType = "voice_session_closed"
	EventTypeWarningIssued       EventType = "warning_issued"
	EventTypeEnforcementApplied  EventType = "enforcement_applied"
	EventTypeEnforcementReversed EventType = "enforcement_reversed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent is raised when a member's spendable balance changes
type BalanceChangeEvent struct {
	GuildID         int64                    `json:"guild_id"`
	MemberID        int64                    `json:"member_id"`
	ChangeAmount    int64                    `json:"change_amount"`
	NewBalance      int64                    `json:"new_balance"`
	TransactionType entities.TransactionType `json:"transaction_type"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// MonthlyResetEvent is raised once per guild per calendar month
type MonthlyResetEvent struct {
	GuildID      int64  `json:"guild_id"`
	Period       string `json:"period"`
	MembersReset int64  `json:"members_reset"`
}

func (e MonthlyResetEvent) Type() EventType {
	return EventTypeMonthlyReset
}

// VoiceSessionClosedEvent is raised when a member leaves voice
type VoiceSessionClosedEvent struct {
	GuildID         int64     `json:"guild_id"`
	MemberID        int64     `json:"member_id"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	DurationSeconds int64     `json:"duration_seconds"`
}

func (e VoiceSessionClosedEvent) Type() EventType {
	return EventTypeVoiceSessionClosed
}

// WarningIssuedEvent is raised for every recorded warning
type WarningIssuedEvent struct {
	GuildID     int64  `json:"guild_id"`
	MemberID    int64  `json:"member_id"`
	ModeratorID int64  `json:"moderator_id"`
	WarningID   int64  `json:"warning_id"`
	Reason      string `json:"reason"`
	Count       int    `json:"count"`
	Limit       int    `json:"limit"`
}

func (e WarningIssuedEvent) Type() EventType {
	return EventTypeWarningIssued
}

// EnforcementAppliedEvent is raised after a kick or ban took effect
type EnforcementAppliedEvent struct {
	GuildID  int64                      `json:"guild_id"`
	MemberID int64                      `json:"member_id"`
	Action   entities.EnforcementAction `json:"action"`
	Reason   string                     `json:"reason"`
	UnbanAt  *time.Time                 `json:"unban_at,omitempty"`
}

func (e EnforcementAppliedEvent) Type() EventType {
	return EventTypeEnforcementApplied
}

// EnforcementReversedEvent is raised when an expired ban is cleared
type EnforcementReversedEvent struct {
	GuildID  int64                   `json:"guild_id"`
	MemberID int64                   `json:"member_id"`
	Outcome  entities.BanLiftOutcome `json:"outcome"`
}

func (e EnforcementReversedEvent) Type() EventType {
	return EventTypeEnforcementReversed
}
