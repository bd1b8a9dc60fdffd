package infrastructure

import (
	"fmt"

	"guildkeeper/domain/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

var eventSubjects = map[events.EventType]string{
	events.EventTypeBalanceChange:       "ledger.balance_changed",
	events.EventTypeMonthlyReset:        "ledger.monthly_reset",
	events.EventTypeVoiceSessionClosed:  "voice.session_closed",
	events.EventTypeWarningIssued:       "moderation.warning_issued",
	events.EventTypeEnforcementApplied:  "moderation.enforcement_applied",
	events.EventTypeEnforcementReversed: "moderation.enforcement_reversed",
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	if subject, ok := eventSubjects[event.Type()]; ok {
		return subject
	}
	return fmt.Sprintf("unknown.%s", event.Type())
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"ledger.balance_changed",
		"ledger.monthly_reset",
		"voice.session_closed",
		"moderation.warning_issued",
		"moderation.enforcement_applied",
		"moderation.enforcement_reversed",
	}
}
