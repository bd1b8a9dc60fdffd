package infrastructure

import (
	"testing"

	"guildkeeper/domain/events"

	"github.com/stretchr/testify/assert"
)

func TestEventSubjectMapper_MapEventToSubject(t *testing.T) {
	mapper := NewEventSubjectMapper()

	tests := []struct {
		event   events.Event
		subject string
	}{
		{events.BalanceChangeEvent{}, "ledger.balance_changed"},
		{events.MonthlyResetEvent{}, "ledger.monthly_reset"},
		{events.VoiceSessionClosedEvent{}, "voice.session_closed"},
		{events.WarningIssuedEvent{}, "moderation.warning_issued"},
		{events.EnforcementAppliedEvent{}, "moderation.enforcement_applied"},
		{events.EnforcementReversedEvent{}, "moderation.enforcement_reversed"},
	}

	for _, tt := range tests {
		t.Run(string(tt.event.Type()), func(t *testing.T) {
			assert.Equal(t, tt.subject, mapper.MapEventToSubject(tt.event))
		})
	}
}

func TestEventSubjectMapper_GetAllSubjectsCoversEveryEvent(t *testing.T) {
	mapper := NewEventSubjectMapper()
	subjects := mapper.GetAllSubjects()

	assert.Len(t, subjects, len(eventSubjects))
	for _, subject := range eventSubjects {
		assert.Contains(t, subjects, subject)
	}
}
