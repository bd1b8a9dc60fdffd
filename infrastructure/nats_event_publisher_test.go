package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"guildkeeper/domain/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNATSEventPublisher_LocalHandlersWithoutNATS(t *testing.T) {
	pub := NewNATSEventPublisher(nil, NewEventSubjectMapper())

	var received []events.Event
	pub.RegisterLocalHandler(events.EventTypeVoiceSessionClosed, func(ctx context.Context, event events.Event) error {
		return errors.New("first handler fails")
	})
	pub.RegisterLocalHandler(events.EventTypeVoiceSessionClosed, func(ctx context.Context, event events.Event) error {
		received = append(received, event)
		return nil
	})

	event := events.VoiceSessionClosedEvent{GuildID: 1, MemberID: 2, DurationSeconds: 90}
	require.NoError(t, pub.Publish(event))
	require.NoError(t, pub.Publish(events.MonthlyResetEvent{GuildID: 1}))

	require.Len(t, received, 1)
	assert.Equal(t, event, received[0])
	assert.NoError(t, pub.EnsureDomainEventStream())
}

func TestNewEventEnvelope(t *testing.T) {
	data, err := NewEventEnvelope(events.MonthlyResetEvent{GuildID: 7, Period: "2026-10", MembersReset: 3})
	require.NoError(t, err)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(data, &envelope))

	_, err = uuid.Parse(envelope.EventID)
	assert.NoError(t, err)
	assert.Equal(t, "monthly_reset", envelope.EventType)
	assert.Equal(t, "guildkeeper", envelope.SourceService)
	assert.False(t, envelope.Timestamp.IsZero())

	var payload events.MonthlyResetEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, "2026-10", payload.Period)
	assert.Equal(t, int64(3), payload.MembersReset)
}
