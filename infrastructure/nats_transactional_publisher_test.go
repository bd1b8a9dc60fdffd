package infrastructure

import (
	"context"
	"errors"
	"testing"

	"guildkeeper/domain/entities"
	"guildkeeper/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	published []events.Event
	failOn    events.EventType
}

func (r *recordingPublisher) Publish(event events.Event) error {
	if event.Type() == r.failOn {
		return errors.New("nats unavailable")
	}
	r.published = append(r.published, event)
	return nil
}

func TestNATSTransactionalPublisher_HoldsEventsUntilFlush(t *testing.T) {
	inner := &recordingPublisher{}
	pub := NewNATSTransactionalPublisher(inner)

	event := events.BalanceChangeEvent{
		GuildID:         1,
		MemberID:        2,
		ChangeAmount:    50,
		NewBalance:      150,
		TransactionType: entities.TransactionTypeBetWin,
	}
	require.NoError(t, pub.Publish(event))
	assert.Empty(t, inner.published)

	require.NoError(t, pub.Flush(context.Background()))
	require.Len(t, inner.published, 1)
	assert.Equal(t, event, inner.published[0])

	// A second flush has nothing left to send
	require.NoError(t, pub.Flush(context.Background()))
	assert.Len(t, inner.published, 1)
}

func TestNATSTransactionalPublisher_Discard(t *testing.T) {
	inner := &recordingPublisher{}
	pub := NewNATSTransactionalPublisher(inner)

	require.NoError(t, pub.Publish(events.MonthlyResetEvent{GuildID: 1, Period: "2026-10"}))
	pub.Discard()

	require.NoError(t, pub.Flush(context.Background()))
	assert.Empty(t, inner.published)
}

func TestNATSTransactionalPublisher_FlushContinuesPastFailures(t *testing.T) {
	inner := &recordingPublisher{failOn: events.EventTypeWarningIssued}
	pub := NewNATSTransactionalPublisher(inner)

	require.NoError(t, pub.Publish(events.WarningIssuedEvent{GuildID: 1, MemberID: 2}))
	require.NoError(t, pub.Publish(events.EnforcementAppliedEvent{GuildID: 1, MemberID: 2, Action: entities.EnforcementKick}))

	require.NoError(t, pub.Flush(context.Background()))
	require.Len(t, inner.published, 1)
	assert.Equal(t, events.EventTypeEnforcementApplied, inner.published[0].Type())
}

func TestNATSTransactionalPublisher_CancelledContextDropsEvents(t *testing.T) {
	inner := &recordingPublisher{}
	pub := NewNATSTransactionalPublisher(inner)
	require.NoError(t, pub.Publish(events.MonthlyResetEvent{GuildID: 1, Period: "2026-10"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, pub.Flush(ctx))
	assert.Empty(t, inner.published)

	require.NoError(t, pub.Flush(context.Background()))
	assert.Empty(t, inner.published)
}

func TestNoopEventPublisher_CountsDroppedEvents(t *testing.T) {
	noop := NewNoopEventPublisher()
	pub := NewNATSTransactionalPublisher(noop)

	require.NoError(t, pub.Publish(events.WarningIssuedEvent{GuildID: 1, MemberID: 2}))
	require.NoError(t, pub.Publish(events.MonthlyResetEvent{GuildID: 1, Period: "2026-10"}))
	require.NoError(t, pub.Flush(context.Background()))

	assert.Equal(t, int64(2), noop.Dropped())
}
