package services

import (
	"context"
	"testing"
	"time"

	"guildkeeper/domain/entities"
	"guildkeeper/domain/events"
	"guildkeeper/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestVoiceTracker_Join(t *testing.T) {
	ctx := context.Background()
	voiceRepo := new(testhelpers.MockVoiceSessionRepository)
	ledgerRepo := new(testhelpers.MockMemberLedgerRepository)
	publisher := new(testhelpers.MockEventPublisher)
	tracker := NewVoiceTracker(voiceRepo, ledgerRepo, publisher)
	now := time.Now()

	voiceRepo.On("StartSession", ctx, testMemberID, now).Return(true, nil)

	transition, err := tracker.HandleVoiceStateChange(ctx, testGuildID, testMemberID, "", "chan-1", now)
	require.NoError(t, err)
	assert.Equal(t, entities.VoiceJoined, transition)
	voiceRepo.AssertExpectations(t)
}

func TestVoiceTracker_Leave(t *testing.T) {
	ctx := context.Background()
	voiceRepo := new(testhelpers.MockVoiceSessionRepository)
	ledgerRepo := new(testhelpers.MockMemberLedgerRepository)
	publisher := new(testhelpers.MockEventPublisher)
	tracker := NewVoiceTracker(voiceRepo, ledgerRepo, publisher)

	started := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	ended := started.Add(15 * time.Minute)

	voiceRepo.On("EndSession", ctx, testMemberID, ended).Return(&entities.VoiceSession{
		GuildID:         testGuildID,
		MemberID:        testMemberID,
		StartedAt:       started,
		EndedAt:         ended,
		DurationSeconds: 900,
	}, nil)
	ledgerRepo.On("ApplyDelta", ctx, testMemberID, entities.LedgerDelta{VoiceSeconds: 900}).Return(&entities.MemberLedger{VoiceSeconds: 900}, nil)
	publisher.On("Publish", events.VoiceSessionClosedEvent{
		GuildID:         testGuildID,
		MemberID:        testMemberID,
		StartedAt:       started,
		EndedAt:         ended,
		DurationSeconds: 900,
	}).Return(nil)

	transition, err := tracker.HandleVoiceStateChange(ctx, testGuildID, testMemberID, "chan-1", "", ended)
	require.NoError(t, err)
	assert.Equal(t, entities.VoiceLeft, transition)

	voiceRepo.AssertExpectations(t)
	ledgerRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestVoiceTracker_DuplicateLeaveIsNoop(t *testing.T) {
	ctx := context.Background()
	voiceRepo := new(testhelpers.MockVoiceSessionRepository)
	ledgerRepo := new(testhelpers.MockMemberLedgerRepository)
	publisher := new(testhelpers.MockEventPublisher)
	tracker := NewVoiceTracker(voiceRepo, ledgerRepo, publisher)
	now := time.Now()

	voiceRepo.On("EndSession", ctx, testMemberID, now).Return(nil, nil)

	_, err := tracker.HandleVoiceStateChange(ctx, testGuildID, testMemberID, "chan-1", "", now)
	require.NoError(t, err)

	ledgerRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestVoiceTracker_MoveKeepsSession(t *testing.T) {
	ctx := context.Background()
	voiceRepo := new(testhelpers.MockVoiceSessionRepository)
	tracker := NewVoiceTracker(voiceRepo, new(testhelpers.MockMemberLedgerRepository), new(testhelpers.MockEventPublisher))

	for _, tc := range []struct{ prev, next string }{{"a", "b"}, {"a", "a"}} {
		transition, err := tracker.HandleVoiceStateChange(ctx, testGuildID, testMemberID, tc.prev, tc.next, time.Now())
		require.NoError(t, err)
		assert.NotEqual(t, entities.VoiceJoined, transition)
		assert.NotEqual(t, entities.VoiceLeft, transition)
	}

	voiceRepo.AssertNotCalled(t, "StartSession", mock.Anything, mock.Anything, mock.Anything)
	voiceRepo.AssertNotCalled(t, "EndSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestVoiceTracker_ResyncMembers(t *testing.T) {
	ctx := context.Background()
	voiceRepo := new(testhelpers.MockVoiceSessionRepository)
	tracker := NewVoiceTracker(voiceRepo, new(testhelpers.MockMemberLedgerRepository), new(testhelpers.MockEventPublisher))
	restart := time.Now()

	voiceRepo.On("StartSession", ctx, int64(1), restart).Return(true, nil)
	voiceRepo.On("StartSession", ctx, int64(2), restart).Return(false, nil)

	opened, err := tracker.ResyncMembers(ctx, []int64{1, 2}, restart)
	require.NoError(t, err)
	assert.Equal(t, 1, opened)
	voiceRepo.AssertExpectations(t)
}
