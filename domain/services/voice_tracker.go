package services

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/domain/entities"
	"guildkeeper/domain/events"
	"guildkeeper/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type voiceTracker struct {
	voiceRepo      interfaces.VoiceSessionRepository
	ledgerRepo     interfaces.MemberLedgerRepository
	eventPublisher interfaces.EventPublisher
}

// NewVoiceTracker creates a new voice presence tracker
func NewVoiceTracker(
	voiceRepo interfaces.VoiceSessionRepository,
	ledgerRepo interfaces.MemberLedgerRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.VoiceTracker {
	return &voiceTracker{
		voiceRepo:      voiceRepo,
		ledgerRepo:     ledgerRepo,
		eventPublisher: eventPublisher,
	}
}

// HandleVoiceStateChange opens a session on join and closes it on leave.
// Moves between channels keep the session open.
func (t *voiceTracker) HandleVoiceStateChange(ctx context.Context, guildID, memberID int64, prevChannelID, newChannelID string, at time.Time) (entities.VoiceTransition, error) {
	transition := entities.ClassifyVoiceTransition(prevChannelID, newChannelID)

	switch transition {
	case entities.VoiceJoined:
		if _, err := t.voiceRepo.StartSession(ctx, memberID, at); err != nil {
			return transition, fmt.Errorf("failed to start voice session: %w", err)
		}

	case entities.VoiceLeft:
		session, err := t.voiceRepo.EndSession(ctx, memberID, at)
		if err != nil {
			return transition, fmt.Errorf("failed to end voice session: %w", err)
		}
		if session == nil {
			log.WithFields(log.Fields{
				"guild_id":  guildID,
				"member_id": memberID,
			}).Debug("Voice leave without an open session")
			return transition, nil
		}

		if session.DurationSeconds > 0 {
			if _, err := t.ledgerRepo.ApplyDelta(ctx, memberID, entities.LedgerDelta{VoiceSeconds: session.DurationSeconds}); err != nil {
				return transition, fmt.Errorf("failed to add voice time: %w", err)
			}
		}

		if err := t.eventPublisher.Publish(events.VoiceSessionClosedEvent{
			GuildID:         guildID,
			MemberID:        memberID,
			StartedAt:       session.StartedAt,
			EndedAt:         session.EndedAt,
			DurationSeconds: session.DurationSeconds,
		}); err != nil {
			return transition, fmt.Errorf("failed to publish voice session event: %w", err)
		}
	}

	return transition, nil
}

func (t *voiceTracker) ClearActiveSessions(ctx context.Context) (int64, error) {
	cleared, err := t.voiceRepo.ClearAllActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear active voice sessions: %w", err)
	}
	return cleared, nil
}

// ResyncMembers opens a session for every member still in voice. Members
// that already have one keep it.
func (t *voiceTracker) ResyncMembers(ctx context.Context, memberIDs []int64, startedAt time.Time) (int, error) {
	opened := 0
	for _, memberID := range memberIDs {
		created, err := t.voiceRepo.StartSession(ctx, memberID, startedAt)
		if err != nil {
			return opened, fmt.Errorf("failed to resync voice session for member %d: %w", memberID, err)
		}
		if created {
			opened++
		}
	}
	return opened, nil
}
