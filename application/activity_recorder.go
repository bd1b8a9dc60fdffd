package application

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/domain/entities"
	"guildkeeper/domain/services"
	"guildkeeper/infrastructure/observability"
)

// ActivityRecorder turns gateway activity into ledger updates
type ActivityRecorder struct {
	uowFactory UnitOfWorkFactory
}

// NewActivityRecorder creates an activity recorder
func NewActivityRecorder(uowFactory UnitOfWorkFactory) *ActivityRecorder {
	return &ActivityRecorder{uowFactory: uowFactory}
}

// RecordMessage credits a member for one guild message
func (r *ActivityRecorder) RecordMessage(ctx context.Context, guildID, memberID int64, at time.Time) (*entities.MemberLedger, error) {
	observability.GetMetrics().RecordMessageRead()

	uow := r.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ledger := services.NewLedgerService(uow.MemberLedgerRepository(), uow.MonthlyResetRepository(), uow.EventBus())
	updated, err := ledger.RecordMessage(ctx, memberID, at)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit message activity: %w", err)
	}

	observability.GetMetrics().RecordActivityAward(observability.AwardSourceMessage)
	return updated, nil
}

// HandleVoiceStateChange opens or closes the member's voice session
func (r *ActivityRecorder) HandleVoiceStateChange(ctx context.Context, guildID, memberID int64, prevChannelID, newChannelID string, at time.Time) (entities.VoiceTransition, error) {
	transition := entities.ClassifyVoiceTransition(prevChannelID, newChannelID)
	if transition == entities.VoiceMoved || transition == entities.VoiceUnchanged {
		return transition, nil
	}

	uow := r.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return transition, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	tracker := services.NewVoiceTracker(uow.VoiceSessionRepository(), uow.MemberLedgerRepository(), uow.EventBus())
	if _, err := tracker.HandleVoiceStateChange(ctx, guildID, memberID, prevChannelID, newChannelID, at); err != nil {
		return transition, err
	}
	if err := uow.Commit(); err != nil {
		return transition, fmt.Errorf("failed to commit voice state change: %w", err)
	}

	if transition == entities.VoiceLeft {
		observability.GetMetrics().RecordVoiceSessionClosed()
	}
	return transition, nil
}
