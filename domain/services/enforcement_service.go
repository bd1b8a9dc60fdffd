package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"guildkeeper/domain/entities"
	"guildkeeper/domain/events"
	"guildkeeper/domain/interfaces"
)

type enforcementService struct {
	warningRepo       interfaces.WarningRepository
	activeBanRepo     interfaces.ActiveBanRepository
	guildSettingsRepo interfaces.GuildSettingsRepository
	eventPublisher    interfaces.EventPublisher
}

// NewEnforcementService creates a new enforcement service
func NewEnforcementService(
	warningRepo interfaces.WarningRepository,
	activeBanRepo interfaces.ActiveBanRepository,
	guildSettingsRepo interfaces.GuildSettingsRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.EnforcementService {
	return &enforcementService{
		warningRepo:       warningRepo,
		activeBanRepo:     activeBanRepo,
		guildSettingsRepo: guildSettingsRepo,
		eventPublisher:    eventPublisher,
	}
}

// IssueWarning appends a warning and returns an enforcement decision once
// the member's total reaches the guild limit. The decision is not applied here.
func (s *enforcementService) IssueWarning(ctx context.Context, guildID, memberID, moderatorID int64, reason string, now time.Time) (*entities.WarnOutcome, error) {
	if memberID == moderatorID {
		return nil, interfaces.ErrSelfWarn
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = entities.DefaultWarningReason
	}

	warning := &entities.Warning{
		GuildID:     guildID,
		MemberID:    memberID,
		ModeratorID: moderatorID,
		Reason:      reason,
		CreatedAt:   now,
	}
	if err := s.warningRepo.Create(ctx, warning); err != nil {
		return nil, fmt.Errorf("failed to record warning: %w", err)
	}

	count, err := s.warningRepo.CountByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to count warnings: %w", err)
	}

	settings, err := s.guildSettingsRepo.GetOrCreateGuildSettings(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}

	outcome := &entities.WarnOutcome{
		Warning: warning,
		Count:   count,
		Limit:   settings.WarnLimit,
	}

	if count >= settings.WarnLimit {
		decision := &entities.EnforcementDecision{
			GuildID:  guildID,
			MemberID: memberID,
			Action:   settings.WarnAction,
			Reason:   fmt.Sprintf("Reached warning limit of %d.", settings.WarnLimit),
		}
		if decision.Action == entities.EnforcementBan {
			unbanAt := now.Add(time.Duration(settings.BanDurationDays) * 24 * time.Hour)
			decision.UnbanAt = &unbanAt
		}
		outcome.Enforcement = decision
	}

	if err := s.eventPublisher.Publish(events.WarningIssuedEvent{
		GuildID:     guildID,
		MemberID:    memberID,
		ModeratorID: moderatorID,
		WarningID:   warning.ID,
		Reason:      reason,
		Count:       count,
		Limit:       settings.WarnLimit,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish warning event: %w", err)
	}

	return outcome, nil
}

// RecordEnforcement persists an enforcement that the actuator already applied
func (s *enforcementService) RecordEnforcement(ctx context.Context, decision *entities.EnforcementDecision) error {
	if decision.Action == entities.EnforcementBan && decision.UnbanAt != nil {
		if err := s.activeBanRepo.Upsert(ctx, &entities.ActiveBan{
			GuildID:  decision.GuildID,
			MemberID: decision.MemberID,
			UnbanAt:  *decision.UnbanAt,
			Reason:   decision.Reason,
		}); err != nil {
			return fmt.Errorf("failed to record active ban: %w", err)
		}
	}

	if err := s.eventPublisher.Publish(events.EnforcementAppliedEvent{
		GuildID:  decision.GuildID,
		MemberID: decision.MemberID,
		Action:   decision.Action,
		Reason:   decision.Reason,
		UnbanAt:  decision.UnbanAt,
	}); err != nil {
		return fmt.Errorf("failed to publish enforcement event: %w", err)
	}

	return nil
}

// RemoveWarning deletes one warning. Enforcement already applied stays in place.
func (s *enforcementService) RemoveWarning(ctx context.Context, warningID int64) error {
	deleted, err := s.warningRepo.Delete(ctx, warningID)
	if err != nil {
		return fmt.Errorf("failed to remove warning: %w", err)
	}
	if !deleted {
		return interfaces.ErrWarningNotFound
	}
	return nil
}

func (s *enforcementService) ListWarnings(ctx context.Context, memberID int64) ([]*entities.Warning, error) {
	warnings, err := s.warningRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list warnings: %w", err)
	}
	return warnings, nil
}

func (s *enforcementService) WarningSummary(ctx context.Context) ([]*entities.WarningCount, error) {
	summary, err := s.warningRepo.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize warnings: %w", err)
	}
	return summary, nil
}

func (s *enforcementService) ListExpiredBans(ctx context.Context, now time.Time) ([]*entities.ActiveBan, error) {
	bans, err := s.activeBanRepo.ListExpired(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired bans: %w", err)
	}
	return bans, nil
}

func (s *enforcementService) LiftBan(ctx context.Context, ban *entities.ActiveBan, outcome entities.BanLiftOutcome) error {
	if _, err := s.activeBanRepo.Delete(ctx, ban.MemberID); err != nil {
		return fmt.Errorf("failed to delete active ban: %w", err)
	}

	if err := s.eventPublisher.Publish(events.EnforcementReversedEvent{
		GuildID:  ban.GuildID,
		MemberID: ban.MemberID,
		Outcome:  outcome,
	}); err != nil {
		return fmt.Errorf("failed to publish enforcement reversal event: %w", err)
	}

	return nil
}
