package services

import (
	"context"
	"fmt"

	"guildkeeper/domain/entities"
	"guildkeeper/domain/interfaces"
)

// guildSettingsService implements the GuildSettingsService interface
type guildSettingsService struct {
	guildSettingsRepo interfaces.GuildSettingsRepository
}

// NewGuildSettingsService creates a new guild settings service
func NewGuildSettingsService(guildSettingsRepo interfaces.GuildSettingsRepository) interfaces.GuildSettingsService {
	return &guildSettingsService{
		guildSettingsRepo: guildSettingsRepo,
	}
}

// GetOrCreateSettings retrieves guild settings or creates default ones if not found
func (s *guildSettingsService) GetOrCreateSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error) {
	settings, err := s.guildSettingsRepo.GetOrCreateGuildSettings(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create guild settings: %w", err)
	}
	return settings, nil
}

func (s *guildSettingsService) UpdateBetWinChance(ctx context.Context, guildID int64, chance int) (*entities.GuildSettings, error) {
	return s.update(ctx, guildID, func(settings *entities.GuildSettings) error {
		return settings.SetBetWinChance(chance)
	})
}

func (s *guildSettingsService) UpdateWarnLimit(ctx context.Context, guildID int64, limit int) (*entities.GuildSettings, error) {
	return s.update(ctx, guildID, func(settings *entities.GuildSettings) error {
		return settings.SetWarnLimit(limit)
	})
}

func (s *guildSettingsService) UpdateWarnAction(ctx context.Context, guildID int64, action entities.EnforcementAction) (*entities.GuildSettings, error) {
	return s.update(ctx, guildID, func(settings *entities.GuildSettings) error {
		return settings.SetWarnAction(action)
	})
}

func (s *guildSettingsService) UpdateBanDuration(ctx context.Context, guildID int64, days int) (*entities.GuildSettings, error) {
	return s.update(ctx, guildID, func(settings *entities.GuildSettings) error {
		return settings.SetBanDurationDays(days)
	})
}

func (s *guildSettingsService) UpdateCurrencyName(ctx context.Context, guildID int64, name string) (*entities.GuildSettings, error) {
	return s.update(ctx, guildID, func(settings *entities.GuildSettings) error {
		return settings.SetCurrencyName(name)
	})
}

// UpdateAuditLogChannel sets the audit log channel; nil disables it
func (s *guildSettingsService) UpdateAuditLogChannel(ctx context.Context, guildID int64, channelID *int64) (*entities.GuildSettings, error) {
	return s.update(ctx, guildID, func(settings *entities.GuildSettings) error {
		settings.SetAuditLogChannel(channelID)
		return nil
	})
}

// update validates the change before anything is written
func (s *guildSettingsService) update(ctx context.Context, guildID int64, apply func(*entities.GuildSettings) error) (*entities.GuildSettings, error) {
	settings, err := s.guildSettingsRepo.GetOrCreateGuildSettings(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}

	if err := apply(settings); err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidSetting, err)
	}

	if err := s.guildSettingsRepo.UpdateGuildSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to update guild settings: %w", err)
	}

	return settings, nil
}
