package common

import (
	"context"
	"fmt"

	"guildkeeper/application"
	"guildkeeper/domain/entities"
	"guildkeeper/domain/services"
)

// LoadGuildSettings reads the guild's settings, creating defaults on first use
func LoadGuildSettings(ctx context.Context, uowFactory application.UnitOfWorkFactory, guildID int64) (*entities.GuildSettings, error) {
	uow := uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := services.NewGuildSettingsService(uow.GuildSettingsRepository()).GetOrCreateSettings(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return settings, nil
}
