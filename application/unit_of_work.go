package application

import (
	"context"

	"guildkeeper/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes buffered events
	Commit() error

	// Rollback rolls back the transaction and discards buffered events
	Rollback() error

	// Repository getters
	MemberLedgerRepository() interfaces.MemberLedgerRepository
	GuildSettingsRepository() interfaces.GuildSettingsRepository
	ShopItemRepository() interfaces.ShopItemRepository
	WarningRepository() interfaces.WarningRepository
	ActiveBanRepository() interfaces.ActiveBanRepository
	VoiceSessionRepository() interfaces.VoiceSessionRepository
	MonthlyResetRepository() interfaces.MonthlyResetRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// CreateForGuild creates a new UnitOfWork instance scoped to a specific guild.
	// Guild 0 is used for sweeps that span every guild.
	CreateForGuild(guildID int64) UnitOfWork
}
