package repository

import (
	"context"
	"errors"
	"fmt"

	"guildkeeper/application"
	"guildkeeper/database"
	"guildkeeper/domain/interfaces"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	guildID                int64
	transactionalPublisher interfaces.TransactionalEventPublisher
	ledgerRepo             interfaces.MemberLedgerRepository
	guildSettingsRepo      interfaces.GuildSettingsRepository
	shopItemRepo           interfaces.ShopItemRepository
	warningRepo            interfaces.WarningRepository
	activeBanRepo          interfaces.ActiveBanRepository
	voiceSessionRepo       interfaces.VoiceSessionRepository
	monthlyResetRepo       interfaces.MonthlyResetRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) *unitOfWorkFactory {
	return &unitOfWorkFactory{
		db: db,
	}
}

type unitOfWorkFactory struct {
	db *database.DB
}

// CreateForGuildWithPublisher creates a new UnitOfWork with a specific transactional publisher
func (f *unitOfWorkFactory) CreateForGuildWithPublisher(guildID int64, transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		guildID:                guildID,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create guild-scoped repositories with the transaction
	u.ledgerRepo = NewMemberLedgerRepositoryScoped(tx, u.guildID)
	u.guildSettingsRepo = NewGuildSettingsRepositoryWithTx(tx) // Guild settings don't need scoping
	u.shopItemRepo = NewShopItemRepositoryScoped(tx, u.guildID)
	u.warningRepo = NewWarningRepositoryScoped(tx, u.guildID)
	u.activeBanRepo = NewActiveBanRepositoryScoped(tx, u.guildID)
	u.voiceSessionRepo = NewVoiceSessionRepositoryScoped(tx, u.guildID)
	u.monthlyResetRepo = NewMonthlyResetRepositoryScoped(tx, u.guildID)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Events are best-effort once the transaction has committed
	if u.transactionalPublisher != nil {
		if err := u.transactionalPublisher.Flush(u.ctx); err != nil {
			log.WithFields(log.Fields{
				"guild_id": u.guildID,
				"error":    err,
			}).Warn("Failed to flush events after commit")
		}
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	return nil
}

// MemberLedgerRepository returns the ledger repository for this unit of work
func (u *unitOfWork) MemberLedgerRepository() interfaces.MemberLedgerRepository {
	if u.ledgerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.ledgerRepo
}

// GuildSettingsRepository returns the guild settings repository for this unit of work
func (u *unitOfWork) GuildSettingsRepository() interfaces.GuildSettingsRepository {
	if u.guildSettingsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.guildSettingsRepo
}

// ShopItemRepository returns the shop item repository for this unit of work
func (u *unitOfWork) ShopItemRepository() interfaces.ShopItemRepository {
	if u.shopItemRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.shopItemRepo
}

// WarningRepository returns the warning repository for this unit of work
func (u *unitOfWork) WarningRepository() interfaces.WarningRepository {
	if u.warningRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.warningRepo
}

// ActiveBanRepository returns the active ban repository for this unit of work
func (u *unitOfWork) ActiveBanRepository() interfaces.ActiveBanRepository {
	if u.activeBanRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.activeBanRepo
}

// VoiceSessionRepository returns the voice session repository for this unit of work
func (u *unitOfWork) VoiceSessionRepository() interfaces.VoiceSessionRepository {
	if u.voiceSessionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.voiceSessionRepo
}

// MonthlyResetRepository returns the monthly reset repository for this unit of work
func (u *unitOfWork) MonthlyResetRepository() interfaces.MonthlyResetRepository {
	if u.monthlyResetRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.monthlyResetRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalPublisher
}
