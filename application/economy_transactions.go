package application

import (
	"context"
	"errors"
	"fmt"

	"guildkeeper/domain/entities"
	"guildkeeper/domain/interfaces"
	"guildkeeper/domain/services"
	"guildkeeper/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// EconomyTransactions runs the currency operations that span more than one
// transaction or must be serialised per member.
type EconomyTransactions struct {
	uowFactory UnitOfWorkFactory
	granter    interfaces.EntitlementGranter
	roller     interfaces.DiceRoller
	locks      *MemberLocks
}

// NewEconomyTransactions creates the economy coordinator
func NewEconomyTransactions(
	uowFactory UnitOfWorkFactory,
	granter interfaces.EntitlementGranter,
	roller interfaces.DiceRoller,
	locks *MemberLocks,
) *EconomyTransactions {
	return &EconomyTransactions{
		uowFactory: uowFactory,
		granter:    granter,
		roller:     roller,
		locks:      locks,
	}
}

func (e *EconomyTransactions) newEconomyService(uow UnitOfWork) interfaces.EconomyService {
	ledger := services.NewLedgerService(
		uow.MemberLedgerRepository(),
		uow.MonthlyResetRepository(),
		uow.EventBus(),
	)
	return services.NewEconomyService(
		ledger,
		uow.GuildSettingsRepository(),
		uow.ShopItemRepository(),
		e.roller,
	)
}

// PlaceBet stakes amount on a single roll
func (e *EconomyTransactions) PlaceBet(ctx context.Context, guildID, memberID, amount int64) (*entities.BetResult, error) {
	release := e.locks.Lock(guildID, memberID)
	defer release()

	uow := e.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	result, err := e.newEconomyService(uow).PlaceBet(ctx, guildID, memberID, amount)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bet: %w", err)
	}

	txType := entities.TransactionTypeBetLoss
	if result.Won {
		txType = entities.TransactionTypeBetWin
	}
	observability.GetMetrics().RecordEconomyTransaction(string(txType))

	return result, nil
}

// PurchaseItem charges the item price, grants the role and refunds the
// charge if the grant fails. The charge is committed before the grant so
// the role is never handed out without payment.
func (e *EconomyTransactions) PurchaseItem(ctx context.Context, guildID, memberID, itemID int64) (*entities.PurchaseResult, error) {
	release := e.locks.Lock(guildID, memberID)
	defer release()

	item, err := e.lookupItem(ctx, guildID, itemID)
	if err != nil {
		return nil, err
	}

	held, err := e.granter.HasEntitlement(ctx, guildID, memberID, item.RoleID)
	if err != nil {
		return nil, fmt.Errorf("failed to check role ownership: %w", err)
	}
	if held {
		return nil, interfaces.ErrEntitlementAlreadyHeld
	}

	charged, err := e.charge(ctx, guildID, memberID, item)
	if err != nil {
		return nil, err
	}
	observability.GetMetrics().RecordEconomyTransaction(string(entities.TransactionTypeShopPurchase))

	if grantErr := e.granter.GrantEntitlement(ctx, guildID, memberID, item.RoleID); grantErr != nil {
		grantErr = fmt.Errorf("%w: %w", interfaces.ErrEntitlementGrantFailed, grantErr)

		if refundErr := e.refund(ctx, guildID, memberID, item); refundErr != nil {
			log.WithFields(log.Fields{
				"guild_id":  guildID,
				"member_id": memberID,
				"role_id":   item.RoleID,
				"price":     item.Price,
				"error":     refundErr,
			}).Error("Refund after failed role grant did not complete")
			observability.GetMetrics().RecordCompensation(observability.OutcomeFailure)
			return nil, errors.Join(grantErr, fmt.Errorf("refund failed: %w", refundErr))
		}

		observability.GetMetrics().RecordCompensation(observability.OutcomeSuccess)
		log.WithFields(log.Fields{
			"guild_id":  guildID,
			"member_id": memberID,
			"role_id":   item.RoleID,
			"price":     item.Price,
		}).Warn("Role grant failed, purchase refunded")
		return nil, grantErr
	}

	return &entities.PurchaseResult{
		Item:       item,
		NewBalance: charged.GamblingPoints,
	}, nil
}

func (e *EconomyTransactions) lookupItem(ctx context.Context, guildID, itemID int64) (*entities.ShopItem, error) {
	uow := e.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return e.newEconomyService(uow).GetShopItem(ctx, itemID)
}

func (e *EconomyTransactions) charge(ctx context.Context, guildID, memberID int64, item *entities.ShopItem) (*entities.MemberLedger, error) {
	uow := e.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ledger, err := e.newEconomyService(uow).ChargeForItem(ctx, memberID, item)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit purchase charge: %w", err)
	}
	return ledger, nil
}

func (e *EconomyTransactions) refund(ctx context.Context, guildID, memberID int64, item *entities.ShopItem) error {
	// The caller's context may already be cancelled by the failure we are compensating
	ctx = context.WithoutCancel(ctx)

	uow := e.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := e.newEconomyService(uow).RefundItem(ctx, memberID, item); err != nil {
		return err
	}
	return uow.Commit()
}

// GrantCurrency adds currency on behalf of an administrator
func (e *EconomyTransactions) GrantCurrency(ctx context.Context, guildID, memberID, amount int64) (*entities.MemberLedger, error) {
	return e.adminAdjust(ctx, guildID, memberID, func(svc interfaces.EconomyService) (*entities.MemberLedger, error) {
		return svc.GrantCurrency(ctx, memberID, amount)
	}, entities.TransactionTypeAdminGrant)
}

// TakeCurrency removes currency on behalf of an administrator, stopping at zero
func (e *EconomyTransactions) TakeCurrency(ctx context.Context, guildID, memberID, amount int64) (*entities.MemberLedger, error) {
	return e.adminAdjust(ctx, guildID, memberID, func(svc interfaces.EconomyService) (*entities.MemberLedger, error) {
		return svc.TakeCurrency(ctx, memberID, amount)
	}, entities.TransactionTypeAdminTake)
}

func (e *EconomyTransactions) adminAdjust(
	ctx context.Context,
	guildID, memberID int64,
	apply func(interfaces.EconomyService) (*entities.MemberLedger, error),
	txType entities.TransactionType,
) (*entities.MemberLedger, error) {
	uow := e.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ledger, err := apply(e.newEconomyService(uow))
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit %s: %w", txType, err)
	}

	observability.GetMetrics().RecordEconomyTransaction(string(txType))
	return ledger, nil
}

// ListShopItems returns the guild's shop, cheapest first
func (e *EconomyTransactions) ListShopItems(ctx context.Context, guildID int64) ([]*entities.ShopItem, error) {
	uow := e.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return e.newEconomyService(uow).ListShopItems(ctx)
}

// AddShopItem lists a role for sale
func (e *EconomyTransactions) AddShopItem(ctx context.Context, guildID, roleID, price int64) (*entities.ShopItem, error) {
	uow := e.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := e.newEconomyService(uow).AddShopItem(ctx, roleID, price)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit shop item: %w", err)
	}
	return item, nil
}

// RemoveShopItem takes an item out of the guild's shop
func (e *EconomyTransactions) RemoveShopItem(ctx context.Context, guildID, itemID int64) error {
	uow := e.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := e.newEconomyService(uow).RemoveShopItem(ctx, itemID); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit shop item removal: %w", err)
	}
	return nil
}
