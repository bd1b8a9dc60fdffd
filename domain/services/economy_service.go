package services

import (
	"context"
	"fmt"

	"guildkeeper/domain/entities"
	"guildkeeper/domain/interfaces"
)

type economyService struct {
	ledger            interfaces.LedgerService
	guildSettingsRepo interfaces.GuildSettingsRepository
	shopItemRepo      interfaces.ShopItemRepository
	roller            interfaces.DiceRoller
}

// NewEconomyService creates a new economy service
func NewEconomyService(
	ledger interfaces.LedgerService,
	guildSettingsRepo interfaces.GuildSettingsRepository,
	shopItemRepo interfaces.ShopItemRepository,
	roller interfaces.DiceRoller,
) interfaces.EconomyService {
	return &economyService{
		ledger:            ledger,
		guildSettingsRepo: guildSettingsRepo,
		shopItemRepo:      shopItemRepo,
		roller:            roller,
	}
}

// PlaceBet rolls once against the guild's win chance. A win pays out the
// stake, a loss takes it.
func (s *economyService) PlaceBet(ctx context.Context, guildID, memberID int64, amount int64) (*entities.BetResult, error) {
	if amount <= 0 {
		return nil, interfaces.ErrInvalidAmount
	}

	settings, err := s.guildSettingsRepo.GetOrCreateGuildSettings(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}

	ledger, err := s.ledger.GetLedger(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if !ledger.CanAfford(amount) {
		return nil, interfaces.ErrInsufficientBalance
	}

	roll := s.roller.Roll()
	won := roll <= settings.BetWinChance

	var updated *entities.MemberLedger
	if won {
		updated, err = s.ledger.AdjustCurrency(ctx, memberID, amount, entities.TransactionTypeBetWin)
	} else {
		updated, err = s.ledger.SpendCurrency(ctx, memberID, amount, entities.TransactionTypeBetLoss)
	}
	if err != nil {
		return nil, err
	}

	return &entities.BetResult{
		Amount:     amount,
		Roll:       roll,
		WinChance:  settings.BetWinChance,
		Won:        won,
		NewBalance: updated.GamblingPoints,
	}, nil
}

func (s *economyService) GetShopItem(ctx context.Context, itemID int64) (*entities.ShopItem, error) {
	item, err := s.shopItemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shop item: %w", err)
	}
	if item == nil {
		return nil, interfaces.ErrItemNotFound
	}
	return item, nil
}

func (s *economyService) ListShopItems(ctx context.Context) ([]*entities.ShopItem, error) {
	items, err := s.shopItemRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list shop items: %w", err)
	}
	return items, nil
}

func (s *economyService) AddShopItem(ctx context.Context, roleID int64, price int64) (*entities.ShopItem, error) {
	if price < 0 {
		return nil, interfaces.ErrInvalidAmount
	}

	item, err := s.shopItemRepo.Create(ctx, roleID, price)
	if err != nil {
		return nil, fmt.Errorf("failed to add shop item: %w", err)
	}
	return item, nil
}

func (s *economyService) RemoveShopItem(ctx context.Context, itemID int64) error {
	deleted, err := s.shopItemRepo.Delete(ctx, itemID)
	if err != nil {
		return fmt.Errorf("failed to remove shop item: %w", err)
	}
	if !deleted {
		return interfaces.ErrItemNotFound
	}
	return nil
}

func (s *economyService) ChargeForItem(ctx context.Context, memberID int64, item *entities.ShopItem) (*entities.MemberLedger, error) {
	if item.Price == 0 {
		return s.ledger.GetLedger(ctx, memberID)
	}
	return s.ledger.SpendCurrency(ctx, memberID, item.Price, entities.TransactionTypeShopPurchase)
}

func (s *economyService) RefundItem(ctx context.Context, memberID int64, item *entities.ShopItem) (*entities.MemberLedger, error) {
	if item.Price == 0 {
		return s.ledger.GetLedger(ctx, memberID)
	}
	return s.ledger.AdjustCurrency(ctx, memberID, item.Price, entities.TransactionTypeShopRefund)
}

func (s *economyService) GrantCurrency(ctx context.Context, memberID int64, amount int64) (*entities.MemberLedger, error) {
	if amount <= 0 {
		return nil, interfaces.ErrInvalidAmount
	}
	return s.ledger.AdjustCurrency(ctx, memberID, amount, entities.TransactionTypeAdminGrant)
}

// TakeCurrency removes up to amount; the balance stops at zero
func (s *economyService) TakeCurrency(ctx context.Context, memberID int64, amount int64) (*entities.MemberLedger, error) {
	if amount <= 0 {
		return nil, interfaces.ErrInvalidAmount
	}
	return s.ledger.AdjustCurrency(ctx, memberID, -amount, entities.TransactionTypeAdminTake)
}
