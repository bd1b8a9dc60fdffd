package services

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/domain/entities"
	"guildkeeper/domain/events"
	"guildkeeper/domain/interfaces"
)

type ledgerService struct {
	ledgerRepo     interfaces.MemberLedgerRepository
	resetRepo      interfaces.MonthlyResetRepository
	eventPublisher interfaces.EventPublisher
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	ledgerRepo interfaces.MemberLedgerRepository,
	resetRepo interfaces.MonthlyResetRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.LedgerService {
	return &ledgerService{
		ledgerRepo:     ledgerRepo,
		resetRepo:      resetRepo,
		eventPublisher: eventPublisher,
	}
}

func (s *ledgerService) RecordMessage(ctx context.Context, memberID int64, at time.Time) (*entities.MemberLedger, error) {
	ledger, err := s.ledgerRepo.ApplyDelta(ctx, memberID, entities.MessageDelta(at))
	if err != nil {
		return nil, fmt.Errorf("failed to record message: %w", err)
	}
	return ledger, nil
}

func (s *ledgerService) AwardVoiceActivity(ctx context.Context, memberID int64, at time.Time) (*entities.MemberLedger, error) {
	ledger, err := s.ledgerRepo.ApplyDelta(ctx, memberID, entities.VoiceTickDelta(at))
	if err != nil {
		return nil, fmt.Errorf("failed to award voice activity: %w", err)
	}
	return ledger, nil
}

func (s *ledgerService) GetLedger(ctx context.Context, memberID int64) (*entities.MemberLedger, error) {
	ledger, err := s.ledgerRepo.GetOrCreate(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	return ledger, nil
}

// AdjustCurrency applies a signed change. A negative change larger than the
// balance empties it; the published change is what was actually applied.
func (s *ledgerService) AdjustCurrency(ctx context.Context, memberID int64, amount int64, txType entities.TransactionType) (*entities.MemberLedger, error) {
	if amount == 0 {
		return nil, interfaces.ErrInvalidAmount
	}

	before, err := s.ledgerRepo.GetOrCreate(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}

	after, err := s.ledgerRepo.ApplyDelta(ctx, memberID, entities.CurrencyDelta(amount))
	if err != nil {
		return nil, fmt.Errorf("failed to adjust currency: %w", err)
	}

	if err := s.publishBalanceChange(after, after.GamblingPoints-before.GamblingPoints, txType); err != nil {
		return nil, err
	}
	return after, nil
}

func (s *ledgerService) SpendCurrency(ctx context.Context, memberID int64, amount int64, txType entities.TransactionType) (*entities.MemberLedger, error) {
	if amount <= 0 {
		return nil, interfaces.ErrInvalidAmount
	}

	after, err := s.ledgerRepo.DeductCurrency(ctx, memberID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to spend currency: %w", err)
	}

	if err := s.publishBalanceChange(after, -amount, txType); err != nil {
		return nil, err
	}
	return after, nil
}

func (s *ledgerService) publishBalanceChange(ledger *entities.MemberLedger, change int64, txType entities.TransactionType) error {
	if change == 0 {
		return nil
	}
	if err := s.eventPublisher.Publish(events.BalanceChangeEvent{
		GuildID:         ledger.GuildID,
		MemberID:        ledger.MemberID,
		ChangeAmount:    change,
		NewBalance:      ledger.GamblingPoints,
		TransactionType: txType,
	}); err != nil {
		return fmt.Errorf("failed to publish balance change event: %w", err)
	}
	return nil
}

func (s *ledgerService) Leaderboard(ctx context.Context, metric entities.LeaderboardMetric, limit int) ([]*entities.LeaderboardEntry, error) {
	if _, err := metric.Column(); err != nil {
		return nil, err
	}

	entries, err := s.ledgerRepo.Leaderboard(ctx, metric, entities.NormalizeLeaderboardLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return entries, nil
}

// ResetMonthly marks the period and zeroes monthly activity in the same
// transaction. Returns false when the period was already reset.
func (s *ledgerService) ResetMonthly(ctx context.Context, guildID int64, period string, at time.Time) (bool, error) {
	marked, err := s.resetRepo.TryMarkPeriod(ctx, period, at)
	if err != nil {
		return false, fmt.Errorf("failed to mark reset period: %w", err)
	}
	if !marked {
		return false, nil
	}

	reset, err := s.ledgerRepo.ResetMonthly(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to reset monthly activity: %w", err)
	}

	if err := s.eventPublisher.Publish(events.MonthlyResetEvent{
		GuildID:      guildID,
		Period:       period,
		MembersReset: reset,
	}); err != nil {
		return false, fmt.Errorf("failed to publish monthly reset event: %w", err)
	}

	return true, nil
}

func (s *ledgerService) ListGuildIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.ledgerRepo.ListGuildIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger guilds: %w", err)
	}
	return ids, nil
}
