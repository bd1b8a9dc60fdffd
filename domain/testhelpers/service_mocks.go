package testhelpers

import (
	"context"
	"time"

	"guildkeeper/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockLedgerService is a mock implementation of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) RecordMessage(ctx context.Context, memberID int64, at time.Time) (*entities.MemberLedger, error) {
	args := m.Called(ctx, memberID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MemberLedger), args.Error(1)
}

func (m *MockLedgerService) AwardVoiceActivity(ctx context.Context, memberID int64, at time.Time) (*entities.MemberLedger, error) {
	args := m.Called(ctx, memberID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MemberLedger), args.Error(1)
}

func (m *MockLedgerService) GetLedger(ctx context.Context, memberID int64) (*entities.MemberLedger, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MemberLedger), args.Error(1)
}

func (m *MockLedgerService) AdjustCurrency(ctx context.Context, memberID int64, amount int64, txType entities.TransactionType) (*entities.MemberLedger, error) {
	args := m.Called(ctx, memberID, amount, txType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MemberLedger), args.Error(1)
}

func (m *MockLedgerService) SpendCurrency(ctx context.Context, memberID int64, amount int64, txType entities.TransactionType) (*entities.MemberLedger, error) {
	args := m.Called(ctx, memberID, amount, txType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MemberLedger), args.Error(1)
}

func (m *MockLedgerService) Leaderboard(ctx context.Context, metric entities.LeaderboardMetric, limit int) ([]*entities.LeaderboardEntry, error) {
	args := m.Called(ctx, metric, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LeaderboardEntry), args.Error(1)
}

func (m *MockLedgerService) ResetMonthly(ctx context.Context, guildID int64, period string, at time.Time) (bool, error) {
	args := m.Called(ctx, guildID, period, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerService) ListGuildIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// FixedRoller always returns the same roll
type FixedRoller int

func (r FixedRoller) Roll() int {
	return int(r)
}
