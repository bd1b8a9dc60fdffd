package testhelpers

import (
	"context"
	"time"

	"guildkeeper/domain/entities"
	"guildkeeper/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockMemberLedgerRepository is a mock implementation of MemberLedgerRepository
type MockMemberLedgerRepository struct {
	mock.Mock
}

func (m *MockMemberLedgerRepository) GetOrCreate(ctx context.Context, memberID int64) (*entities.MemberLedger, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MemberLedger), args.Error(1)
}

func (m *MockMemberLedgerRepository) ApplyDelta(ctx context.Context, memberID int64, delta entities.LedgerDelta) (*entities.MemberLedger, error) {
	args := m.Called(ctx, memberID, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MemberLedger), args.Error(1)
}

func (m *MockMemberLedgerRepository) DeductCurrency(ctx context.Context, memberID int64, amount int64) (*entities.MemberLedger, error) {
	args := m.Called(ctx, memberID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MemberLedger), args.Error(1)
}

func (m *MockMemberLedgerRepository) Leaderboard(ctx context.Context, metric entities.LeaderboardMetric, limit int) ([]*entities.LeaderboardEntry, error) {
	args := m.Called(ctx, metric, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LeaderboardEntry), args.Error(1)
}

func (m *MockMemberLedgerRepository) ResetMonthly(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMemberLedgerRepository) ListGuildIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockGuildSettingsRepository is a mock implementation of GuildSettingsRepository
type MockGuildSettingsRepository struct {
	mock.Mock
}

func (m *MockGuildSettingsRepository) GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsRepository) UpdateGuildSettings(ctx context.Context, settings *entities.GuildSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockShopItemRepository is a mock implementation of ShopItemRepository
type MockShopItemRepository struct {
	mock.Mock
}

func (m *MockShopItemRepository) Create(ctx context.Context, roleID int64, price int64) (*entities.ShopItem, error) {
	args := m.Called(ctx, roleID, price)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ShopItem), args.Error(1)
}

func (m *MockShopItemRepository) GetByID(ctx context.Context, id int64) (*entities.ShopItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ShopItem), args.Error(1)
}

func (m *MockShopItemRepository) List(ctx context.Context) ([]*entities.ShopItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ShopItem), args.Error(1)
}

func (m *MockShopItemRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockWarningRepository is a mock implementation of WarningRepository
type MockWarningRepository struct {
	mock.Mock
}

func (m *MockWarningRepository) Create(ctx context.Context, warning *entities.Warning) error {
	args := m.Called(ctx, warning)
	return args.Error(0)
}

func (m *MockWarningRepository) CountByMember(ctx context.Context, memberID int64) (int, error) {
	args := m.Called(ctx, memberID)
	return args.Int(0), args.Error(1)
}

func (m *MockWarningRepository) ListByMember(ctx context.Context, memberID int64) ([]*entities.Warning, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Warning), args.Error(1)
}

func (m *MockWarningRepository) Summary(ctx context.Context) ([]*entities.WarningCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.WarningCount), args.Error(1)
}

func (m *MockWarningRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockActiveBanRepository is a mock implementation of ActiveBanRepository
type MockActiveBanRepository struct {
	mock.Mock
}

func (m *MockActiveBanRepository) Upsert(ctx context.Context, ban *entities.ActiveBan) error {
	args := m.Called(ctx, ban)
	return args.Error(0)
}

func (m *MockActiveBanRepository) GetByMember(ctx context.Context, memberID int64) (*entities.ActiveBan, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ActiveBan), args.Error(1)
}

func (m *MockActiveBanRepository) ListExpired(ctx context.Context, now time.Time) ([]*entities.ActiveBan, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ActiveBan), args.Error(1)
}

func (m *MockActiveBanRepository) Delete(ctx context.Context, memberID int64) (bool, error) {
	args := m.Called(ctx, memberID)
	return args.Bool(0), args.Error(1)
}

// MockVoiceSessionRepository is a mock implementation of VoiceSessionRepository
type MockVoiceSessionRepository struct {
	mock.Mock
}

func (m *MockVoiceSessionRepository) StartSession(ctx context.Context, memberID int64, startedAt time.Time) (bool, error) {
	args := m.Called(ctx, memberID, startedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockVoiceSessionRepository) GetActive(ctx context.Context, memberID int64) (*entities.ActiveVoiceSession, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ActiveVoiceSession), args.Error(1)
}

func (m *MockVoiceSessionRepository) EndSession(ctx context.Context, memberID int64, endedAt time.Time) (*entities.VoiceSession, error) {
	args := m.Called(ctx, memberID, endedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VoiceSession), args.Error(1)
}

func (m *MockVoiceSessionRepository) ClearAllActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockMonthlyResetRepository is a mock implementation of MonthlyResetRepository
type MockMonthlyResetRepository struct {
	mock.Mock
}

func (m *MockMonthlyResetRepository) TryMarkPeriod(ctx context.Context, period string, at time.Time) (bool, error) {
	args := m.Called(ctx, period, at)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
