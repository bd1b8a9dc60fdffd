package interfaces

import (
	"context"
	"time"

	"guildkeeper/domain/entities"
)

// LedgerService is the single entry point for ledger mutations
type LedgerService interface {
	// RecordMessage credits one chat message
	RecordMessage(ctx context.Context, memberID int64, at time.Time) (*entities.MemberLedger, error)

	// AwardVoiceActivity credits one qualifying voice scan
	AwardVoiceActivity(ctx context.Context, memberID int64, at time.Time) (*entities.MemberLedger, error)

	// GetLedger returns the member's ledger, zeroed if the member has no activity
	GetLedger(ctx context.Context, memberID int64) (*entities.MemberLedger, error)

	// AdjustCurrency applies a signed change; the balance never drops below zero
	AdjustCurrency(ctx context.Context, memberID int64, amount int64, txType entities.TransactionType) (*entities.MemberLedger, error)

	// SpendCurrency removes amount or fails with ErrInsufficientBalance
	SpendCurrency(ctx context.Context, memberID int64, amount int64, txType entities.TransactionType) (*entities.MemberLedger, error)

	Leaderboard(ctx context.Context, metric entities.LeaderboardMetric, limit int) ([]*entities.LeaderboardEntry, error)

	// ResetMonthly zeroes monthly activity unless the period was already reset
	ResetMonthly(ctx context.Context, guildID int64, period string, at time.Time) (bool, error)

	ListGuildIDs(ctx context.Context) ([]int64, error)
}

// VoiceTracker maintains voice presence sessions
type VoiceTracker interface {
	HandleVoiceStateChange(ctx context.Context, guildID, memberID int64, prevChannelID, newChannelID string, at time.Time) (entities.VoiceTransition, error)

	// ClearActiveSessions drops every open session across all guilds
	ClearActiveSessions(ctx context.Context) (int64, error)

	// ResyncMembers opens sessions for members found in voice after a restart
	ResyncMembers(ctx context.Context, memberIDs []int64, startedAt time.Time) (int, error)
}

// EconomyService defines bets, role shop and manual currency adjustments
type EconomyService interface {
	PlaceBet(ctx context.Context, guildID, memberID int64, amount int64) (*entities.BetResult, error)

	GetShopItem(ctx context.Context, itemID int64) (*entities.ShopItem, error)
	ListShopItems(ctx context.Context) ([]*entities.ShopItem, error)
	AddShopItem(ctx context.Context, roleID int64, price int64) (*entities.ShopItem, error)
	RemoveShopItem(ctx context.Context, itemID int64) error

	// ChargeForItem deducts the item price; the role grant happens outside the transaction
	ChargeForItem(ctx context.Context, memberID int64, item *entities.ShopItem) (*entities.MemberLedger, error)

	// RefundItem returns the item price after a failed role grant
	RefundItem(ctx context.Context, memberID int64, item *entities.ShopItem) (*entities.MemberLedger, error)

	GrantCurrency(ctx context.Context, memberID int64, amount int64) (*entities.MemberLedger, error)
	TakeCurrency(ctx context.Context, memberID int64, amount int64) (*entities.MemberLedger, error)
}

// EnforcementService records warnings and timed bans
type EnforcementService interface {
	// IssueWarning records a warning and decides whether the limit was reached
	IssueWarning(ctx context.Context, guildID, memberID, moderatorID int64, reason string, now time.Time) (*entities.WarnOutcome, error)

	// RecordEnforcement persists an applied enforcement (ActiveBan for timed bans)
	RecordEnforcement(ctx context.Context, decision *entities.EnforcementDecision) error

	RemoveWarning(ctx context.Context, warningID int64) error
	ListWarnings(ctx context.Context, memberID int64) ([]*entities.Warning, error)
	WarningSummary(ctx context.Context) ([]*entities.WarningCount, error)

	ListExpiredBans(ctx context.Context, now time.Time) ([]*entities.ActiveBan, error)

	// LiftBan deletes an expired ban record
	LiftBan(ctx context.Context, ban *entities.ActiveBan, outcome entities.BanLiftOutcome) error
}

// GuildSettingsService defines guild settings operations
type GuildSettingsService interface {
	GetOrCreateSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error)
	UpdateBetWinChance(ctx context.Context, guildID int64, chance int) (*entities.GuildSettings, error)
	UpdateWarnLimit(ctx context.Context, guildID int64, limit int) (*entities.GuildSettings, error)
	UpdateWarnAction(ctx context.Context, guildID int64, action entities.EnforcementAction) (*entities.GuildSettings, error)
	UpdateBanDuration(ctx context.Context, guildID int64, days int) (*entities.GuildSettings, error)
	UpdateCurrencyName(ctx context.Context, guildID int64, name string) (*entities.GuildSettings, error)
	UpdateAuditLogChannel(ctx context.Context, guildID int64, channelID *int64) (*entities.GuildSettings, error)
}

// DiceRoller draws the outcome of a bet
type DiceRoller interface {
	// Roll returns a uniform integer in [1, 100]
	Roll() int
}
