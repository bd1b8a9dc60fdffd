package interfaces

import (
	"context"
	"time"

	"guildkeeper/domain/entities"
	"guildkeeper/domain/events"
)

// MemberLedgerRepository defines data access for member ledgers.
// Implementations are scoped to a single guild.
type MemberLedgerRepository interface {
	// GetOrCreate returns the member's ledger, creating a zeroed row if absent
	GetOrCreate(ctx context.Context, memberID int64) (*entities.MemberLedger, error)

	// ApplyDelta adds the delta in a single statement, creating the row if absent.
	// The resulting currency balance is clamped at zero.
	ApplyDelta(ctx context.Context, memberID int64, delta entities.LedgerDelta) (*entities.MemberLedger, error)

	// DeductCurrency subtracts amount only if the balance covers it.
	// Returns ErrInsufficientBalance otherwise.
	DeductCurrency(ctx context.Context, memberID int64, amount int64) (*entities.MemberLedger, error)

	// Leaderboard returns the top members ordered by the metric, ties broken by member id
	Leaderboard(ctx context.Context, metric entities.LeaderboardMetric, limit int) ([]*entities.LeaderboardEntry, error)

	// ResetMonthly zeroes monthly activity for every member of the guild
	ResetMonthly(ctx context.Context) (int64, error)

	// ListGuildIDs returns every guild that has ledger rows (not guild scoped)
	ListGuildIDs(ctx context.Context) ([]int64, error)
}

// GuildSettingsRepository defines data access for guild settings
type GuildSettingsRepository interface {
	GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error)
	UpdateGuildSettings(ctx context.Context, settings *entities.GuildSettings) error
}

// ShopItemRepository defines data access for purchasable roles
type ShopItemRepository interface {
	// Create lists a role; returns ErrDuplicateShopItem if the role is already listed
	Create(ctx context.Context, roleID int64, price int64) (*entities.ShopItem, error)

	// GetByID returns nil when the item does not exist in this guild
	GetByID(ctx context.Context, id int64) (*entities.ShopItem, error)

	List(ctx context.Context) ([]*entities.ShopItem, error)

	// Delete returns false when no item of this guild matched
	Delete(ctx context.Context, id int64) (bool, error)
}

// WarningRepository defines data access for moderation warnings
type WarningRepository interface {
	Create(ctx context.Context, warning *entities.Warning) error
	CountByMember(ctx context.Context, memberID int64) (int, error)
	ListByMember(ctx context.Context, memberID int64) ([]*entities.Warning, error)

	// Summary returns warning counts per member, highest first
	Summary(ctx context.Context) ([]*entities.WarningCount, error)

	// Delete returns false when no warning of this guild matched
	Delete(ctx context.Context, id int64) (bool, error)
}

// ActiveBanRepository defines data access for timed bans
type ActiveBanRepository interface {
	// Upsert records a ban, replacing an existing one for the same member
	Upsert(ctx context.Context, ban *entities.ActiveBan) error
	GetByMember(ctx context.Context, memberID int64) (*entities.ActiveBan, error)

	// ListExpired returns bans due at or before now across all guilds (not guild scoped)
	ListExpired(ctx context.Context, now time.Time) ([]*entities.ActiveBan, error)

	Delete(ctx context.Context, memberID int64) (bool, error)
}

// VoiceSessionRepository defines data access for voice presence
type VoiceSessionRepository interface {
	// StartSession opens a session unless one is already open; returns whether one was created
	StartSession(ctx context.Context, memberID int64, startedAt time.Time) (bool, error)
	GetActive(ctx context.Context, memberID int64) (*entities.ActiveVoiceSession, error)

	// EndSession closes the open session and appends it to history.
	// Returns nil when the member had no open session.
	EndSession(ctx context.Context, memberID int64, endedAt time.Time) (*entities.VoiceSession, error)

	// ClearAllActive removes every open session across all guilds (not guild scoped)
	ClearAllActive(ctx context.Context) (int64, error)
}

// MonthlyResetRepository records which calendar months were reset
type MonthlyResetRepository interface {
	// TryMarkPeriod records the period; returns false if it was already recorded
	TryMarkPeriod(ctx context.Context, period string, at time.Time) (bool, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the surrounding transaction commits
type TransactionalEventPublisher interface {
	EventPublisher
	Flush(ctx context.Context) error
	Discard()
}
