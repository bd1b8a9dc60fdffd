package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guildkeeper/domain/entities"

	"github.com/jackc/pgx/v5"
)

// ActiveBanRepository implements the ActiveBanRepository interface
type ActiveBanRepository struct {
	q       Queryable
	guildID int64
}

// NewActiveBanRepositoryScoped creates an active ban repository bound to one guild
func NewActiveBanRepositoryScoped(q Queryable, guildID int64) *ActiveBanRepository {
	return &ActiveBanRepository{
		q:       q,
		guildID: guildID,
	}
}

// Upsert records a timed ban; a repeated ban moves the expiry
func (r *ActiveBanRepository) Upsert(ctx context.Context, ban *entities.ActiveBan) error {
	query := `
		INSERT INTO active_bans (guild_id, member_id, unban_at, reason)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guild_id, member_id) DO UPDATE SET
			unban_at = EXCLUDED.unban_at,
			reason = EXCLUDED.reason
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, r.guildID, ban.MemberID, ban.UnbanAt, ban.Reason).Scan(&ban.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert active ban for member %d in guild %d: %w", ban.MemberID, r.guildID, err)
	}

	ban.GuildID = r.guildID
	return nil
}

func (r *ActiveBanRepository) GetByMember(ctx context.Context, memberID int64) (*entities.ActiveBan, error) {
	query := `
		SELECT guild_id, member_id, unban_at, reason, created_at
		FROM active_bans
		WHERE guild_id = $1 AND member_id = $2
	`

	var ban entities.ActiveBan
	err := r.q.QueryRow(ctx, query, r.guildID, memberID).Scan(
		&ban.GuildID,
		&ban.MemberID,
		&ban.UnbanAt,
		&ban.Reason,
		&ban.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active ban for member %d in guild %d: %w", memberID, r.guildID, err)
	}
	return &ban, nil
}

// ListExpired returns due bans of every guild, oldest expiry first
func (r *ActiveBanRepository) ListExpired(ctx context.Context, now time.Time) ([]*entities.ActiveBan, error) {
	query := `
		SELECT guild_id, member_id, unban_at, reason, created_at
		FROM active_bans
		WHERE unban_at <= $1
		ORDER BY unban_at ASC, guild_id ASC, member_id ASC
	`

	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired bans: %w", err)
	}
	defer rows.Close()

	var bans []*entities.ActiveBan
	for rows.Next() {
		var ban entities.ActiveBan
		if err := rows.Scan(&ban.GuildID, &ban.MemberID, &ban.UnbanAt, &ban.Reason, &ban.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan active ban: %w", err)
		}
		bans = append(bans, &ban)
	}
	return bans, rows.Err()
}

func (r *ActiveBanRepository) Delete(ctx context.Context, memberID int64) (bool, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM active_bans WHERE guild_id = $1 AND member_id = $2`, r.guildID, memberID)
	if err != nil {
		return false, fmt.Errorf("failed to delete active ban for member %d in guild %d: %w", memberID, r.guildID, err)
	}
	return result.RowsAffected() > 0, nil
}
