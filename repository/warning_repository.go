package repository

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/domain/entities"
)

// WarningRepository implements the WarningRepository interface
type WarningRepository struct {
	q       Queryable
	guildID int64
}

// NewWarningRepositoryScoped creates a warning repository bound to one guild
func NewWarningRepositoryScoped(q Queryable, guildID int64) *WarningRepository {
	return &WarningRepository{
		q:       q,
		guildID: guildID,
	}
}

// Create appends a warning and fills in its ID
func (r *WarningRepository) Create(ctx context.Context, warning *entities.Warning) error {
	query := `
		INSERT INTO warnings (guild_id, member_id, moderator_id, reason, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5::timestamptz, NOW()))
		RETURNING id, created_at
	`

	var createdAt *time.Time
	if !warning.CreatedAt.IsZero() {
		createdAt = &warning.CreatedAt
	}

	err := r.q.QueryRow(ctx, query,
		r.guildID,
		warning.MemberID,
		warning.ModeratorID,
		warning.Reason,
		createdAt,
	).Scan(&warning.ID, &warning.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create warning for member %d in guild %d: %w", warning.MemberID, r.guildID, err)
	}

	warning.GuildID = r.guildID
	return nil
}

func (r *WarningRepository) CountByMember(ctx context.Context, memberID int64) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM warnings WHERE guild_id = $1 AND member_id = $2`,
		r.guildID, memberID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count warnings for member %d in guild %d: %w", memberID, r.guildID, err)
	}
	return count, nil
}

// ListByMember returns the member's warnings, oldest first
func (r *WarningRepository) ListByMember(ctx context.Context, memberID int64) ([]*entities.Warning, error) {
	query := `
		SELECT id, guild_id, member_id, moderator_id, reason, created_at
		FROM warnings
		WHERE guild_id = $1 AND member_id = $2
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.q.Query(ctx, query, r.guildID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list warnings for member %d in guild %d: %w", memberID, r.guildID, err)
	}
	defer rows.Close()

	var warnings []*entities.Warning
	for rows.Next() {
		var w entities.Warning
		if err := rows.Scan(&w.ID, &w.GuildID, &w.MemberID, &w.ModeratorID, &w.Reason, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan warning: %w", err)
		}
		warnings = append(warnings, &w)
	}
	return warnings, rows.Err()
}

// Summary returns per-member counts, most warned first
func (r *WarningRepository) Summary(ctx context.Context) ([]*entities.WarningCount, error) {
	query := `
		SELECT member_id, COUNT(*)
		FROM warnings
		WHERE guild_id = $1
		GROUP BY member_id
		ORDER BY COUNT(*) DESC, member_id ASC
	`

	rows, err := r.q.Query(ctx, query, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize warnings for guild %d: %w", r.guildID, err)
	}
	defer rows.Close()

	var summary []*entities.WarningCount
	for rows.Next() {
		var c entities.WarningCount
		if err := rows.Scan(&c.MemberID, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan warning count: %w", err)
		}
		summary = append(summary, &c)
	}
	return summary, rows.Err()
}

// Delete removes a warning only if it belongs to the current guild
func (r *WarningRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM warnings WHERE id = $1 AND guild_id = $2`, id, r.guildID)
	if err != nil {
		return false, fmt.Errorf("failed to delete warning %d in guild %d: %w", id, r.guildID, err)
	}
	return result.RowsAffected() > 0, nil
}
