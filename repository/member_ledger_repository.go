package repository

import (
	"context"
	"errors"
	"fmt"

	"guildkeeper/domain/entities"
	"guildkeeper/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const memberLedgerColumns = `
	guild_id, member_id, activity_points, monthly_activity_points, gambling_points,
	message_count, voice_seconds, last_activity_at, created_at, updated_at`

// MemberLedgerRepository implements the MemberLedgerRepository interface
type MemberLedgerRepository struct {
	q       Queryable
	guildID int64
}

// NewMemberLedgerRepositoryScoped creates a ledger repository bound to one guild
func NewMemberLedgerRepositoryScoped(q Queryable, guildID int64) *MemberLedgerRepository {
	return &MemberLedgerRepository{
		q:       q,
		guildID: guildID,
	}
}

func scanMemberLedger(row pgx.Row) (*entities.MemberLedger, error) {
	var l entities.MemberLedger
	err := row.Scan(
		&l.GuildID,
		&l.MemberID,
		&l.ActivityPoints,
		&l.MonthlyActivityPoints,
		&l.GamblingPoints,
		&l.MessageCount,
		&l.VoiceSeconds,
		&l.LastActivityAt,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetOrCreate returns the member's ledger, inserting a zeroed row first if needed
func (r *MemberLedgerRepository) GetOrCreate(ctx context.Context, memberID int64) (*entities.MemberLedger, error) {
	insert := `
		INSERT INTO member_ledgers (guild_id, member_id)
		VALUES ($1, $2)
		ON CONFLICT (guild_id, member_id) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, insert, r.guildID, memberID); err != nil {
		return nil, fmt.Errorf("failed to create ledger for member %d in guild %d: %w", memberID, r.guildID, err)
	}

	query := `SELECT ` + memberLedgerColumns + ` FROM member_ledgers WHERE guild_id = $1 AND member_id = $2`
	ledger, err := scanMemberLedger(r.q.QueryRow(ctx, query, r.guildID, memberID))
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger for member %d in guild %d: %w", memberID, r.guildID, err)
	}
	return ledger, nil
}

// ApplyDelta upserts the row and applies every counter change in one statement
func (r *MemberLedgerRepository) ApplyDelta(ctx context.Context, memberID int64, delta entities.LedgerDelta) (*entities.MemberLedger, error) {
	query := `
		INSERT INTO member_ledgers (
			guild_id, member_id, activity_points, monthly_activity_points, gambling_points,
			message_count, voice_seconds, last_activity_at
		)
		VALUES ($1, $2, GREATEST($3::bigint, 0), GREATEST($4::bigint, 0), GREATEST($5::bigint, 0),
			GREATEST($6::bigint, 0), GREATEST($7::bigint, 0), $8::timestamptz)
		ON CONFLICT (guild_id, member_id) DO UPDATE SET
			activity_points = GREATEST(member_ledgers.activity_points + $3, 0),
			monthly_activity_points = GREATEST(member_ledgers.monthly_activity_points + $4, 0),
			gambling_points = GREATEST(member_ledgers.gambling_points + $5, 0),
			message_count = GREATEST(member_ledgers.message_count + $6, 0),
			voice_seconds = GREATEST(member_ledgers.voice_seconds + $7, 0),
			last_activity_at = COALESCE($8::timestamptz, member_ledgers.last_activity_at),
			updated_at = NOW()
		RETURNING ` + memberLedgerColumns

	ledger, err := scanMemberLedger(r.q.QueryRow(ctx, query,
		r.guildID,
		memberID,
		delta.Activity,
		delta.Monthly,
		delta.Currency,
		delta.Messages,
		delta.VoiceSeconds,
		delta.TouchedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to apply ledger delta for member %d in guild %d: %w", memberID, r.guildID, err)
	}
	return ledger, nil
}

// DeductCurrency subtracts amount only when the balance covers it
func (r *MemberLedgerRepository) DeductCurrency(ctx context.Context, memberID int64, amount int64) (*entities.MemberLedger, error) {
	query := `
		UPDATE member_ledgers
		SET gambling_points = gambling_points - $3,
		    updated_at = NOW()
		WHERE guild_id = $1 AND member_id = $2 AND gambling_points >= $3
		RETURNING ` + memberLedgerColumns

	ledger, err := scanMemberLedger(r.q.QueryRow(ctx, query, r.guildID, memberID, amount))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, interfaces.ErrInsufficientBalance
	}
	if err != nil {
		return nil, fmt.Errorf("failed to deduct currency for member %d in guild %d: %w", memberID, r.guildID, err)
	}
	return ledger, nil
}

// Leaderboard ranks members with a non-zero value for the metric
func (r *MemberLedgerRepository) Leaderboard(ctx context.Context, metric entities.LeaderboardMetric, limit int) ([]*entities.LeaderboardEntry, error) {
	column, err := metric.Column()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT member_id, %[1]s
		FROM member_ledgers
		WHERE guild_id = $1 AND %[1]s > 0
		ORDER BY %[1]s DESC, member_id ASC
		LIMIT $2
	`, column)

	rows, err := r.q.Query(ctx, query, r.guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s leaderboard for guild %d: %w", metric, r.guildID, err)
	}
	defer rows.Close()

	var entries []*entities.LeaderboardEntry
	for rows.Next() {
		entry := &entities.LeaderboardEntry{Rank: len(entries) + 1}
		if err := rows.Scan(&entry.MemberID, &entry.Value); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ResetMonthly zeroes monthly activity and returns how many members changed
func (r *MemberLedgerRepository) ResetMonthly(ctx context.Context) (int64, error) {
	query := `
		UPDATE member_ledgers
		SET monthly_activity_points = 0,
		    updated_at = NOW()
		WHERE guild_id = $1 AND monthly_activity_points <> 0
	`
	result, err := r.q.Exec(ctx, query, r.guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to reset monthly activity for guild %d: %w", r.guildID, err)
	}
	return result.RowsAffected(), nil
}

// ListGuildIDs returns every guild with ledger or settings rows
func (r *MemberLedgerRepository) ListGuildIDs(ctx context.Context) ([]int64, error) {
	query := `
		SELECT guild_id FROM member_ledgers
		UNION
		SELECT guild_id FROM guild_settings
		ORDER BY guild_id
	`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list guild ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan guild id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
