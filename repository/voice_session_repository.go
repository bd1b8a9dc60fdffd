package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guildkeeper/domain/entities"

	"github.com/jackc/pgx/v5"
)

// VoiceSessionRepository implements the VoiceSessionRepository interface
type VoiceSessionRepository struct {
	q       Queryable
	guildID int64
}

// NewVoiceSessionRepositoryScoped creates a voice session repository bound to one guild
func NewVoiceSessionRepositoryScoped(q Queryable, guildID int64) *VoiceSessionRepository {
	return &VoiceSessionRepository{
		q:       q,
		guildID: guildID,
	}
}

// StartSession opens a session; an already open session is left untouched
func (r *VoiceSessionRepository) StartSession(ctx context.Context, memberID int64, startedAt time.Time) (bool, error) {
	query := `
		INSERT INTO active_voice_sessions (guild_id, member_id, started_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, member_id) DO NOTHING
	`
	result, err := r.q.Exec(ctx, query, r.guildID, memberID, startedAt)
	if err != nil {
		return false, fmt.Errorf("failed to start voice session for member %d in guild %d: %w", memberID, r.guildID, err)
	}
	return result.RowsAffected() == 1, nil
}

func (r *VoiceSessionRepository) GetActive(ctx context.Context, memberID int64) (*entities.ActiveVoiceSession, error) {
	query := `
		SELECT guild_id, member_id, started_at
		FROM active_voice_sessions
		WHERE guild_id = $1 AND member_id = $2
	`

	var session entities.ActiveVoiceSession
	err := r.q.QueryRow(ctx, query, r.guildID, memberID).Scan(&session.GuildID, &session.MemberID, &session.StartedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active voice session for member %d in guild %d: %w", memberID, r.guildID, err)
	}
	return &session, nil
}

// EndSession moves the open session into history in a single statement.
// A second leave for the same session finds nothing and returns nil.
func (r *VoiceSessionRepository) EndSession(ctx context.Context, memberID int64, endedAt time.Time) (*entities.VoiceSession, error) {
	query := `
		WITH ended AS (
			DELETE FROM active_voice_sessions
			WHERE guild_id = $1 AND member_id = $2
			RETURNING guild_id, member_id, started_at
		)
		INSERT INTO voice_sessions (guild_id, member_id, started_at, ended_at, duration_seconds)
		SELECT guild_id, member_id, started_at,
		       GREATEST($3::timestamptz, started_at),
		       GREATEST(FLOOR(EXTRACT(EPOCH FROM ($3::timestamptz - started_at)))::bigint, 0)
		FROM ended
		RETURNING id, guild_id, member_id, started_at, ended_at, duration_seconds
	`

	var session entities.VoiceSession
	err := r.q.QueryRow(ctx, query, r.guildID, memberID, endedAt).Scan(
		&session.ID,
		&session.GuildID,
		&session.MemberID,
		&session.StartedAt,
		&session.EndedAt,
		&session.DurationSeconds,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to end voice session for member %d in guild %d: %w", memberID, r.guildID, err)
	}
	return &session, nil
}

// ClearAllActive drops open sessions of every guild
func (r *VoiceSessionRepository) ClearAllActive(ctx context.Context) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM active_voice_sessions`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear active voice sessions: %w", err)
	}
	return result.RowsAffected(), nil
}
