package repository

import (
	"context"
	"fmt"
	"time"
)

// MonthlyResetRepository implements the MonthlyResetRepository interface
type MonthlyResetRepository struct {
	q       Queryable
	guildID int64
}

// NewMonthlyResetRepositoryScoped creates a monthly reset repository bound to one guild
func NewMonthlyResetRepositoryScoped(q Queryable, guildID int64) *MonthlyResetRepository {
	return &MonthlyResetRepository{
		q:       q,
		guildID: guildID,
	}
}

// TryMarkPeriod returns true only for the first caller of a period
func (r *MonthlyResetRepository) TryMarkPeriod(ctx context.Context, period string, at time.Time) (bool, error) {
	query := `
		INSERT INTO monthly_resets (guild_id, period, reset_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, period) DO NOTHING
	`
	result, err := r.q.Exec(ctx, query, r.guildID, period, at)
	if err != nil {
		return false, fmt.Errorf("failed to mark monthly reset %s for guild %d: %w", period, r.guildID, err)
	}
	return result.RowsAffected() == 1, nil
}
