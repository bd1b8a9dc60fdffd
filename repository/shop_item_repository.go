package repository

import (
	"context"
	"errors"
	"fmt"

	"guildkeeper/domain/entities"
	"guildkeeper/domain/interfaces"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// ShopItemRepository implements the ShopItemRepository interface
type ShopItemRepository struct {
	q       Queryable
	guildID int64
}

// NewShopItemRepositoryScoped creates a shop repository bound to one guild
func NewShopItemRepositoryScoped(q Queryable, guildID int64) *ShopItemRepository {
	return &ShopItemRepository{
		q:       q,
		guildID: guildID,
	}
}

// Create lists a role for sale
func (r *ShopItemRepository) Create(ctx context.Context, roleID int64, price int64) (*entities.ShopItem, error) {
	query := `
		INSERT INTO shop_items (guild_id, role_id, price)
		VALUES ($1, $2, $3)
		RETURNING id, guild_id, role_id, price, created_at
	`

	var item entities.ShopItem
	err := r.q.QueryRow(ctx, query, r.guildID, roleID, price).Scan(
		&item.ID,
		&item.GuildID,
		&item.RoleID,
		&item.Price,
		&item.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, interfaces.ErrDuplicateShopItem
		}
		return nil, fmt.Errorf("failed to create shop item for role %d in guild %d: %w", roleID, r.guildID, err)
	}

	return &item, nil
}

// GetByID retrieves an item of the current guild
func (r *ShopItemRepository) GetByID(ctx context.Context, id int64) (*entities.ShopItem, error) {
	query := `
		SELECT id, guild_id, role_id, price, created_at
		FROM shop_items
		WHERE id = $1 AND guild_id = $2
	`

	var item entities.ShopItem
	err := r.q.QueryRow(ctx, query, id, r.guildID).Scan(
		&item.ID,
		&item.GuildID,
		&item.RoleID,
		&item.Price,
		&item.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop item %d in guild %d: %w", id, r.guildID, err)
	}

	return &item, nil
}

// List returns the guild's items, cheapest first
func (r *ShopItemRepository) List(ctx context.Context) ([]*entities.ShopItem, error) {
	query := `
		SELECT id, guild_id, role_id, price, created_at
		FROM shop_items
		WHERE guild_id = $1
		ORDER BY price ASC, id ASC
	`

	rows, err := r.q.Query(ctx, query, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shop items for guild %d: %w", r.guildID, err)
	}
	defer rows.Close()

	var items []*entities.ShopItem
	for rows.Next() {
		var item entities.ShopItem
		if err := rows.Scan(&item.ID, &item.GuildID, &item.RoleID, &item.Price, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shop item: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// Delete removes an item of the current guild
func (r *ShopItemRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM shop_items WHERE id = $1 AND guild_id = $2`, id, r.guildID)
	if err != nil {
		return false, fmt.Errorf("failed to delete shop item %d in guild %d: %w", id, r.guildID, err)
	}
	return result.RowsAffected() > 0, nil
}
