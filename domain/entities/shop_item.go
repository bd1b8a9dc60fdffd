package entities

import "time"

// ShopItem is a role that members can buy with currency
type ShopItem struct {
	ID        int64     `db:"id"`
	GuildID   int64     `db:"guild_id"`
	RoleID    int64     `db:"role_id"`
	Price     int64     `db:"price"`
	CreatedAt time.Time `db:"created_at"`
}

// PurchaseResult summarises a completed purchase
type PurchaseResult struct {
	Item       *ShopItem
	NewBalance int64
}
