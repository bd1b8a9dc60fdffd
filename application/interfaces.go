package application

import (
	"context"
)

// GuildDiscoveryService lists the guilds the bot is currently connected to
type GuildDiscoveryService interface {
	ConnectedGuildIDs(ctx context.Context) ([]int64, error)
}
