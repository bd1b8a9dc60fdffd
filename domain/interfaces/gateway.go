package interfaces

import (
	"context"

	"guildkeeper/domain/entities"
)

// EntitlementGranter checks and grants purchasable roles
type EntitlementGranter interface {
	HasEntitlement(ctx context.Context, guildID, memberID, roleID int64) (bool, error)
	GrantEntitlement(ctx context.Context, guildID, memberID, roleID int64) error
}

// EnforcementActuator carries out moderation actions on the platform.
// Implementations return ErrTargetNotFound when the member or ban is gone
// and ErrActuatorForbidden when the bot lacks permission.
type EnforcementActuator interface {
	// NotifyMember sends a direct message; callers treat failures as best effort
	NotifyMember(ctx context.Context, guildID, memberID int64, message string) error
	Kick(ctx context.Context, guildID, memberID int64, reason string) error
	Ban(ctx context.Context, guildID, memberID int64, reason string) error
	Unban(ctx context.Context, guildID, memberID int64) error
}

// PresenceSource reports who is currently sitting in voice
type PresenceSource interface {
	VoiceChannels(ctx context.Context, guildID int64) ([]*entities.VoiceChannelPresence, error)
}
