package entities

import (
	"fmt"
	"strings"
)

const (
	DefaultCurrencyName    = "Punkty"
	DefaultBetWinChance    = 45
	DefaultWarnLimit       = 3
	DefaultWarnAction      = EnforcementKick
	DefaultBanDurationDays = 7

	MinBetWinChance      = 1
	MaxBetWinChance      = 99
	MaxCurrencyNameRunes = 32
)

// GuildSettings represents per-guild configuration
type GuildSettings struct {
	GuildID           int64             `db:"guild_id"`
	CurrencyName      string            `db:"currency_name"`
	BetWinChance      int               `db:"bet_win_chance"` // Percent chance that a bet wins
	WarnLimit         int               `db:"warn_limit"`
	WarnAction        EnforcementAction `db:"warn_action"`
	BanDurationDays   int               `db:"ban_duration_days"`
	AuditLogChannelID *int64            `db:"audit_log_channel_id"` // Nullable - audit log disabled when nil
}

// NewDefaultGuildSettings returns settings populated with defaults
func NewDefaultGuildSettings(guildID int64) *GuildSettings {
	return &GuildSettings{
		GuildID:         guildID,
		CurrencyName:    DefaultCurrencyName,
		BetWinChance:    DefaultBetWinChance,
		WarnLimit:       DefaultWarnLimit,
		WarnAction:      DefaultWarnAction,
		BanDurationDays: DefaultBanDurationDays,
	}
}

// HasAuditLogChannel checks if an audit log channel is configured
func (gs *GuildSettings) HasAuditLogChannel() bool {
	return gs.AuditLogChannelID != nil && *gs.AuditLogChannelID > 0
}

// SetBetWinChance validates and sets the bet win chance
func (gs *GuildSettings) SetBetWinChance(chance int) error {
	if chance < MinBetWinChance || chance > MaxBetWinChance {
		return fmt.Errorf("win chance must be between %d and %d", MinBetWinChance, MaxBetWinChance)
	}
	gs.BetWinChance = chance
	return nil
}

// SetWarnLimit validates and sets the warning threshold
func (gs *GuildSettings) SetWarnLimit(limit int) error {
	if limit < 1 {
		return fmt.Errorf("warn limit must be at least 1")
	}
	gs.WarnLimit = limit
	return nil
}

// SetWarnAction validates and sets the action taken at the warning threshold
func (gs *GuildSettings) SetWarnAction(action EnforcementAction) error {
	if !action.IsValid() {
		return fmt.Errorf("warn action must be kick or ban")
	}
	gs.WarnAction = action
	return nil
}

// SetBanDurationDays validates and sets the timed ban length
func (gs *GuildSettings) SetBanDurationDays(days int) error {
	if days < 1 {
		return fmt.Errorf("ban duration must be at least 1 day")
	}
	gs.BanDurationDays = days
	return nil
}

// SetCurrencyName validates and sets the display name of the currency
func (gs *GuildSettings) SetCurrencyName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("currency name cannot be empty")
	}
	if len([]rune(name)) > MaxCurrencyNameRunes {
		return fmt.Errorf("currency name cannot exceed %d characters", MaxCurrencyNameRunes)
	}
	gs.CurrencyName = name
	return nil
}

// SetAuditLogChannel sets the audit log channel; nil disables it
func (gs *GuildSettings) SetAuditLogChannel(channelID *int64) {
	gs.AuditLogChannelID = channelID
}
