package bot

import (
	"fmt"

	"guildkeeper/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

var (
	adminPermission      int64 = discordgo.PermissionAdministrator
	moderationPermission int64 = discordgo.PermissionKickMembers
	dmPermission               = false
)

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    true,
	}
}

func amountOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "amount",
		Description: description,
		Required:    true,
		MinValue:    floatPtr(1),
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

// applicationCommands lists every slash command the bot serves
func applicationCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:         "balance",
			Description:  "Show your currency balance",
			DMPermission: &dmPermission,
		},
		{
			Name:         "wallet",
			Description:  "Show your activity points, currency and voice time",
			DMPermission: &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to inspect (defaults to you)",
				},
			},
		},
		{
			Name:         "bet",
			Description:  "Bet currency on a single roll",
			DMPermission: &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				amountOption("Amount to bet"),
			},
		},
		{
			Name:         "top",
			Description:  "Show the activity leaderboard",
			DMPermission: &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "ranking",
					Description: "Which ranking to show",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Monthly activity", Value: string(entities.LeaderboardMonthly)},
						{Name: "Lifetime activity", Value: string(entities.LeaderboardLifetime)},
						{Name: "Currency", Value: string(entities.LeaderboardCurrency)},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "limit",
					Description: "Number of members to show",
					MinValue:    floatPtr(1),
					MaxValue:    entities.MaxLeaderboardLimit,
				},
			},
		},
		{
			Name:                     "givepoints",
			Description:              "Give currency to a member",
			DefaultMemberPermissions: &adminPermission,
			DMPermission:             &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				userOption("Member to credit"),
				amountOption("Amount to give"),
			},
		},
		{
			Name:                     "takepoints",
			Description:              "Take currency from a member",
			DefaultMemberPermissions: &adminPermission,
			DMPermission:             &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				userOption("Member to debit"),
				amountOption("Amount to take"),
			},
		},
		{
			Name:         "shop",
			Description:  "Browse and buy roles",
			DMPermission: &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List roles for sale",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "buy",
					Description: "Buy a role from the shop",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "item",
							Description: "Shop item ID",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:                     "shopadmin",
			Description:              "Manage the role shop",
			DefaultMemberPermissions: &adminPermission,
			DMPermission:             &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Put a role up for sale",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "Role to sell",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "price",
							Description: "Price in currency",
							Required:    true,
							MinValue:    floatPtr(0),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove an item from the shop",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "item",
							Description: "Shop item ID",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:                     "warn",
			Description:              "Warn a member",
			DefaultMemberPermissions: &moderationPermission,
			DMPermission:             &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				userOption("Member to warn"),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Reason for the warning",
				},
			},
		},
		{
			Name:                     "warnings",
			Description:              "List warnings for a member, or a summary for the server",
			DefaultMemberPermissions: &moderationPermission,
			DMPermission:             &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to inspect",
				},
			},
		},
		{
			Name:                     "unwarn",
			Description:              "Remove a warning by ID",
			DefaultMemberPermissions: &moderationPermission,
			DMPermission:             &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "id",
					Description: "Warning ID",
					Required:    true,
				},
			},
		},
		{
			Name:                     "warnconfig",
			Description:              "Configure automatic warning enforcement",
			DefaultMemberPermissions: &adminPermission,
			DMPermission:             &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "view",
					Description: "Show the current configuration",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "limit",
					Description: "Warnings before enforcement",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "value",
							Description: "Warning limit",
							Required:    true,
							MinValue:    floatPtr(1),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "action",
					Description: "What happens at the limit",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "value",
							Description: "Enforcement action",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Kick", Value: string(entities.EnforcementKick)},
								{Name: "Ban", Value: string(entities.EnforcementBan)},
							},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "banduration",
					Description: "Length of automatic bans in days",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "days",
							Description: "Ban length in days",
							Required:    true,
							MinValue:    floatPtr(1),
						},
					},
				},
			},
		},
		{
			Name:                     "betconfig",
			Description:              "Configure betting",
			DefaultMemberPermissions: &adminPermission,
			DMPermission:             &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "chance",
					Description: "Percent chance that a bet wins",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "percent",
							Description: "Win chance",
							Required:    true,
							MinValue:    floatPtr(entities.MinBetWinChance),
							MaxValue:    entities.MaxBetWinChance,
						},
					},
				},
			},
		},
		{
			Name:                     "settings",
			Description:              "Configure the server",
			DefaultMemberPermissions: &adminPermission,
			DMPermission:             &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "currency",
					Description: "Rename the currency",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "New currency name",
							Required:    true,
							MaxLength:   entities.MaxCurrencyNameRunes,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "auditlog",
					Description: "Set or clear the audit log channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "channel",
							Description:  "Channel for audit log lines (omit to disable)",
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
						},
					},
				},
			},
		},
	}
}

// registerCommands replaces the application's command set in one call
func (b *Bot) registerCommands() error {
	appID := b.session.State.User.ID
	created, err := b.session.ApplicationCommandBulkOverwrite(appID, b.config.GuildID, applicationCommands())
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	scope := "global"
	if b.config.GuildID != "" {
		scope = "guild " + b.config.GuildID
	}
	log.WithFields(log.Fields{
		"count": len(created),
		"scope": scope,
	}).Info("Registered slash commands")
	return nil
}
