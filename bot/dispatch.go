package bot

import (
	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// CommandKind identifies one slash command (or command + subcommand)
type CommandKind int

const (
	CommandUnknown CommandKind = iota
	CommandBalance
	CommandBet
	CommandWallet
	CommandTop
	CommandGivePoints
	CommandTakePoints
	CommandShopList
	CommandShopBuy
	CommandShopAdminAdd
	CommandShopAdminRemove
	CommandWarn
	CommandWarnings
	CommandUnwarn
	CommandWarnConfigView
	CommandWarnConfigLimit
	CommandWarnConfigAction
	CommandWarnConfigBanDuration
	CommandBetConfigChance
	CommandSettingsCurrency
	CommandSettingsAuditLog
)

var commandKinds = map[string]CommandKind{
	"balance":                CommandBalance,
	"bet":                    CommandBet,
	"wallet":                 CommandWallet,
	"top":                    CommandTop,
	"givepoints":             CommandGivePoints,
	"takepoints":             CommandTakePoints,
	"shop list":              CommandShopList,
	"shop buy":               CommandShopBuy,
	"shopadmin add":          CommandShopAdminAdd,
	"shopadmin remove":       CommandShopAdminRemove,
	"warn":                   CommandWarn,
	"warnings":               CommandWarnings,
	"unwarn":                 CommandUnwarn,
	"warnconfig view":        CommandWarnConfigView,
	"warnconfig limit":       CommandWarnConfigLimit,
	"warnconfig action":      CommandWarnConfigAction,
	"warnconfig banduration": CommandWarnConfigBanDuration,
	"betconfig chance":       CommandBetConfigChance,
	"settings currency":      CommandSettingsCurrency,
	"settings auditlog":      CommandSettingsAuditLog,
}

// ParseCommandKind resolves a command name and optional subcommand
func ParseCommandKind(name, subcommand string) CommandKind {
	key := name
	if subcommand != "" {
		key = name + " " + subcommand
	}
	if kind, ok := commandKinds[key]; ok {
		return kind
	}
	return CommandUnknown
}

// commandKindOf reads the kind straight from an interaction
func commandKindOf(i *discordgo.InteractionCreate) CommandKind {
	data := i.ApplicationCommandData()
	subcommand := ""
	if len(data.Options) > 0 && data.Options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		subcommand = data.Options[0].Name
	}
	return ParseCommandKind(data.Name, subcommand)
}

// handleCommands routes slash commands to the feature that owns them
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch commandKindOf(i) {
	case CommandBalance:
		b.economy.HandleBalance(s, i)
	case CommandWallet:
		b.economy.HandleWallet(s, i)
	case CommandBet:
		b.economy.HandleBet(s, i)
	case CommandGivePoints:
		b.economy.HandleGivePoints(s, i)
	case CommandTakePoints:
		b.economy.HandleTakePoints(s, i)
	case CommandTop:
		b.leaderboard.HandleTop(s, i)
	case CommandShopList:
		b.shop.HandleList(s, i)
	case CommandShopBuy:
		b.shop.HandleBuy(s, i)
	case CommandShopAdminAdd:
		b.shop.HandleAdminAdd(s, i)
	case CommandShopAdminRemove:
		b.shop.HandleAdminRemove(s, i)
	case CommandWarn:
		b.moderation.HandleWarn(s, i)
	case CommandWarnings:
		b.moderation.HandleWarnings(s, i)
	case CommandUnwarn:
		b.moderation.HandleUnwarn(s, i)
	case CommandWarnConfigView:
		b.settings.HandleWarnConfigView(s, i)
	case CommandWarnConfigLimit:
		b.settings.HandleWarnConfigLimit(s, i)
	case CommandWarnConfigAction:
		b.settings.HandleWarnConfigAction(s, i)
	case CommandWarnConfigBanDuration:
		b.settings.HandleWarnConfigBanDuration(s, i)
	case CommandBetConfigChance:
		b.settings.HandleBetConfigChance(s, i)
	case CommandSettingsCurrency:
		b.settings.HandleCurrency(s, i)
	case CommandSettingsAuditLog:
		b.settings.HandleAuditLog(s, i)
	default:
		log.WithField("command", i.ApplicationCommandData().Name).Warn("Unknown command")
	}
}
