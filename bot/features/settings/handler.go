package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"guildkeeper/bot/common"
	"guildkeeper/domain/entities"
	"guildkeeper/domain/interfaces"
	"guildkeeper/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// HandleWarnConfigView shows the warning enforcement configuration
func (f *Feature) HandleWarnConfigView(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	inv, err := common.ParseInvocation(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	settings, err := common.LoadGuildSettings(ctx, f.uowFactory, inv.GuildID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	common.RespondEmbed(s, i, settingsEmbed(settings), true)
}

func settingsEmbed(settings *entities.GuildSettings) *discordgo.MessageEmbed {
	auditLog := "disabled"
	if settings.HasAuditLogChannel() {
		auditLog = common.GetChannelMention(*settings.AuditLogChannelID)
	}

	return &discordgo.MessageEmbed{
		Title: "⚙️ Server configuration",
		Color: common.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Warning limit", Value: fmt.Sprintf("%d", settings.WarnLimit), Inline: true},
			{Name: "Action at limit", Value: string(settings.WarnAction), Inline: true},
			{Name: "Ban duration", Value: fmt.Sprintf("%d day(s)", settings.BanDurationDays), Inline: true},
			{Name: "Bet win chance", Value: fmt.Sprintf("%d%%", settings.BetWinChance), Inline: true},
			{Name: "Currency", Value: settings.CurrencyName, Inline: true},
			{Name: "Audit log", Value: auditLog, Inline: true},
		},
	}
}

func (f *Feature) HandleWarnConfigLimit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleUpdate(s, i, "value", func(ctx context.Context, svc interfaces.GuildSettingsService, guildID int64, inv *common.Invocation) (*entities.GuildSettings, string, error) {
		limit, err := inv.RequireInt("value")
		if err != nil {
			return nil, "", err
		}
		updated, err := svc.UpdateWarnLimit(ctx, guildID, int(limit))
		if err != nil {
			return nil, "", err
		}
		return updated, fmt.Sprintf("Members are now actioned at **%d** warning(s).", updated.WarnLimit), nil
	})
}

func (f *Feature) HandleWarnConfigAction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleUpdate(s, i, "value", func(ctx context.Context, svc interfaces.GuildSettingsService, guildID int64, inv *common.Invocation) (*entities.GuildSettings, string, error) {
		action, _ := inv.String("value")
		updated, err := svc.UpdateWarnAction(ctx, guildID, entities.EnforcementAction(action))
		if err != nil {
			return nil, "", err
		}
		return updated, fmt.Sprintf("Members reaching the limit will now be **%s**.", actionPastTense(updated.WarnAction)), nil
	})
}

func actionPastTense(action entities.EnforcementAction) string {
	if action == entities.EnforcementBan {
		return "banned"
	}
	return "kicked"
}

func (f *Feature) HandleWarnConfigBanDuration(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleUpdate(s, i, "days", func(ctx context.Context, svc interfaces.GuildSettingsService, guildID int64, inv *common.Invocation) (*entities.GuildSettings, string, error) {
		days, err := inv.RequireInt("days")
		if err != nil {
			return nil, "", err
		}
		updated, err := svc.UpdateBanDuration(ctx, guildID, int(days))
		if err != nil {
			return nil, "", err
		}
		return updated, fmt.Sprintf("Automatic bans now last **%d** day(s).", updated.BanDurationDays), nil
	})
}

func (f *Feature) HandleBetConfigChance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleUpdate(s, i, "percent", func(ctx context.Context, svc interfaces.GuildSettingsService, guildID int64, inv *common.Invocation) (*entities.GuildSettings, string, error) {
		chance, err := inv.RequireInt("percent")
		if err != nil {
			return nil, "", err
		}
		updated, err := svc.UpdateBetWinChance(ctx, guildID, int(chance))
		if err != nil {
			return nil, "", err
		}
		return updated, fmt.Sprintf("Bets now win **%d%%** of the time.", updated.BetWinChance), nil
	})
}

func (f *Feature) HandleCurrency(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleUpdate(s, i, "name", func(ctx context.Context, svc interfaces.GuildSettingsService, guildID int64, inv *common.Invocation) (*entities.GuildSettings, string, error) {
		name, _ := inv.String("name")
		updated, err := svc.UpdateCurrencyName(ctx, guildID, name)
		if err != nil {
			return nil, "", err
		}
		return updated, fmt.Sprintf("The currency is now called **%s**.", updated.CurrencyName), nil
	})
}

// HandleAuditLog sets the audit log channel, or disables it when no channel is given
func (f *Feature) HandleAuditLog(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleUpdate(s, i, "channel", func(ctx context.Context, svc interfaces.GuildSettingsService, guildID int64, inv *common.Invocation) (*entities.GuildSettings, string, error) {
		var channelID *int64
		if id, ok := inv.Snowflake("channel"); ok {
			channelID = &id
		}
		updated, err := svc.UpdateAuditLogChannel(ctx, guildID, channelID)
		if err != nil {
			return nil, "", err
		}
		if !updated.HasAuditLogChannel() {
			return updated, "Audit log disabled.", nil
		}
		return updated, fmt.Sprintf("Audit log entries will be posted in %s.", common.GetChannelMention(*updated.AuditLogChannelID)), nil
	})
}

// handleUpdate runs one settings change in its own transaction
func (f *Feature) handleUpdate(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	setting string,
	apply func(ctx context.Context, svc interfaces.GuildSettingsService, guildID int64, inv *common.Invocation) (*entities.GuildSettings, string, error),
) {
	ctx := context.Background()

	inv, err := common.ParseInvocation(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	uow := f.uowFactory.CreateForGuild(inv.GuildID)
	if err := uow.Begin(ctx); err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "failed to begin transaction"), false)
		return
	}
	defer uow.Rollback()

	svc := services.NewGuildSettingsService(uow.GuildSettingsRepository())
	_, message, err := apply(ctx, svc, inv.GuildID, inv)
	if err != nil {
		common.HandleError(s, i, settingError(err), false)
		return
	}

	if err := uow.Commit(); err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "failed to commit transaction"), false)
		return
	}

	log.WithFields(log.Fields{
		"guild_id": inv.GuildID,
		"admin_id": inv.InvokerID,
		"command":  inv.Command + " " + inv.Subcommand,
		"setting":  setting,
	}).Info("Guild setting updated")

	common.Respond(s, i, "✅ "+message, true)
}

// settingError surfaces the validation detail for rejected values
func settingError(err error) error {
	if !errors.Is(err, interfaces.ErrInvalidSetting) {
		return err
	}
	detail := strings.TrimPrefix(err.Error(), interfaces.ErrInvalidSetting.Error()+": ")
	if detail == "" || detail == err.Error() {
		return common.FromDomainError(err, "invalid setting")
	}
	return common.NewUserError(capitalize(detail)+".", "invalid setting: "+detail)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
