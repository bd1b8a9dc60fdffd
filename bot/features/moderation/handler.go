package moderation

import (
	"context"
	"fmt"
	"strings"

	"guildkeeper/application"
	"guildkeeper/bot/common"
	"guildkeeper/domain/entities"
	"guildkeeper/domain/interfaces"
	"guildkeeper/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const maxReasonLength = 512

func newEnforcementService(uow application.UnitOfWork) interfaces.EnforcementService {
	return services.NewEnforcementService(
		uow.WarningRepository(),
		uow.ActiveBanRepository(),
		uow.GuildSettingsRepository(),
		uow.EventBus(),
	)
}

// HandleWarn records a warning and applies enforcement at the limit
func (f *Feature) HandleWarn(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	inv, err := common.ParseInvocation(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	target, err := inv.RequireSnowflake("user")
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	if inv.IsBotUser(target) {
		common.HandleError(s, i, common.NewUserError("Bots cannot be warned.", "warn target is a bot"), false)
		return
	}

	reason, _ := inv.String("reason")
	reason = normalizeReason(reason)

	// Kicks, bans and DMs can take a while
	if err := common.Defer(s, i, false); err != nil {
		log.Errorf("Error deferring warn response: %v", err)
		return
	}

	result, err := f.coordinator.Warn(ctx, inv.GuildID, target, inv.InvokerID, reason)
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}

	common.FollowUp(s, i, warnMessage(target, result))
}

func normalizeReason(reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return entities.DefaultWarningReason
	}
	if runes := []rune(reason); len(runes) > maxReasonLength {
		return string(runes[:maxReasonLength])
	}
	return reason
}

func warnMessage(target int64, result *application.WarnResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ %s has been warned (%d/%d).\nReason: %s",
		common.GetUserMention(target), result.Count, result.Limit, result.Warning.Reason)

	if !result.LimitReached() {
		return b.String()
	}

	decision := result.Enforcement
	switch {
	case result.EnforcementErr != nil && !result.Applied:
		fmt.Fprintf(&b, "\n❌ Warning limit reached, but the %s failed: %s",
			decision.Action, common.FromDomainError(result.EnforcementErr, "enforcement failed").UserMessage)
	case decision.Action == entities.EnforcementBan && decision.UnbanAt != nil:
		fmt.Fprintf(&b, "\n🔨 Warning limit reached. They have been banned until %s.",
			common.FormatDiscordTimestamp(*decision.UnbanAt, "f"))
	case decision.Action == entities.EnforcementBan:
		b.WriteString("\n🔨 Warning limit reached. They have been banned.")
	default:
		b.WriteString("\n👢 Warning limit reached. They have been kicked.")
	}
	return b.String()
}

// HandleWarnings lists a member's warnings, or every warned member when no user is given
func (f *Feature) HandleWarnings(s *discordgo.Session, i *discordgo.InteractionCreate) {
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
	enforcement := newEnforcementService(uow)

	var embed *discordgo.MessageEmbed
	if target, ok := inv.Snowflake("user"); ok {
		warnings, err := enforcement.ListWarnings(ctx, target)
		if err != nil {
			common.HandleError(s, i, err, false)
			return
		}
		embed = warningListEmbed(common.GetDisplayNameInt64(s, i.GuildID, target), warnings)
	} else {
		summary, err := enforcement.WarningSummary(ctx)
		if err != nil {
			common.HandleError(s, i, err, false)
			return
		}
		embed = warningSummaryEmbed(summary)
	}

	if err := uow.Commit(); err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "failed to commit transaction"), false)
		return
	}

	common.RespondEmbed(s, i, embed, true)
}

func warningListEmbed(displayName string, warnings []*entities.Warning) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Warnings for %s", displayName),
		Color: common.ColorWarning,
	}
	if len(warnings) == 0 {
		embed.Description = "No warnings on record."
		return embed
	}

	for _, w := range warnings {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("#%d · %s", w.ID, common.FormatDiscordTimestamp(w.CreatedAt, "d")),
			Value: fmt.Sprintf("%s\nModerator: %s", w.Reason, common.GetUserMention(w.ModeratorID)),
		})
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%d warning(s)", len(warnings))}
	return embed
}

func warningSummaryEmbed(summary []*entities.WarningCount) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Warned members",
		Color: common.ColorWarning,
	}
	if len(summary) == 0 {
		embed.Description = "No warnings on record."
		return embed
	}

	var lines []string
	for _, c := range summary {
		lines = append(lines, fmt.Sprintf("%s: %d", common.GetUserMention(c.MemberID), c.Count))
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}

// HandleUnwarn removes a single warning from this guild
func (f *Feature) HandleUnwarn(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	inv, err := common.ParseInvocation(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	warningID, err := inv.RequireInt("id")
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

	if err := newEnforcementService(uow).RemoveWarning(ctx, warningID); err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	if err := uow.Commit(); err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "failed to commit transaction"), false)
		return
	}

	log.WithFields(log.Fields{
		"guild_id":     inv.GuildID,
		"moderator_id": inv.InvokerID,
		"warning_id":   warningID,
	}).Info("Warning removed")

	common.Respond(s, i, fmt.Sprintf("✅ Removed warning `#%d`.", warningID), true)
}
