package economy

import (
	"context"
	"fmt"

	"guildkeeper/bot/common"
	"guildkeeper/domain/entities"
	"guildkeeper/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// HandleBalance shows the invoker's spendable balance
func (f *Feature) HandleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	inv, err := common.ParseInvocation(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	ledger, settings, err := f.loadLedger(ctx, inv.GuildID, inv.InvokerID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	message := fmt.Sprintf("%s, your current balance: **%s**",
		common.GetDisplayName(s, i.GuildID, i.Member.User.ID),
		common.FormatCurrency(ledger.GamblingPoints, settings.CurrencyName))
	common.Respond(s, i, message, true)
}

// HandleWallet shows activity points, currency and voice time for a member
func (f *Feature) HandleWallet(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	inv, err := common.ParseInvocation(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	memberID := inv.InvokerID
	if target, ok := inv.Snowflake("user"); ok {
		memberID = target
	}

	ledger, settings, err := f.loadLedger(ctx, inv.GuildID, memberID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	common.RespondEmbed(s, i, walletEmbed(common.GetDisplayNameInt64(s, i.GuildID, memberID), ledger, settings.CurrencyName), false)
}

func walletEmbed(displayName string, ledger *entities.MemberLedger, currencyName string) *discordgo.MessageEmbed {
	lastActive := "never"
	if ledger.LastActivityAt != nil {
		lastActive = common.FormatDiscordTimestamp(*ledger.LastActivityAt, "R")
	}

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s's wallet", displayName),
		Color: common.ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: currencyName, Value: common.FormatBalance(ledger.GamblingPoints), Inline: true},
			{Name: "Monthly activity", Value: common.FormatBalance(ledger.MonthlyActivityPoints), Inline: true},
			{Name: "Lifetime activity", Value: common.FormatBalance(ledger.ActivityPoints), Inline: true},
			{Name: "Messages", Value: common.FormatBalance(ledger.MessageCount), Inline: true},
			{Name: "Voice time", Value: common.FormatVoiceTime(ledger.VoiceSeconds), Inline: true},
			{Name: "Last active", Value: lastActive, Inline: true},
		},
	}
}

// HandleBet stakes currency on a single roll
func (f *Feature) HandleBet(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	inv, err := common.ParseInvocation(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	amount, err := inv.RequireInt("amount")
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	settings, err := common.LoadGuildSettings(ctx, f.uowFactory, inv.GuildID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	result, err := f.transactions.PlaceBet(ctx, inv.GuildID, inv.InvokerID, amount)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	log.WithFields(log.Fields{
		"guild_id":  inv.GuildID,
		"member_id": inv.InvokerID,
		"amount":    amount,
		"roll":      result.Roll,
		"won":       result.Won,
	}).Debug("Bet settled")

	common.Respond(s, i, betMessage(common.GetUserMention(inv.InvokerID), result, settings.CurrencyName), false)
}

func betMessage(mention string, result *entities.BetResult, currencyName string) string {
	if result.Won {
		return fmt.Sprintf("🎲 %s rolled **%d** (needed %d or less) and won **%s**! New balance: %s",
			mention, result.Roll, result.WinChance,
			common.FormatCurrency(result.Amount, currencyName),
			common.FormatCurrency(result.NewBalance, currencyName))
	}
	return fmt.Sprintf("🎲 %s rolled **%d** (needed %d or less) and lost **%s**. New balance: %s",
		mention, result.Roll, result.WinChance,
		common.FormatCurrency(result.Amount, currencyName),
		common.FormatCurrency(result.NewBalance, currencyName))
}

// HandleGivePoints credits currency to a member
func (f *Feature) HandleGivePoints(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleAdjust(s, i, true)
}

// HandleTakePoints debits currency from a member, stopping at zero
func (f *Feature) HandleTakePoints(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleAdjust(s, i, false)
}

func (f *Feature) handleAdjust(s *discordgo.Session, i *discordgo.InteractionCreate, credit bool) {
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
	amount, err := inv.RequireInt("amount")
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	settings, err := common.LoadGuildSettings(ctx, f.uowFactory, inv.GuildID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	var ledger *entities.MemberLedger
	if credit {
		ledger, err = f.transactions.GrantCurrency(ctx, inv.GuildID, target, amount)
	} else {
		ledger, err = f.transactions.TakeCurrency(ctx, inv.GuildID, target, amount)
	}
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	log.WithFields(log.Fields{
		"guild_id":    inv.GuildID,
		"admin_id":    inv.InvokerID,
		"member_id":   target,
		"amount":      amount,
		"credit":      credit,
		"new_balance": ledger.GamblingPoints,
	}).Info("Admin currency adjustment")

	verb := "Gave"
	preposition := "to"
	if !credit {
		verb = "Took"
		preposition = "from"
	}
	message := fmt.Sprintf("✅ %s %s %s %s. Their balance is now %s.",
		verb,
		common.FormatCurrency(amount, settings.CurrencyName),
		preposition,
		common.GetUserMention(target),
		common.FormatCurrency(ledger.GamblingPoints, settings.CurrencyName))
	common.Respond(s, i, message, true)
}

func (f *Feature) loadLedger(ctx context.Context, guildID, memberID int64) (*entities.MemberLedger, *entities.GuildSettings, error) {
	uow := f.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, common.NewSystemError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	settings, err := services.NewGuildSettingsService(uow.GuildSettingsRepository()).GetOrCreateSettings(ctx, guildID)
	if err != nil {
		return nil, nil, err
	}

	ledgerService := services.NewLedgerService(
		uow.MemberLedgerRepository(),
		uow.MonthlyResetRepository(),
		uow.EventBus(),
	)
	ledger, err := ledgerService.GetLedger(ctx, memberID)
	if err != nil {
		return nil, nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, common.NewSystemError(err, "failed to commit transaction")
	}
	return ledger, settings, nil
}
