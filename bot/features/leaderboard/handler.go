package leaderboard

import (
	"context"
	"fmt"
	"strings"

	"guildkeeper/bot/common"
	"guildkeeper/domain/entities"
	"guildkeeper/domain/services"

	"github.com/bwmarrin/discordgo"
)

var rankingTitles = map[entities.LeaderboardMetric]string{
	entities.LeaderboardMonthly:  "🏆 Monthly activity",
	entities.LeaderboardLifetime: "🏆 Lifetime activity",
	entities.LeaderboardCurrency: "💰 Richest members",
}

// HandleTop shows a ranking, monthly activity by default
func (f *Feature) HandleTop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	inv, err := common.ParseInvocation(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	metric := entities.LeaderboardMonthly
	if ranking, ok := inv.String("ranking"); ok {
		metric = entities.LeaderboardMetric(ranking)
	}
	limit := 0
	if v, ok := inv.Int("limit"); ok {
		limit = int(v)
	}

	entries, settings, err := f.load(ctx, inv.GuildID, metric, entities.NormalizeLeaderboardLimit(limit))
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	common.RespondEmbed(s, i, leaderboardEmbed(metric, entries, settings.CurrencyName), false)
}

func (f *Feature) load(ctx context.Context, guildID int64, metric entities.LeaderboardMetric, limit int) ([]*entities.LeaderboardEntry, *entities.GuildSettings, error) {
	uow := f.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, common.NewSystemError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	settings, err := services.NewGuildSettingsService(uow.GuildSettingsRepository()).GetOrCreateSettings(ctx, guildID)
	if err != nil {
		return nil, nil, err
	}

	ledger := services.NewLedgerService(uow.MemberLedgerRepository(), uow.MonthlyResetRepository(), uow.EventBus())
	entries, err := ledger.Leaderboard(ctx, metric, limit)
	if err != nil {
		return nil, nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, common.NewSystemError(err, "failed to commit transaction")
	}
	return entries, settings, nil
}

func leaderboardEmbed(metric entities.LeaderboardMetric, entries []*entities.LeaderboardEntry, currencyName string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: rankingTitles[metric],
		Color: common.ColorWarning,
	}
	if len(entries) == 0 {
		embed.Description = "Nobody is on the board yet."
		return embed
	}

	unit := "pts"
	if metric == entities.LeaderboardCurrency {
		unit = currencyName
	}

	var lines []string
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s %s: **%s** %s",
			common.RankPrefix(e.Rank), common.GetUserMention(e.MemberID), common.FormatBalance(e.Value), unit))
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}
