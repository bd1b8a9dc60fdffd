package shop

import (
	"context"
	"fmt"
	"strings"

	"guildkeeper/bot/common"
	"guildkeeper/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// HandleList shows every role for sale
func (f *Feature) HandleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
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
	items, err := f.transactions.ListShopItems(ctx, inv.GuildID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	common.RespondEmbed(s, i, shopEmbed(items, settings.CurrencyName), false)
}

func shopEmbed(items []*entities.ShopItem, currencyName string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🛒 Role shop",
		Color: common.ColorInfo,
	}
	if len(items) == 0 {
		embed.Description = "The shop is empty."
		return embed
	}

	var lines []string
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("`#%d` %s: **%s**",
			item.ID, common.GetRoleMention(item.RoleID), common.FormatCurrency(item.Price, currencyName)))
	}
	embed.Description = strings.Join(lines, "\n")
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Buy with /shop buy item:<id>"}
	return embed
}

// HandleBuy charges the invoker and grants the role. The grant goes
// through the Discord API, so the reply is deferred.
func (f *Feature) HandleBuy(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	inv, err := common.ParseInvocation(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	itemID, err := inv.RequireInt("item")
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.Defer(s, i, true); err != nil {
		log.Errorf("Error deferring purchase response: %v", err)
		return
	}

	settings, err := common.LoadGuildSettings(ctx, f.uowFactory, inv.GuildID)
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}

	result, err := f.transactions.PurchaseItem(ctx, inv.GuildID, inv.InvokerID, itemID)
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}

	common.FollowUp(s, i, fmt.Sprintf("✅ You bought %s for %s. Remaining balance: %s",
		common.GetRoleMention(result.Item.RoleID),
		common.FormatCurrency(result.Item.Price, settings.CurrencyName),
		common.FormatCurrency(result.NewBalance, settings.CurrencyName)))
}

// HandleAdminAdd lists a role for sale
func (f *Feature) HandleAdminAdd(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	inv, err := common.ParseInvocation(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	roleID, err := inv.RequireSnowflake("role")
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	price, err := inv.RequireInt("price")
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	item, err := f.transactions.AddShopItem(ctx, inv.GuildID, roleID, price)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	log.WithFields(log.Fields{
		"guild_id": inv.GuildID,
		"admin_id": inv.InvokerID,
		"item_id":  item.ID,
		"role_id":  roleID,
		"price":    price,
	}).Info("Shop item added")

	common.Respond(s, i, fmt.Sprintf("✅ Added %s to the shop as item `#%d` for %s.",
		common.GetRoleMention(roleID), item.ID, common.FormatBalance(price)), true)
}

// HandleAdminRemove takes an item out of the shop
func (f *Feature) HandleAdminRemove(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	inv, err := common.ParseInvocation(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	itemID, err := inv.RequireInt("item")
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := f.transactions.RemoveShopItem(ctx, inv.GuildID, itemID); err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	common.Respond(s, i, fmt.Sprintf("✅ Removed item `#%d` from the shop.", itemID), true)
}
