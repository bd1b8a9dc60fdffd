package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"guildkeeper/application"
	"guildkeeper/bot/common"
	"guildkeeper/domain/entities"
	"guildkeeper/domain/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// AuditLog posts guild activity to the channel configured in guild settings
type AuditLog struct {
	session    *discordgo.Session
	uowFactory application.UnitOfWorkFactory
}

// NewAuditLog creates an audit log poster
func NewAuditLog(session *discordgo.Session, uowFactory application.UnitOfWorkFactory) *AuditLog {
	return &AuditLog{session: session, uowFactory: uowFactory}
}

// auditEntry is one line in the audit log
type auditEntry struct {
	Description string
	Color       int
	Footer      string
	SubjectID   int64
	SubjectName string
	At          time.Time
}

func (e auditEntry) embed() *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Description: e.Description,
		Color:       e.Color,
		Timestamp:   e.At.UTC().Format(time.RFC3339),
	}
	if e.SubjectID != 0 {
		name := e.SubjectName
		if name == "" {
			name = "Unknown"
		}
		embed.Author = &discordgo.MessageEmbedAuthor{Name: fmt.Sprintf("%s (%d)", name, e.SubjectID)}
	}
	if e.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	return embed
}

func voiceJoinedEntry(memberID int64, channelName string, at time.Time) auditEntry {
	return auditEntry{
		Description: fmt.Sprintf("**%s joined voice channel `%s`**", common.GetUserMention(memberID), channelName),
		Color:       common.ColorPrimary,
		SubjectID:   memberID,
		At:          at,
	}
}

func voiceLeftEntry(memberID int64, channelName string, at time.Time) auditEntry {
	return auditEntry{
		Description: fmt.Sprintf("**%s left voice channel `%s`**", common.GetUserMention(memberID), channelName),
		Color:       common.ColorMuted,
		SubjectID:   memberID,
		At:          at,
	}
}

func voiceMovedEntry(memberID int64, fromName, toName string, at time.Time) auditEntry {
	return auditEntry{
		Description: fmt.Sprintf("**%s moved from `%s` to `%s`**", common.GetUserMention(memberID), fromName, toName),
		Color:       common.ColorMuted,
		SubjectID:   memberID,
		At:          at,
	}
}

func memberJoinedEntry(memberID int64, at time.Time) auditEntry {
	return auditEntry{
		Description: fmt.Sprintf("**%s has joined the server.**", common.GetUserMention(memberID)),
		Color:       common.ColorSuccess,
		Footer:      "User Joined",
		SubjectID:   memberID,
		At:          at,
	}
}

func memberLeftEntry(memberID int64, at time.Time) auditEntry {
	return auditEntry{
		Description: fmt.Sprintf("**%s has left the server.**", common.GetUserMention(memberID)),
		Color:       common.ColorDanger,
		Footer:      "User Left",
		SubjectID:   memberID,
		At:          at,
	}
}

// maxDeletedContentRunes keeps deleted message text well inside the embed limit
const maxDeletedContentRunes = 1024

func messageDeletedEntry(authorID, channelID int64, content string, at time.Time) auditEntry {
	content = strings.TrimSpace(content)
	if content == "" {
		content = "*No text content*"
	} else if runes := []rune(content); len(runes) > maxDeletedContentRunes {
		content = string(runes[:maxDeletedContentRunes]) + "…"
	}

	return auditEntry{
		Description: fmt.Sprintf("**Message sent by %s deleted in %s**\n%s",
			common.GetUserMention(authorID), common.GetChannelMention(channelID), content),
		Color:     common.ColorWarning,
		Footer:    "Message Deleted",
		SubjectID: authorID,
		At:        at,
	}
}

func roleAddedEntry(memberID int64, roleName string, at time.Time) auditEntry {
	return auditEntry{
		Description: fmt.Sprintf("**%s was given the `%s` role.**", common.GetUserMention(memberID), roleName),
		Color:       common.ColorInfo,
		Footer:      "Roles Updated",
		SubjectID:   memberID,
		At:          at,
	}
}

func roleRemovedEntry(memberID int64, roleName string, at time.Time) auditEntry {
	return auditEntry{
		Description: fmt.Sprintf("**`%s` role was removed from %s.**", roleName, common.GetUserMention(memberID)),
		Color:       common.ColorPrimary,
		Footer:      "Roles Updated",
		SubjectID:   memberID,
		At:          at,
	}
}

// diffRoles returns the role ids only in after and only in before, in their original order
func diffRoles(before, after []string) (added, removed []string) {
	inBefore := make(map[string]bool, len(before))
	for _, id := range before {
		inBefore[id] = true
	}
	inAfter := make(map[string]bool, len(after))
	for _, id := range after {
		inAfter[id] = true
		if !inBefore[id] {
			added = append(added, id)
		}
	}
	for _, id := range before {
		if !inAfter[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}

// deletedMessageEntry builds the entry for a cached message that was deleted.
// Uncached messages, DMs and bot messages are not logged.
func deletedMessageEntry(msg *discordgo.Message, at time.Time) (int64, auditEntry, bool) {
	if msg == nil || msg.Author == nil || msg.Author.Bot || msg.GuildID == "" {
		return 0, auditEntry{}, false
	}
	guildID, err := common.ParseID(msg.GuildID)
	if err != nil {
		return 0, auditEntry{}, false
	}
	authorID, err := common.ParseID(msg.Author.ID)
	if err != nil {
		return 0, auditEntry{}, false
	}
	channelID, err := common.ParseID(msg.ChannelID)
	if err != nil {
		return 0, auditEntry{}, false
	}

	entry := messageDeletedEntry(authorID, channelID, msg.Content, at)
	entry.SubjectName = msg.Author.Username
	return guildID, entry, true
}

// roleChangeEntries describes every role gained or lost between two member snapshots
func (a *AuditLog) roleChangeEntries(guildID string, before, after *discordgo.Member, at time.Time) []auditEntry {
	if before == nil || after == nil || after.User == nil {
		return nil
	}
	memberID, err := common.ParseID(after.User.ID)
	if err != nil {
		return nil
	}

	added, removed := diffRoles(before.Roles, after.Roles)
	entries := make([]auditEntry, 0, len(added)+len(removed))
	for _, roleID := range added {
		entries = append(entries, roleAddedEntry(memberID, a.roleName(guildID, roleID), at))
	}
	for _, roleID := range removed {
		entries = append(entries, roleRemovedEntry(memberID, a.roleName(guildID, roleID), at))
	}
	for i := range entries {
		entries[i].SubjectName = after.User.Username
	}
	return entries
}

func enforcementAppliedEntry(e events.EnforcementAppliedEvent, at time.Time) auditEntry {
	var description string
	switch e.Action {
	case entities.EnforcementBan:
		description = fmt.Sprintf("**%s was banned after reaching the warning limit.**", common.GetUserMention(e.MemberID))
		if e.UnbanAt != nil {
			description += fmt.Sprintf("\nBan expires %s", common.FormatDiscordTimestamp(*e.UnbanAt, "f"))
		}
	default:
		description = fmt.Sprintf("**%s was kicked after reaching the warning limit.**", common.GetUserMention(e.MemberID))
	}
	if e.Reason != "" {
		description += "\nReason: " + e.Reason
	}

	return auditEntry{
		Description: description,
		Color:       common.ColorDanger,
		Footer:      "Automatic Enforcement",
		SubjectID:   e.MemberID,
		At:          at,
	}
}

func enforcementReversedEntry(e events.EnforcementReversedEvent, at time.Time) auditEntry {
	description := fmt.Sprintf("**Temporary ban for %s expired and was lifted.**", common.GetUserMention(e.MemberID))
	if e.Outcome == entities.BanLiftAlreadyLifted {
		description = fmt.Sprintf("**Temporary ban for %s expired; the ban had already been removed.**", common.GetUserMention(e.MemberID))
	}
	return auditEntry{
		Description: description,
		Color:       common.ColorSuccess,
		Footer:      "Ban Expired",
		SubjectID:   e.MemberID,
		At:          at,
	}
}

// roleName returns the cached role name, or the raw id when unknown
func (a *AuditLog) roleName(guildID, roleID string) string {
	role, err := a.session.State.Role(guildID, roleID)
	if err != nil || role == nil {
		return roleID
	}
	return role.Name
}

// channelName returns the cached channel name, or the raw id when unknown
func (a *AuditLog) channelName(channelID string) string {
	channel, err := a.session.State.Channel(channelID)
	if err != nil || channel == nil {
		return channelID
	}
	return channel.Name
}

// Post sends the entry if the guild has an audit log channel.
// Delivery failures are logged and never surfaced to callers.
func (a *AuditLog) Post(ctx context.Context, guildID int64, entry auditEntry) {
	channelID, err := a.channelFor(ctx, guildID)
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"error":    err,
		}).Error("Failed to load audit log settings")
		return
	}
	if channelID == 0 {
		return
	}

	if entry.SubjectID != 0 && entry.SubjectName == "" {
		entry.SubjectName = common.GetDisplayNameInt64(a.session, common.FormatID(guildID), entry.SubjectID)
	}

	if _, err := a.session.ChannelMessageSendEmbed(common.FormatID(channelID), entry.embed(), discordgo.WithContext(ctx)); err != nil {
		log.WithFields(log.Fields{
			"guild_id":   guildID,
			"channel_id": channelID,
			"error":      classifyRESTError(err),
		}).Warn("Failed to post audit log entry")
	}
}

func (a *AuditLog) channelFor(ctx context.Context, guildID int64) (int64, error) {
	settings, err := common.LoadGuildSettings(ctx, a.uowFactory, guildID)
	if err != nil {
		return 0, err
	}
	if !settings.HasAuditLogChannel() {
		return 0, nil
	}
	return *settings.AuditLogChannelID, nil
}

// HandleEnforcementApplied is a local event handler for committed enforcements
func (a *AuditLog) HandleEnforcementApplied(ctx context.Context, event events.Event) error {
	var applied events.EnforcementAppliedEvent
	switch e := event.(type) {
	case events.EnforcementAppliedEvent:
		applied = e
	case *events.EnforcementAppliedEvent:
		applied = *e
	default:
		return fmt.Errorf("unexpected event type %T", event)
	}

	a.Post(ctx, applied.GuildID, enforcementAppliedEntry(applied, time.Now()))
	return nil
}

// HandleEnforcementReversed is a local event handler for lifted bans
func (a *AuditLog) HandleEnforcementReversed(ctx context.Context, event events.Event) error {
	var reversed events.EnforcementReversedEvent
	switch e := event.(type) {
	case events.EnforcementReversedEvent:
		reversed = e
	case *events.EnforcementReversedEvent:
		reversed = *e
	default:
		return fmt.Errorf("unexpected event type %T", event)
	}

	a.Post(ctx, reversed.GuildID, enforcementReversedEntry(reversed, time.Now()))
	return nil
}
