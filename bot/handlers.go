package bot

import (
	"context"
	"time"

	"guildkeeper/bot/common"
	"guildkeeper/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handlerTimeout bounds the work done for a single gateway event
const handlerTimeout = 15 * time.Second

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithFields(log.Fields{
		"user":   r.User.Username,
		"guilds": len(r.Guilds),
	}).Info("Gateway ready")

	b.readyOnce.Do(func() { close(b.ready) })

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	guildIDs := make([]int64, 0, len(r.Guilds))
	for _, g := range r.Guilds {
		if id, err := common.ParseID(g.ID); err == nil {
			guildIDs = append(guildIDs, id)
		}
	}
	if err := b.reconciler.HandleReady(ctx, guildIDs); err != nil {
		log.Errorf("Error clearing stale voice sessions: %v", err)
	}
}

func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	guildID, err := common.ParseID(g.ID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", g.ID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if _, err := common.LoadGuildSettings(ctx, b.uowFactory, guildID); err != nil {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"error":    err,
		}).Error("Failed to initialize guild settings")
	}

	if _, err := b.reconciler.ResyncGuild(ctx, guildID); err != nil {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"error":    err,
		}).Error("Failed to resync voice sessions")
	}
}

func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	guildID, err := common.ParseID(m.GuildID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", m.GuildID, err)
		return
	}
	memberID, err := common.ParseID(m.Author.ID)
	if err != nil {
		log.Errorf("Error parsing user ID %s: %v", m.Author.ID, err)
		return
	}

	at := m.Timestamp
	if at.IsZero() {
		at = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	if _, err := b.activity.RecordMessage(ctx, guildID, memberID, at.UTC()); err != nil {
		log.WithFields(log.Fields{
			"guild_id":  guildID,
			"member_id": memberID,
			"error":     err,
		}).Error("Failed to record message activity")
	}
}

func (b *Bot) handleVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.VoiceState == nil || v.GuildID == "" {
		return
	}
	if v.Member != nil && v.Member.User != nil && v.Member.User.Bot {
		return
	}

	guildID, err := common.ParseID(v.GuildID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", v.GuildID, err)
		return
	}
	memberID, err := common.ParseID(v.UserID)
	if err != nil {
		log.Errorf("Error parsing user ID %s: %v", v.UserID, err)
		return
	}

	prevChannelID := ""
	if v.BeforeUpdate != nil {
		prevChannelID = v.BeforeUpdate.ChannelID
	}
	at := time.Now().UTC()

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	transition, err := b.activity.HandleVoiceStateChange(ctx, guildID, memberID, prevChannelID, v.ChannelID, at)
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id":   guildID,
			"member_id":  memberID,
			"transition": transition,
			"error":      err,
		}).Error("Failed to track voice state change")
	}

	switch transition {
	case entities.VoiceJoined:
		b.auditLog.Post(ctx, guildID, voiceJoinedEntry(memberID, b.auditLog.channelName(v.ChannelID), at))
	case entities.VoiceLeft:
		b.auditLog.Post(ctx, guildID, voiceLeftEntry(memberID, b.auditLog.channelName(prevChannelID), at))
	case entities.VoiceMoved:
		b.auditLog.Post(ctx, guildID, voiceMovedEntry(memberID, b.auditLog.channelName(prevChannelID), b.auditLog.channelName(v.ChannelID), at))
	}
}

func (b *Bot) handleGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	b.postMemberEntry(m.GuildID, m.Member, memberJoinedEntry)
}

func (b *Bot) handleGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	b.postMemberEntry(m.GuildID, m.Member, memberLeftEntry)
}

func (b *Bot) postMemberEntry(guildIDRaw string, member *discordgo.Member, entry func(int64, time.Time) auditEntry) {
	if member == nil || member.User == nil {
		return
	}
	guildID, err := common.ParseID(guildIDRaw)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", guildIDRaw, err)
		return
	}
	memberID, err := common.ParseID(member.User.ID)
	if err != nil {
		log.Errorf("Error parsing user ID %s: %v", member.User.ID, err)
		return
	}

	e := entry(memberID, time.Now())
	e.SubjectName = member.User.Username

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	b.auditLog.Post(ctx, guildID, e)
}

func (b *Bot) handleMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	guildID, entry, ok := deletedMessageEntry(m.BeforeDelete, time.Now())
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	b.auditLog.Post(ctx, guildID, entry)
}

func (b *Bot) handleGuildMemberUpdate(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	if m.Member == nil {
		return
	}
	entries := b.auditLog.roleChangeEntries(m.GuildID, m.BeforeUpdate, m.Member, time.Now())
	if len(entries) == 0 {
		return
	}
	guildID, err := common.ParseID(m.GuildID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", m.GuildID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	for _, entry := range entries {
		b.auditLog.Post(ctx, guildID, entry)
	}
}
