package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"guildkeeper/bot/common"
	"guildkeeper/domain/entities"
	"guildkeeper/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Gateway adapts the discordgo session to the domain's platform ports:
// role grants, moderation actions, voice presence and guild discovery.
type Gateway struct {
	session *discordgo.Session
}

// NewGateway creates a gateway over an existing session
func NewGateway(session *discordgo.Session) *Gateway {
	return &Gateway{session: session}
}

// classifyRESTError maps Discord REST failures onto domain errors
func classifyRESTError(err error) error {
	if err == nil {
		return nil
	}

	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return err
	}

	switch restErr.Response.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %v", interfaces.ErrTargetNotFound, err)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %v", interfaces.ErrActuatorForbidden, err)
	default:
		return err
	}
}

// HasEntitlement reports whether the member already holds the role
func (g *Gateway) HasEntitlement(ctx context.Context, guildID, memberID, roleID int64) (bool, error) {
	member, err := g.session.GuildMember(common.FormatID(guildID), common.FormatID(memberID), discordgo.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to fetch member %d: %w", memberID, classifyRESTError(err))
	}
	return slices.Contains(member.Roles, common.FormatID(roleID)), nil
}

// GrantEntitlement adds the role to the member
func (g *Gateway) GrantEntitlement(ctx context.Context, guildID, memberID, roleID int64) error {
	err := g.session.GuildMemberRoleAdd(
		common.FormatID(guildID),
		common.FormatID(memberID),
		common.FormatID(roleID),
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to add role %d: %w", roleID, classifyRESTError(err))
	}
	return nil
}

// NotifyMember sends a direct message to the member
func (g *Gateway) NotifyMember(ctx context.Context, guildID, memberID int64, message string) error {
	channel, err := g.session.UserChannelCreate(common.FormatID(memberID), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open DM channel: %w", classifyRESTError(err))
	}
	if _, err := g.session.ChannelMessageSend(channel.ID, message, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send DM: %w", classifyRESTError(err))
	}
	return nil
}

func (g *Gateway) Kick(ctx context.Context, guildID, memberID int64, reason string) error {
	err := g.session.GuildMemberDeleteWithReason(common.FormatID(guildID), common.FormatID(memberID), reason, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to kick member %d: %w", memberID, classifyRESTError(err))
	}
	return nil
}

// Ban bans the member without deleting their message history
func (g *Gateway) Ban(ctx context.Context, guildID, memberID int64, reason string) error {
	err := g.session.GuildBanCreateWithReason(common.FormatID(guildID), common.FormatID(memberID), reason, 0, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to ban member %d: %w", memberID, classifyRESTError(err))
	}
	return nil
}

func (g *Gateway) Unban(ctx context.Context, guildID, memberID int64) error {
	err := g.session.GuildBanDelete(common.FormatID(guildID), common.FormatID(memberID), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to unban member %d: %w", memberID, classifyRESTError(err))
	}
	return nil
}

// VoiceChannels groups the guild's cached voice states by channel
func (g *Gateway) VoiceChannels(ctx context.Context, guildID int64) ([]*entities.VoiceChannelPresence, error) {
	guildKey := common.FormatID(guildID)

	g.session.State.RLock()
	guild, ok := g.findGuildLocked(guildKey)
	var states []discordgo.VoiceState
	if ok {
		for _, vs := range guild.VoiceStates {
			if vs != nil && vs.ChannelID != "" {
				states = append(states, *vs)
			}
		}
	}
	g.session.State.RUnlock()

	if !ok {
		return nil, fmt.Errorf("guild %d is not in the session state: %w", guildID, interfaces.ErrTargetNotFound)
	}

	byChannel := make(map[string]*entities.VoiceChannelPresence)
	var order []string
	for _, vs := range states {
		channelID, err := common.ParseID(vs.ChannelID)
		if err != nil {
			continue
		}
		memberID, err := common.ParseID(vs.UserID)
		if err != nil {
			continue
		}

		presence, seen := byChannel[vs.ChannelID]
		if !seen {
			presence = &entities.VoiceChannelPresence{ChannelID: channelID}
			byChannel[vs.ChannelID] = presence
			order = append(order, vs.ChannelID)
		}
		presence.Members = append(presence.Members, entities.VoiceMember{
			MemberID: memberID,
			Bot:      g.isBot(guildKey, &vs),
			SelfMute: vs.SelfMute,
			SelfDeaf: vs.SelfDeaf,
		})
	}

	channels := make([]*entities.VoiceChannelPresence, 0, len(order))
	for _, id := range order {
		channels = append(channels, byChannel[id])
	}
	return channels, nil
}

func (g *Gateway) findGuildLocked(guildID string) (*discordgo.Guild, bool) {
	for _, guild := range g.session.State.Guilds {
		if guild.ID == guildID {
			return guild, true
		}
	}
	return nil, false
}

// isBot resolves the bot flag from the voice state or the member cache.
// Members missing from the cache count as humans.
func (g *Gateway) isBot(guildID string, vs *discordgo.VoiceState) bool {
	if vs.Member != nil && vs.Member.User != nil {
		return vs.Member.User.Bot
	}
	member, err := g.session.State.Member(guildID, vs.UserID)
	if err != nil || member.User == nil {
		return false
	}
	return member.User.Bot
}

// ConnectedGuildIDs lists the guilds in the session state
func (g *Gateway) ConnectedGuildIDs(ctx context.Context) ([]int64, error) {
	g.session.State.RLock()
	defer g.session.State.RUnlock()

	ids := make([]int64, 0, len(g.session.State.Guilds))
	for _, guild := range g.session.State.Guilds {
		if guild.Unavailable {
			continue
		}
		id, err := common.ParseID(guild.ID)
		if err != nil {
			log.Errorf("Error parsing guild ID %s: %v", guild.ID, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
