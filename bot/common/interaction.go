package common

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// Invocation is a parsed slash command: who ran it, where, and with which options
type Invocation struct {
	GuildID    int64
	InvokerID  int64
	Command    string
	Subcommand string
	options    map[string]*discordgo.ApplicationCommandInteractionDataOption
	resolved   *discordgo.ApplicationCommandInteractionDataResolved
}

// ParseInvocation extracts ids and options from a guild slash command.
// Commands used outside a guild are rejected.
func ParseInvocation(i *discordgo.InteractionCreate) (*Invocation, error) {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return nil, NewUserError("This command can only be used in a server.", "command outside guild")
	}

	guildID, err := ParseID(i.GuildID)
	if err != nil {
		return nil, NewSystemError(err, fmt.Sprintf("invalid guild id %q", i.GuildID))
	}
	invokerID, err := ParseID(i.Member.User.ID)
	if err != nil {
		return nil, NewSystemError(err, fmt.Sprintf("invalid user id %q", i.Member.User.ID))
	}

	data := i.ApplicationCommandData()
	inv := &Invocation{
		GuildID:   guildID,
		InvokerID: invokerID,
		Command:   data.Name,
		options:   make(map[string]*discordgo.ApplicationCommandInteractionDataOption),
		resolved:  data.Resolved,
	}

	opts := data.Options
	if len(opts) > 0 && opts[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		inv.Subcommand = opts[0].Name
		opts = opts[0].Options
	}
	for _, opt := range opts {
		inv.options[opt.Name] = opt
	}

	return inv, nil
}

// Int returns an integer option
func (inv *Invocation) Int(name string) (int64, bool) {
	opt, ok := inv.options[name]
	if !ok {
		return 0, false
	}
	return opt.IntValue(), true
}

// String returns a string option
func (inv *Invocation) String(name string) (string, bool) {
	opt, ok := inv.options[name]
	if !ok {
		return "", false
	}
	return opt.StringValue(), true
}

// Snowflake returns a user, role or channel option as an id
func (inv *Invocation) Snowflake(name string) (int64, bool) {
	opt, ok := inv.options[name]
	if !ok {
		return 0, false
	}
	raw, ok := opt.Value.(string)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// RequireInt is Int for required options
func (inv *Invocation) RequireInt(name string) (int64, error) {
	v, ok := inv.Int(name)
	if !ok {
		return 0, NewUserError(fmt.Sprintf("Missing option `%s`.", name), "missing option "+name)
	}
	return v, nil
}

// RequireSnowflake is Snowflake for required options
func (inv *Invocation) RequireSnowflake(name string) (int64, error) {
	v, ok := inv.Snowflake(name)
	if !ok {
		return 0, NewUserError(fmt.Sprintf("Missing option `%s`.", name), "missing option "+name)
	}
	return v, nil
}

// IsBotUser reports whether a resolved user option refers to a bot account
func (inv *Invocation) IsBotUser(userID int64) bool {
	if inv.resolved == nil || inv.resolved.Users == nil {
		return false
	}
	user, ok := inv.resolved.Users[FormatID(userID)]
	return ok && user.Bot
}
