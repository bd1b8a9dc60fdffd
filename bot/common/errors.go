package common

import (
	"errors"
	"fmt"

	"guildkeeper/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string // Message shown to Discord user
	LogMessage  string // Internal message for logging
	Err         error
	System      bool // System errors are logged at error level
}

func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for user-caused issues (validation, insufficient funds, etc)
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
	}
}

// NewSystemError creates an error for system issues (database, unexpected state, etc)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: "Something went wrong. Please try again later.",
		LogMessage:  logMessage,
		Err:         err,
		System:      true,
	}
}

// domainMessages maps domain outcomes to what the invoking member sees
var domainMessages = []struct {
	err     error
	message string
}{
	{interfaces.ErrInvalidAmount, "The amount must be a positive number."},
	{interfaces.ErrInvalidSetting, "That value is not allowed for this setting."},
	{interfaces.ErrItemNotFound, "There is no shop item with that ID."},
	{interfaces.ErrDuplicateShopItem, "That role is already for sale in the shop."},
	{interfaces.ErrSelfWarn, "You cannot warn yourself."},
	{interfaces.ErrInsufficientBalance, "You do not have enough currency for that."},
	{interfaces.ErrEntitlementAlreadyHeld, "You already have that role."},
	{interfaces.ErrEntitlementGrantFailed, "The role could not be granted. Your payment has been refunded."},
	{interfaces.ErrActuatorForbidden, "I do not have permission to do that. Check my role position and permissions."},
	{interfaces.ErrTargetNotFound, "That member could not be found."},
	{interfaces.ErrWarningNotFound, "There is no warning with that ID in this server."},
}

// FromDomainError converts a service error into a BotError. Known domain
// outcomes become user errors, anything else is a system error.
func FromDomainError(err error, logMessage string) *BotError {
	var botErr *BotError
	if errors.As(err, &botErr) {
		return botErr
	}
	for _, m := range domainMessages {
		if errors.Is(err, m.err) {
			return &BotError{
				UserMessage: m.message,
				LogMessage:  logMessage,
				Err:         err,
			}
		}
	}
	return NewSystemError(err, logMessage)
}

// RespondWithError sends an error message as an ephemeral interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "❌ " + message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// FollowUpWithError sends an error message as a follow-up to a deferred interaction
func FollowUpWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: "❌ " + message,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error sending follow-up error message: %v", err)
	}
}

// HandleError logs err and tells the member what went wrong
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, deferred bool) {
	botErr := FromDomainError(err, "command failed")

	fields := log.Fields{
		"guild_id":     i.GuildID,
		"command":      i.ApplicationCommandData().Name,
		"error":        botErr.Error(),
		"user_message": botErr.UserMessage,
	}
	if i.Member != nil && i.Member.User != nil {
		fields["user_id"] = i.Member.User.ID
	}
	if botErr.System {
		log.WithFields(fields).Error(botErr.LogMessage)
	} else {
		log.WithFields(fields).Debug(botErr.LogMessage)
	}

	if deferred {
		FollowUpWithError(s, i, botErr.UserMessage)
	} else {
		RespondWithError(s, i, botErr.UserMessage)
	}
}
