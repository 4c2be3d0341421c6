package utils

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/disgoorg/slotbot/internal/domain/slots"
)

const (
	ErrorColor   = 0xFF0000
	SuccessColor = 0x2ECC71
	InfoColor    = 0x3498DB
	WarningColor = 0xFFAA00
)

// ResponseHandler provides standardized response methods for commands
type ResponseHandler struct{}

var EH = &ResponseHandler{}

// ErrorType represents different categories of errors for consistent handling
type ErrorType int

const (
	// UserError - bad arguments, such as an unparseable duration
	UserError ErrorType = iota
	// SystemError - store or Discord API failures
	SystemError
	// NotFoundError - unknown slot, user or category
	NotFoundError
	// PermissionError - the invoker is not an administrator
	PermissionError
	// BusinessLogicError - duplicate slots and disallowed state changes
	BusinessLogicError
)

func getErrorPrefix(errorType ErrorType) string {
	switch errorType {
	case UserError:
		return "⚠️"
	case SystemError:
		return "🔧"
	case NotFoundError:
		return "🔍"
	case PermissionError:
		return "🚫"
	case BusinessLogicError:
		return "⏰"
	default:
		return "❌"
	}
}

func getErrorColor(errorType ErrorType) int {
	switch errorType {
	case UserError, BusinessLogicError:
		return WarningColor
	case NotFoundError:
		return InfoColor
	default:
		return ErrorColor
	}
}

// Classify maps a slot domain error to an error type and the text shown to the invoker.
// Anything it does not recognise is a system error with a generic message.
func Classify(err error) (ErrorType, string) {
	switch {
	case errors.Is(err, slots.ErrInvalidDuration):
		return UserError, err.Error()
	case errors.Is(err, slots.ErrSlotNotFound):
		return NotFoundError, "No slot found for that channel."
	case errors.Is(err, slots.ErrUserNotFound):
		return NotFoundError, "User not found in this server."
	case errors.Is(err, slots.ErrOwnerNotInGuild):
		return NotFoundError, "The slot owner is no longer in this server."
	case errors.Is(err, slots.ErrCategoryNotFound):
		return NotFoundError, "Category not found. Please check the category ID in the config."
	case errors.Is(err, slots.ErrDuplicateSlot):
		return BusinessLogicError, "That user or channel already has an active slot."
	case errors.Is(err, slots.ErrInvalidTransition):
		return BusinessLogicError, err.Error()
	default:
		return SystemError, "Something went wrong while talking to Discord. Please try again."
	}
}

func classifiedEmbed(errorType ErrorType, message string) discord.Embed {
	return discord.Embed{
		Description: getErrorPrefix(errorType) + " " + message,
		Color:       getErrorColor(errorType),
	}
}

// CreateClassifiedError answers the interaction with an ephemeral error embed.
func (h *ResponseHandler) CreateClassifiedError(event *handler.CommandEvent, errorType ErrorType, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{classifiedEmbed(errorType, message)},
		Flags:  discord.MessageFlagEphemeral,
	})
}

// CreatePermissionError creates an error response for unauthorized actions
func (h *ResponseHandler) CreatePermissionError(event *handler.CommandEvent, action string) error {
	return h.CreateClassifiedError(event, PermissionError, fmt.Sprintf("You don't have permission to %s", action))
}

// CreateUserError creates an error response for user input issues
func (h *ResponseHandler) CreateUserError(event *handler.CommandEvent, message string) error {
	return h.CreateClassifiedError(event, UserError, message)
}

// FollowupError reports err on a deferred interaction. System errors are also logged and
// returned so the command is recorded as failed.
func (h *ResponseHandler) FollowupError(event *handler.CommandEvent, err error) error {
	errorType, message := Classify(err)
	_, ferr := event.CreateFollowupMessage(discord.MessageCreate{
		Embeds: []discord.Embed{classifiedEmbed(errorType, message)},
		Flags:  discord.MessageFlagEphemeral,
	})
	return errors.Join(commandFailure(event.SlashCommandInteractionData().CommandName(), event.User().ID, err), ferr)
}

// commandFailure logs err when it is a system error and returns it; domain errors are the
// invoker's to read and yield nil.
func commandFailure(command string, userID snowflake.ID, err error) error {
	if errorType, _ := Classify(err); errorType != SystemError {
		return nil
	}
	slog.Error("Command hit a system error",
		slog.String("type", "error"),
		slog.String("command", command),
		slog.String("user_id", userID.String()),
		slog.Any("error", err))
	return err
}

// FollowupSuccess confirms a deferred interaction.
func (h *ResponseHandler) FollowupSuccess(event *handler.CommandEvent, message string) error {
	_, err := event.CreateFollowupMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: "✅ " + message,
			Color:       SuccessColor,
		}},
		Flags: discord.MessageFlagEphemeral,
	})
	return err
}

// CreateInfoEmbed creates a standard info embed for command events
func (h *ResponseHandler) CreateInfoEmbed(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: message,
			Color:       InfoColor,
		}},
		Flags: discord.MessageFlagEphemeral,
	})
}
