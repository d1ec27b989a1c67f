package common

import (
	"errors"
	"fmt"

	"pointsbot/domain"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const genericErrorMessage = "Что-то пошло не так. Попробуйте позже."

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string      // Message shown to Discord user
	LogMessage  string      // Internal message for logging
	Err         error       // Underlying error
	Context     interface{} // Additional context for logging
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for user-caused issues (validation, bad options, etc)
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
	}
}

// NewSystemError creates an error for system issues (storage, unexpected state, etc)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: genericErrorMessage,
		LogMessage:  logMessage,
		Err:         err,
	}
}

// UserMessage picks the message shown for err. Domain validation errors get a
// specific text, everything else the generic failure.
func UserMessage(err error) string {
	var botErr *BotError
	if errors.As(err, &botErr) && botErr.UserMessage != genericErrorMessage {
		return botErr.UserMessage
	}

	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return "Количество поинтов должно быть положительным!"
	case errors.Is(err, domain.ErrInvalidRole):
		return "Некорректное название роли!"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "База данных недоступна. Попробуйте позже."
	case errors.Is(err, domain.ErrRolePermission):
		return "У бота недостаточно прав для управления ролями."
	default:
		return genericErrorMessage
	}
}

// RespondWithError sends an error message as an interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
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
		Content: fmt.Sprintf("❌ %s", message),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error sending follow-up error message: %v", err)
	}
}

// HandleError logs err and answers the interaction with the matching user message
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, deferred bool) {
	fields := log.Fields{
		"error":   err.Error(),
		"command": commandName(i),
	}
	if i.Member != nil && i.Member.User != nil {
		fields["user_id"] = i.Member.User.ID
	}

	var botErr *BotError
	if errors.As(err, &botErr) {
		fields["context"] = botErr.Context
		log.WithFields(fields).Error(botErr.LogMessage)
	} else {
		log.WithFields(fields).Error("Unexpected error in bot command")
	}

	message := UserMessage(err)
	if deferred {
		FollowUpWithError(s, i, message)
	} else {
		RespondWithError(s, i, message)
	}
}

func commandName(i *discordgo.InteractionCreate) string {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return i.ApplicationCommandData().Name
	case discordgo.InteractionMessageComponent:
		return i.MessageComponentData().CustomID
	default:
		return ""
	}
}
