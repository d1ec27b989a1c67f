package common

import (
	"errors"
	"fmt"
	"testing"

	"pointsbot/domain"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"invalid amount", fmt.Errorf("credit: %w", domain.ErrInvalidAmount), "Количество поинтов должно быть положительным!"},
		{"storage", fmt.Errorf("failed to begin: %w: %w", domain.ErrStorageUnavailable, errors.New("dial tcp")), "База данных недоступна. Попробуйте позже."},
		{"user error wins", NewUserError("Участник не найден", "member lookup failed"), "Участник не найден"},
		{"system error unwraps", NewSystemError(domain.ErrRolePermission, "grant failed"), "У бота недостаточно прав для управления ролями."},
		{"unknown", errors.New("boom"), genericErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UserMessage(tt.err))
		})
	}
}

func TestBotError_Unwrap(t *testing.T) {
	err := NewSystemError(domain.ErrStorageUnavailable, "commit failed")
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Contains(t, err.Error(), "commit failed")
}

func TestDisableComponents(t *testing.T) {
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "ok", CustomID: "a"},
			discordgo.Button{Label: "no", CustomID: "b"},
		}},
	}

	disabled := DisableComponents(components)
	require.Len(t, disabled, 1)
	row, ok := disabled[0].(discordgo.ActionsRow)
	require.True(t, ok)
	for _, c := range row.Components {
		button, ok := c.(discordgo.Button)
		require.True(t, ok)
		assert.True(t, button.Disabled)
	}

	// Original is untouched
	original := components[0].(discordgo.ActionsRow).Components[0].(discordgo.Button)
	assert.False(t, original.Disabled)
}
