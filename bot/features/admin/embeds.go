package admin

import (
	"fmt"

	"pointsbot/bot/common"
	"pointsbot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

// Change describes one applied admin balance change
type Change struct {
	UserID     int64
	ActorID    int64
	Amount     int64 // amount actually applied
	NewBalance int64
	Reason     string
}

// BuildCreditEmbed confirms /addpoints
func BuildCreditEmbed(c *Change) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "✅ Поинты выданы!",
		Color: common.ColorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Получатель", Value: common.GetUserMention(c.UserID), Inline: true},
			{Name: "Добавлено", Value: fmt.Sprintf("%s поинтов", common.FormatPoints(c.Amount)), Inline: true},
			{Name: "Новый баланс", Value: fmt.Sprintf("%s поинтов", common.FormatPoints(c.NewBalance)), Inline: true},
			{Name: "Причина", Value: c.Reason},
			{Name: "Выдал", Value: common.GetUserMention(c.ActorID), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("ID: %d", c.UserID)},
	}
}

// BuildDebitEmbed confirms /removepoints, warning when there was nothing to remove
func BuildDebitEmbed(c *Change) *discordgo.MessageEmbed {
	footer := &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("ID: %d", c.UserID)}

	if c.Amount == 0 {
		return &discordgo.MessageEmbed{
			Title:       "⚠️ Внимание",
			Description: "У пользователя нет поинтов для изъятия",
			Color:       common.ColorWarning,
			Footer:      footer,
		}
	}

	return &discordgo.MessageEmbed{
		Title: "✅ Поинты изъяты!",
		Color: common.ColorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Пользователь", Value: common.GetUserMention(c.UserID), Inline: true},
			{Name: "Изъято", Value: fmt.Sprintf("%s поинтов", common.FormatPoints(c.Amount)), Inline: true},
			{Name: "Новый баланс", Value: fmt.Sprintf("%s поинтов", common.FormatPoints(c.NewBalance)), Inline: true},
			{Name: "Причина", Value: c.Reason},
			{Name: "Изъял", Value: common.GetUserMention(c.ActorID), Inline: true},
		},
		Footer: footer,
	}
}

// BuildSetEmbed confirms /setpoints
func BuildSetEmbed(c *Change) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "✅ Поинты установлены!",
		Color: common.ColorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Пользователь", Value: common.GetUserMention(c.UserID), Inline: true},
			{Name: "Новое значение", Value: fmt.Sprintf("%s поинтов", common.FormatPoints(c.NewBalance)), Inline: true},
			{Name: "Причина", Value: c.Reason},
			{Name: "Установил", Value: common.GetUserMention(c.ActorID), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("ID: %d", c.UserID)},
	}
}

// BuildResetPromptEmbed asks for confirmation before wiping the guild
func BuildResetPromptEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "⚠️ ОПАСНОЕ ДЕЙСТВИЕ",
		Description: "Вы уверены, что хотите сбросить ВСЕ поинты на сервере?\nЭто действие необратимо!",
		Color:       common.ColorError,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Что будет сброшено:",
				Value: "• Все поинты пользователей\n• Вся история транзакций\n• Все выданные роли за поинты",
			},
		},
	}
}

// BuildResetDoneEmbed reports a completed reset
func BuildResetDoneEmbed(summary *entities.ResetSummary) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "✅ Все поинты сброшены!",
		Description: "Все данные о поинтах на этом сервере были удалены.",
		Color:       common.ColorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Аккаунтов удалено", Value: fmt.Sprintf("%d", summary.AccountsRemoved), Inline: true},
			{Name: "Транзакций удалено", Value: fmt.Sprintf("%d", summary.TransactionsRemoved), Inline: true},
		},
	}
}

// BuildResetCancelledEmbed reports a cancelled reset
func BuildResetCancelledEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "❌ Сброс отменен",
		Color: common.ColorWarning,
	}
}

func resetButtons(confirmID, cancelID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "✅ Подтвердить", Style: discordgo.DangerButton, CustomID: confirmID},
				discordgo.Button{Label: "❌ Отмена", Style: discordgo.SecondaryButton, CustomID: cancelID},
			},
		},
	}
}
