package points

import (
	"fmt"
	"strings"

	"pointsbot/bot/common"
	"pointsbot/domain/entities"
	"pointsbot/domain/services"

	"github.com/bwmarrin/discordgo"
)

// Card is everything the /points embed shows about one member
type Card struct {
	UserID      int64
	DisplayName string
	AvatarURL   string
	Balance     int64
	Rank        int
	Thresholds  []*entities.RoleThreshold
}

// BuildPointsEmbed renders a member's balance, rank and tier progress
func BuildPointsEmbed(card *Card) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🏆 Поинты %s", card.DisplayName),
		Color: common.ColorPoints,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Баланс", Value: fmt.Sprintf("**%s** поинтов", common.FormatPoints(card.Balance)), Inline: true},
			{Name: "Позиция в рейтинге", Value: fmt.Sprintf("**#%d**", card.Rank), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("ID: %d", card.UserID)},
	}

	if current := services.SelectRole(card.Balance, card.Thresholds); current != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Текущая роль",
			Value:  fmt.Sprintf("**%s**", current.RoleName),
			Inline: true,
		})
	}

	if len(card.Thresholds) > 0 {
		lines := make([]string, 0, len(card.Thresholds))
		for _, t := range card.Thresholds {
			status := "⏳"
			if card.Balance >= t.PointsRequired {
				status = "✅"
			}
			lines = append(lines, fmt.Sprintf("%s **%s** - %s поинтов", status, t.RoleName, common.FormatPoints(t.PointsRequired)))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "🏅 Система ролей",
			Value: strings.Join(lines, "\n"),
		})

		if next := services.NextThreshold(card.Balance, card.Thresholds); next != nil {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  "Следующая цель",
				Value: fmt.Sprintf("**%s** (нужно ещё %s поинтов)", next.RoleName, common.FormatPoints(next.PointsRequired-card.Balance)),
			})
		} else if card.Balance > 0 {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  "🎉 Поздравляем!",
				Value: "Вы достигли максимальной роли!",
			})
		}
	}

	if card.AvatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: card.AvatarURL}
	}

	return embed
}

// BuildHistoryEmbed lists transactions newest first with running totals
func BuildHistoryEmbed(displayName string, history []*entities.Transaction) *discordgo.MessageEmbed {
	if len(history) == 0 {
		return &discordgo.MessageEmbed{
			Title:       "📜 История транзакций",
			Description: "У вас нет истории транзакций.",
			Color:       common.ColorInfo,
		}
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📜 История транзакций %s", displayName),
		Color: common.ColorInfo,
	}

	var gained, spent int64
	for _, tx := range history {
		emoji := "📉"
		if tx.IsCredit() {
			gained += tx.Amount
			emoji = "📈"
		} else {
			spent -= tx.Amount
		}

		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s %s", emoji, common.FormatDate(tx.CreatedAt)),
			Value: fmt.Sprintf("**%s** поинтов\n*%s*", common.FormatSignedPoints(tx.Amount), reasonOrDash(tx.Reason)),
		})
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "📊 Итоги",
		Value: fmt.Sprintf("Получено: **+%s**\nПотрачено: **-%s**\nБаланс: **%s**",
			common.FormatPoints(gained),
			common.FormatPoints(spent),
			common.FormatPoints(gained-spent),
		),
	})

	return embed
}

func reasonOrDash(reason string) string {
	if strings.TrimSpace(reason) == "" {
		return "—"
	}
	return reason
}
