package roles

import (
	"fmt"
	"strings"

	"pointsbot/bot/common"
	"pointsbot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

// BuildRolesEmbed lists the configured tiers, lowest first
func BuildRolesEmbed(thresholds []*entities.RoleThreshold, adminRoles []string) *discordgo.MessageEmbed {
	if len(thresholds) == 0 {
		return &discordgo.MessageEmbed{
			Title:       "🏅 Система ролей",
			Description: "Система ролей не настроена.\nАдмины могут настроить с помощью `/setrole`",
			Color:       common.ColorInfo,
		}
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🏅 Система ролей",
		Description: "Роли выдаются автоматически при достижении определенного количества поинтов",
		Color:       common.ColorPoints,
	}

	for _, t := range thresholds {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("🎖️ %s", t.RoleName),
			Value:  fmt.Sprintf("**%s** поинтов\nЦвет: `%s`", common.FormatPoints(t.PointsRequired), t.RoleColor),
			Inline: true,
		})
	}

	if len(adminRoles) > 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Админские роли: " + strings.Join(adminRoles, ", ")}
	}

	return embed
}

// BuildRoleSetEmbed confirms a created or overwritten tier
func BuildRoleSetEmbed(threshold *entities.RoleThreshold) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "✅ Роль установлена!",
		Description: fmt.Sprintf("Роль **%s** будет выдаваться за **%s** поинтов", threshold.RoleName, common.FormatPoints(threshold.PointsRequired)),
		Color:       threshold.ColorValue(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Цвет роли", Value: threshold.RoleColor, Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("ID сервера: %d", threshold.GuildID)},
	}
}

// BuildRoleRemovedEmbed confirms a removed tier
func BuildRoleRemovedEmbed(threshold *entities.RoleThreshold) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "✅ Роль удалена!",
		Description: fmt.Sprintf("Удалена настройка роли **%s** за **%s** поинтов", threshold.RoleName, common.FormatPoints(threshold.PointsRequired)),
		Color:       common.ColorSuccess,
	}
}
