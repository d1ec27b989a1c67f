package leaderboard

import (
	"fmt"
	"strings"

	"pointsbot/bot/common"
	"pointsbot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

const noTier = "Нет роли"

// Row is one rendered leaderboard line
type Row struct {
	Position int
	UserID   int64
	Name     string
	Points   int64
	Tier     *entities.RoleThreshold
}

// TierName returns the row's tier role name or the no-tier label
func (r Row) TierName() string {
	if r.Tier == nil {
		return noTier
	}
	return r.Tier.RoleName
}

// BuildEmptyEmbed is shown when nobody has points yet
func BuildEmptyEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "📊 Таблица лидеров",
		Description: "Пока никто не имеет поинтов!",
		Color:       common.ColorInfo,
	}
}

// BuildLeaderboardEmbed renders one page of the leaderboard with the guild totals
func BuildLeaderboardEmbed(rows []Row, stats *entities.GuildStats, page, totalPages int, withImage bool) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🏆 Таблица лидеров",
		Color: common.ColorPoints,
	}

	for _, row := range rows {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("%s %s", common.Medal(row.Position), row.Name),
			Value:  fmt.Sprintf("**%s** поинтов | 🏅 %s", common.FormatPoints(row.Points), row.TierName()),
			Inline: false,
		})
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "📊 Статистика сервера",
		Value:  formatStats(stats),
		Inline: false,
	})

	if totalPages > 1 {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Страница %d/%d | Всего участников: %d", page, totalPages, stats.AccountCount),
		}
	}

	if withImage {
		embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + ImageFileName}
	}

	return embed
}

// BuildStatsEmbed renders the admin server statistics
func BuildStatsEmbed(stats *entities.GuildStats, top []Row, tierCount int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "📊 Статистика сервера",
		Color: common.ColorAdmin,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "👥 Пользователи", Value: fmt.Sprintf("Всего: **%d**", stats.AccountCount), Inline: true},
			{Name: "🏆 Поинты", Value: fmt.Sprintf("Всего: **%s**", common.FormatPoints(stats.TotalPoints)), Inline: true},
			{Name: "📈 Среднее", Value: fmt.Sprintf("**%s** поинтов", common.FormatAverage(stats.AveragePoints)), Inline: true},
		},
	}

	if len(top) > 0 {
		var b strings.Builder
		for _, row := range top {
			fmt.Fprintf(&b, "**%d.** %s: **%s** поинтов\n", row.Position, row.Name, common.FormatPoints(row.Points))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "🏅 Топ-3",
			Value:  b.String(),
			Inline: false,
		})
	}

	if tierCount > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "🎯 Уровни",
			Value:  fmt.Sprintf("Настроено ролей: **%d**", tierCount),
			Inline: true,
		})
	}

	return embed
}

func formatStats(stats *entities.GuildStats) string {
	return fmt.Sprintf("• Всего пользователей: **%d**\n• Всего поинтов: **%s**\n• Среднее: **%s**\n• Максимум: **%s**",
		stats.AccountCount,
		common.FormatPoints(stats.TotalPoints),
		common.FormatAverage(stats.AveragePoints),
		common.FormatPoints(stats.MaxPoints),
	)
}
