package help

import (
	"fmt"
	"strings"

	"pointsbot/bot/common"

	"github.com/bwmarrin/discordgo"
)

// Feature answers /help
type Feature struct {
	adminRoles []string
}

// NewFeature creates a new help feature instance
func NewFeature(adminRoles []string) *Feature {
	return &Feature{adminRoles: adminRoles}
}

// HandleCommand responds with the command reference; admins also see the admin section
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	embed := BuildHelpEmbed(common.IsUserAdmin(s, i, f.adminRoles), f.adminRoles)
	return common.RespondWithEmbed(s, i, embed, nil, true)
}

// BuildHelpEmbed lists the available commands
func BuildHelpEmbed(isAdmin bool, adminRoles []string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "🆘 Помощь по командам",
		Description: "Все команды доступны как slash-команды (/)",
		Color:       common.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "👤 Команды для всех",
				Value: "• `/points [пользователь]` - Проверить поинты\n" +
					"• `/leaderboard [страница]` - Таблица лидеров\n" +
					"• `/history [лимит]` - История транзакций\n" +
					"• `/roles` - Система ролей\n" +
					"• `/help` - Эта справка",
			},
		},
	}

	if isAdmin {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "👑 Команды для админов",
			Value: "• `/addpoints пользователь количество [причина]` - Выдать поинты\n" +
				"• `/removepoints пользователь количество [причина]` - Забрать поинты\n" +
				"• `/setpoints пользователь количество [причина]` - Установить поинты\n" +
				"• `/setrole количество название [цвет]` - Установить роль\n" +
				"• `/removerole количество` - Удалить роль\n" +
				"• `/resetpoints` - Сбросить все поинты\n" +
				"• `/stats` - Статистика сервера\n" +
				"• `/notifications set|clear|show` - Канал уведомлений о ролях",
		})
	}

	info := "• Роли выдаются автоматически"
	if len(adminRoles) > 0 {
		info = fmt.Sprintf("• Админские роли: %s\n%s", strings.Join(adminRoles, ", "), info)
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "ℹ️ Информация",
		Value: info,
	})

	return embed
}
