package bot

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"pointsbot/bot/common"

	"github.com/bwmarrin/discordgo"
)

var (
	guildOnly = &[]discordgo.InteractionContextType{discordgo.InteractionContextGuild}
	// Admin commands are hidden from members without Manage Roles; the handlers
	// still check ADMIN_ROLES for guilds that grant the permission more widely
	adminPermission = int64(discordgo.PermissionManageRoles)
	minPositive     = float64(1)
	minZero         = float64(0)
)

func memberOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "member",
		Description: description,
		Required:    true,
	}
}

func reasonOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: "Причина",
		MaxLength:   200,
	}
}

// commandDefinitions returns every slash command the bot serves
func commandDefinitions() []*discordgo.ApplicationCommand {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "points",
			Description: "Проверить свои поинты или поинты другого пользователя",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Пользователь",
				},
			},
		},
		{
			Name:        "leaderboard",
			Description: "Таблица лидеров по поинтам",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "page",
					Description: "Номер страницы",
					MinValue:    &minPositive,
				},
			},
		},
		{
			Name:        "history",
			Description: "История ваших транзакций",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "limit",
					Description: "Сколько транзакций показать",
					MinValue:    &minPositive,
					MaxValue:    common.MaxHistoryLimit,
				},
			},
		},
		{
			Name:        "roles",
			Description: "Показать систему ролей",
		},
		{
			Name:        "help",
			Description: "Показать все команды",
		},
		{
			Name:                     "addpoints",
			Description:              "Выдать поинты пользователю",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				memberOption("Получатель"),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Количество поинтов",
					Required:    true,
					MinValue:    &minPositive,
				},
				reasonOption(),
			},
		},
		{
			Name:                     "removepoints",
			Description:              "Забрать поинты у пользователя",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				memberOption("Пользователь"),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Количество поинтов",
					Required:    true,
					MinValue:    &minPositive,
				},
				reasonOption(),
			},
		},
		{
			Name:                     "setpoints",
			Description:              "Установить точное количество поинтов",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				memberOption("Пользователь"),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Новое количество поинтов",
					Required:    true,
					MinValue:    &minZero,
				},
				reasonOption(),
			},
		},
		{
			Name:                     "setrole",
			Description:              "Установить роль за определенное количество поинтов",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "points",
					Description: "Сколько поинтов нужно для роли",
					Required:    true,
					MinValue:    &minPositive,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "Название роли",
					Required:    true,
					MaxLength:   100,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "color",
					Description: "Цвет роли, например #3498db",
					MaxLength:   7,
				},
			},
		},
		{
			Name:                     "removerole",
			Description:              "Удалить настройку роли",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "points",
					Description: "Порог удаляемой роли",
					Required:    true,
					MinValue:    &minPositive,
				},
			},
		},
		{
			Name:                     "resetpoints",
			Description:              "Сбросить все поинты на сервере",
			DefaultMemberPermissions: &adminPermission,
		},
		{
			Name:                     "stats",
			Description:              "Статистика сервера",
			DefaultMemberPermissions: &adminPermission,
		},
		{
			Name:                     "notifications",
			Description:              "Канал уведомлений о смене ролей",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Отправлять уведомления в канал",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "channel",
							Description:  "Канал",
							Required:     true,
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "clear",
					Description: "Отключить уведомления",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Показать текущий канал",
				},
			},
		},
	}

	for _, cmd := range commands {
		cmd.Contexts = guildOnly
	}
	return commands
}

// registerCommands replaces the application's commands in the configured scope
func (b *Bot) registerCommands() error {
	commands := commandDefinitions()

	created, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.config.GuildID, commands)
	if err != nil {
		return fmt.Errorf("cannot register commands: %w", err)
	}

	scope := b.config.GuildID
	if scope == "" {
		scope = "global"
	}
	log.WithFields(log.Fields{
		"count": len(created),
		"scope": scope,
	}).Info("Registered slash commands")

	return nil
}
