package settings

import (
	"context"
	"fmt"

	"pointsbot/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleSet(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		return common.NewSystemError(err, "Invalid guild ID")
	}

	var channelID int64
	for _, opt := range options {
		if opt.Name == "channel" {
			if channelID, err = common.ParseID(opt.Value.(string)); err != nil {
				return common.NewUserError("Некорректный канал", "Invalid channel option")
			}
		}
	}
	if channelID == 0 {
		return common.NewUserError("Укажите канал для уведомлений", "Missing channel option")
	}

	if err := f.updateChannel(context.Background(), guildID, &channelID); err != nil {
		return err
	}

	return common.RespondWithEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "✅ Канал уведомлений установлен",
		Description: fmt.Sprintf("Уведомления о новых ролях будут приходить в <#%d>", channelID),
		Color:       common.ColorSuccess,
	}, nil, true)
}

func (f *Feature) handleClear(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		return common.NewSystemError(err, "Invalid guild ID")
	}

	if err := f.updateChannel(context.Background(), guildID, nil); err != nil {
		return err
	}

	return common.RespondWithEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "✅ Уведомления отключены",
		Description: "Уведомления о смене ролей больше не отправляются",
		Color:       common.ColorSuccess,
	}, nil, true)
}

func (f *Feature) handleShow(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		return common.NewSystemError(err, "Invalid guild ID")
	}

	channelID, err := f.currentChannel(context.Background(), guildID)
	if err != nil {
		return err
	}

	description := "Канал уведомлений не настроен"
	if channelID != nil {
		description = fmt.Sprintf("Уведомления приходят в <#%d>", *channelID)
	}

	return common.RespondWithEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "🔔 Уведомления",
		Description: description,
		Color:       common.ColorInfo,
	}, nil, true)
}

func (f *Feature) updateChannel(ctx context.Context, guildID int64, channelID *int64) error {
	err := common.InGuild(ctx, f.uowFactory, guildID, func(svc *common.GuildServices) error {
		return svc.Settings.UpdateNotificationChannel(ctx, channelID)
	})
	if err != nil {
		return fmt.Errorf("failed to update notification channel: %w", err)
	}

	log.WithFields(log.Fields{
		"guildID":   guildID,
		"channelID": channelID,
	}).Info("Updated notification channel")
	return nil
}

// currentChannel returns the configured notification channel, nil when announcements are off
func (f *Feature) currentChannel(ctx context.Context, guildID int64) (*int64, error) {
	var channelID *int64
	err := common.InGuild(ctx, f.uowFactory, guildID, func(svc *common.GuildServices) error {
		settings, err := svc.Settings.GetOrCreateSettings(ctx)
		if err != nil {
			return err
		}
		if settings.HasNotificationChannel() {
			channelID = settings.NotificationChannelID
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}
	return channelID, nil
}
