package points

import (
	"context"
	"fmt"

	"pointsbot/bot/common"
	"pointsbot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

func (f *Feature) handlePoints(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		return common.NewSystemError(err, "Invalid guild ID")
	}

	target := i.Member.User
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "member" {
			if user := opt.UserValue(s); user != nil {
				target = user
			}
		}
	}

	userID, err := common.ParseID(target.ID)
	if err != nil {
		return common.NewSystemError(err, "Invalid user ID")
	}

	card, err := f.loadCard(context.Background(), guildID, userID)
	if err != nil {
		return err
	}
	card.DisplayName = common.GetDisplayName(s, i.GuildID, target.ID)
	card.AvatarURL = target.AvatarURL("")

	return common.RespondWithEmbed(s, i, BuildPointsEmbed(card), nil, false)
}

func (f *Feature) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		return common.NewSystemError(err, "Invalid guild ID")
	}
	userID, err := common.ParseID(i.Member.User.ID)
	if err != nil {
		return common.NewSystemError(err, "Invalid user ID")
	}

	limit := common.DefaultHistoryLimit
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "limit" {
			limit = int(opt.IntValue())
		}
	}

	history, err := f.loadHistory(context.Background(), guildID, userID, limit)
	if err != nil {
		return err
	}

	return common.RespondWithEmbed(s, i, BuildHistoryEmbed(i.Member.DisplayName(), history), nil, false)
}

// loadCard reads the member's balance, rank and the guild tier table
func (f *Feature) loadCard(ctx context.Context, guildID, userID int64) (*Card, error) {
	card := &Card{UserID: userID}

	err := common.InGuild(ctx, f.uowFactory, guildID, func(svc *common.GuildServices) error {
		var err error
		if card.Balance, err = svc.Ledger.GetBalance(ctx, userID); err != nil {
			return fmt.Errorf("failed to get balance: %w", err)
		}
		if card.Rank, err = svc.Ledger.Rank(ctx, userID); err != nil {
			return fmt.Errorf("failed to get rank: %w", err)
		}
		if card.Thresholds, err = svc.Tiers.ListThresholds(ctx); err != nil {
			return fmt.Errorf("failed to get role thresholds: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// loadHistory returns the member's latest transactions, limit clamped to 1..MaxHistoryLimit
func (f *Feature) loadHistory(ctx context.Context, guildID, userID int64, limit int) ([]*entities.Transaction, error) {
	if limit < 1 {
		limit = common.DefaultHistoryLimit
	}
	if limit > common.MaxHistoryLimit {
		limit = common.MaxHistoryLimit
	}

	var history []*entities.Transaction
	err := common.InGuild(ctx, f.uowFactory, guildID, func(svc *common.GuildServices) error {
		var err error
		history, err = svc.Ledger.TransactionHistory(ctx, userID, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	return history, nil
}
