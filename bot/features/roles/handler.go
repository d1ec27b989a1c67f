package roles

import (
	"context"
	"fmt"

	"pointsbot/bot/common"
	"pointsbot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

func (f *Feature) handleRoles(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		return common.NewSystemError(err, "Invalid guild ID")
	}

	ctx := context.Background()
	var thresholds []*entities.RoleThreshold
	err = common.InGuild(ctx, f.uowFactory, guildID, func(svc *common.GuildServices) error {
		var err error
		thresholds, err = svc.Tiers.ListThresholds(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to list role thresholds: %w", err)
	}

	return common.RespondWithEmbed(s, i, BuildRolesEmbed(thresholds, f.adminRoles), nil, false)
}

func (f *Feature) handleSetRole(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if err := common.RequireAdmin(s, i, f.adminRoles); err != nil {
		return err
	}
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		return common.NewSystemError(err, "Invalid guild ID")
	}

	var (
		points int64
		name   string
		color  = entities.DefaultRoleColor
	)
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "points":
			points = opt.IntValue()
		case "name":
			name = opt.StringValue()
		case "color":
			color = opt.StringValue()
		}
	}

	threshold, err := f.setRole(context.Background(), guildID, points, name, color)
	if err != nil {
		return err
	}

	return common.RespondWithEmbed(s, i, BuildRoleSetEmbed(threshold), nil, false)
}

func (f *Feature) handleRemoveRole(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if err := common.RequireAdmin(s, i, f.adminRoles); err != nil {
		return err
	}
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		return common.NewSystemError(err, "Invalid guild ID")
	}

	var points int64
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "points" {
			points = opt.IntValue()
		}
	}

	removed, err := f.removeRole(context.Background(), guildID, points)
	if err != nil {
		return err
	}

	return common.RespondWithEmbed(s, i, BuildRoleRemovedEmbed(removed), nil, false)
}

func (f *Feature) setRole(ctx context.Context, guildID, points int64, name, color string) (*entities.RoleThreshold, error) {
	var threshold *entities.RoleThreshold
	err := common.InGuild(ctx, f.uowFactory, guildID, func(svc *common.GuildServices) error {
		var err error
		threshold, err = svc.Tiers.SetThreshold(ctx, points, name, color)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set role threshold: %w", err)
	}
	return threshold, nil
}

// removeRole deletes the tier at points and returns it, or a user error when there is none
func (f *Feature) removeRole(ctx context.Context, guildID, points int64) (*entities.RoleThreshold, error) {
	var removed *entities.RoleThreshold
	err := common.InGuild(ctx, f.uowFactory, guildID, func(svc *common.GuildServices) error {
		thresholds, err := svc.Tiers.ListThresholds(ctx)
		if err != nil {
			return err
		}
		for _, t := range thresholds {
			if t.PointsRequired == points {
				removed = t
				break
			}
		}
		if removed == nil {
			return common.NewUserError(
				fmt.Sprintf("Не найдена роль за %d поинтов!", points),
				"Role threshold not found",
			)
		}

		_, err = svc.Tiers.RemoveThreshold(ctx, points)
		return err
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
