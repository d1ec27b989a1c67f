package leaderboard

import (
	"context"
	"fmt"

	"pointsbot/bot/common"
	"pointsbot/domain/entities"
	"pointsbot/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// nameResolver turns a user ID into the name shown on the board
type nameResolver func(userID int64) string

type page struct {
	Rows       []Row
	Stats      *entities.GuildStats
	Number     int
	TotalPages int
	TierCount  int
}

func (f *Feature) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		return common.NewSystemError(err, "Invalid guild ID")
	}

	requested := 1
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "page" {
			requested = int(opt.IntValue())
		}
	}

	if err := common.DeferResponse(s, i, false); err != nil {
		return fmt.Errorf("failed to defer leaderboard response: %w", err)
	}

	ctx := context.Background()
	data, err := f.loadPage(ctx, guildID, requested, common.LeaderboardPageSize, func(userID int64) string {
		return common.GetDisplayNameInt64(s, i.GuildID, userID)
	})
	if err != nil {
		common.HandleError(s, i, err, true)
		return nil
	}

	if len(data.Rows) == 0 {
		f.followUp(s, i, BuildEmptyEmbed(), nil)
		return nil
	}

	png, err := f.images.Generate(data.Rows)
	if err != nil {
		// The embed alone still carries the whole page
		log.WithError(err).Warn("Failed to generate leaderboard image")
	}

	embed := BuildLeaderboardEmbed(data.Rows, data.Stats, data.Number, data.TotalPages, len(png) > 0)
	f.followUp(s, i, embed, png)
	return nil
}

// followUp answers a deferred leaderboard; the interaction is already acknowledged
// so failures can only be logged
func (f *Feature) followUp(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, png []byte) {
	if _, err := common.FollowUpWithEmbed(s, i, embed, ImageFileName, png); err != nil {
		log.WithError(err).WithField("guildID", i.GuildID).Error("Failed to send leaderboard")
	}
}

func (f *Feature) handleStats(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if err := common.RequireAdmin(s, i, f.adminRoles); err != nil {
		return err
	}

	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		return common.NewSystemError(err, "Invalid guild ID")
	}

	data, err := f.loadPage(context.Background(), guildID, 1, common.StatsTopUsers, func(userID int64) string {
		return common.GetDisplayNameInt64(s, i.GuildID, userID)
	})
	if err != nil {
		return err
	}

	return common.RespondWithEmbed(s, i, BuildStatsEmbed(data.Stats, data.Rows, data.TierCount), nil, true)
}

// loadPage reads one page of the board, the guild totals and the tier table in a
// single unit of work. Pages past the end are clamped to the last page.
func (f *Feature) loadPage(ctx context.Context, guildID int64, number, pageSize int, resolve nameResolver) (*page, error) {
	var (
		stats      *entities.GuildStats
		entries    []*entities.LeaderboardEntry
		thresholds []*entities.RoleThreshold
	)

	if number < 1 {
		number = 1
	}
	totalPages := 1

	err := common.InGuild(ctx, f.uowFactory, guildID, func(svc *common.GuildServices) error {
		var err error
		stats, err = svc.Ledger.GuildStats(ctx)
		if err != nil {
			return fmt.Errorf("failed to get guild stats: %w", err)
		}

		totalPages = common.TotalPages(stats.AccountCount, pageSize)
		if number > totalPages {
			number = totalPages
		}

		entries, err = svc.Ledger.Leaderboard(ctx, pageSize, (number-1)*pageSize)
		if err != nil {
			return fmt.Errorf("failed to get leaderboard: %w", err)
		}

		thresholds, err = svc.Tiers.ListThresholds(ctx)
		if err != nil {
			return fmt.Errorf("failed to get role thresholds: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, Row{
			Position: entry.Position,
			UserID:   entry.UserID,
			Name:     resolve(entry.UserID),
			Points:   entry.Points,
			Tier:     services.SelectRole(entry.Points, thresholds),
		})
	}

	return &page{
		Rows:       rows,
		Stats:      stats,
		Number:     number,
		TotalPages: totalPages,
		TierCount:  len(thresholds),
	}, nil
}
