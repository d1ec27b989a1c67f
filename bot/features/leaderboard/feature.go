package leaderboard

import (
	"fmt"

	"pointsbot/application"

	"github.com/bwmarrin/discordgo"
)

// Feature serves the leaderboard and the admin server statistics
type Feature struct {
	session    *discordgo.Session
	uowFactory application.UnitOfWorkFactory
	adminRoles []string
	images     *ImageGenerator
}

// NewFeature creates a new leaderboard feature instance
func NewFeature(session *discordgo.Session, uowFactory application.UnitOfWorkFactory, adminRoles []string) *Feature {
	return &Feature{
		session:    session,
		uowFactory: uowFactory,
		adminRoles: adminRoles,
		images:     NewImageGenerator(),
	}
}

// HandleCommand routes /leaderboard and /stats
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	switch name := i.ApplicationCommandData().Name; name {
	case "leaderboard":
		return f.handleLeaderboard(s, i)
	case "stats":
		return f.handleStats(s, i)
	default:
		return fmt.Errorf("leaderboard feature cannot handle command %q", name)
	}
}
