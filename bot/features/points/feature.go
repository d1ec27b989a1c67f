package points

import (
	"fmt"

	"pointsbot/application"

	"github.com/bwmarrin/discordgo"
)

// Feature answers the member-facing balance commands
type Feature struct {
	session    *discordgo.Session
	uowFactory application.UnitOfWorkFactory
}

// NewFeature creates a new points feature instance
func NewFeature(session *discordgo.Session, uowFactory application.UnitOfWorkFactory) *Feature {
	return &Feature{
		session:    session,
		uowFactory: uowFactory,
	}
}

// HandleCommand routes /points and /history
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	switch name := i.ApplicationCommandData().Name; name {
	case "points":
		return f.handlePoints(s, i)
	case "history":
		return f.handleHistory(s, i)
	default:
		return fmt.Errorf("points feature cannot handle command %q", name)
	}
}
