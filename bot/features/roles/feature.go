package roles

import (
	"fmt"

	"pointsbot/application"

	"github.com/bwmarrin/discordgo"
)

// Feature shows and edits the guild's tier table
type Feature struct {
	session    *discordgo.Session
	uowFactory application.UnitOfWorkFactory
	adminRoles []string
}

// NewFeature creates a new roles feature instance
func NewFeature(session *discordgo.Session, uowFactory application.UnitOfWorkFactory, adminRoles []string) *Feature {
	return &Feature{
		session:    session,
		uowFactory: uowFactory,
		adminRoles: adminRoles,
	}
}

// HandleCommand routes /roles, /setrole and /removerole
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	switch name := i.ApplicationCommandData().Name; name {
	case "roles":
		return f.handleRoles(s, i)
	case "setrole":
		return f.handleSetRole(s, i)
	case "removerole":
		return f.handleRemoveRole(s, i)
	default:
		return fmt.Errorf("roles feature cannot handle command %q", name)
	}
}
