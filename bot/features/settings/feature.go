package settings

import (
	"pointsbot/application"
	"pointsbot/bot/common"

	"github.com/bwmarrin/discordgo"
)

// Feature handles guild settings management
type Feature struct {
	session    *discordgo.Session
	uowFactory application.UnitOfWorkFactory
	adminRoles []string
}

// NewFeature creates a new settings feature instance
func NewFeature(session *discordgo.Session, uowFactory application.UnitOfWorkFactory, adminRoles []string) *Feature {
	return &Feature{
		session:    session,
		uowFactory: uowFactory,
		adminRoles: adminRoles,
	}
}

// HandleCommand routes the /notifications subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if err := common.RequireAdmin(s, i, f.adminRoles); err != nil {
		return err
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return common.NewUserError("Укажите подкоманду: set, clear или show", "Missing notifications subcommand")
	}

	switch options[0].Name {
	case "set":
		return f.handleSet(s, i, options[0].Options)
	case "clear":
		return f.handleClear(s, i)
	case "show":
		return f.handleShow(s, i)
	default:
		return common.NewUserError("Неизвестная подкоманда", "Unknown notifications subcommand "+options[0].Name)
	}
}
