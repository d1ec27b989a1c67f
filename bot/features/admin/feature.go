package admin

import (
	"fmt"
	"sync"
	"time"

	"pointsbot/application"

	"github.com/bwmarrin/discordgo"
)

// Feature runs the admin balance commands and the guild reset
type Feature struct {
	session    *discordgo.Session
	uowFactory application.UnitOfWorkFactory
	adminRoles []string
	now        func() time.Time

	// pending holds the expiry timers of unanswered reset prompts, keyed by prompt
	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewFeature creates a new admin feature instance
func NewFeature(session *discordgo.Session, uowFactory application.UnitOfWorkFactory, adminRoles []string) *Feature {
	return &Feature{
		session:    session,
		uowFactory: uowFactory,
		adminRoles: adminRoles,
		now:        time.Now,
		pending:    make(map[string]*time.Timer),
	}
}

// HandleCommand routes the admin slash commands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	switch name := i.ApplicationCommandData().Name; name {
	case "addpoints":
		return f.handleAddPoints(s, i)
	case "removepoints":
		return f.handleRemovePoints(s, i)
	case "setpoints":
		return f.handleSetPoints(s, i)
	case "resetpoints":
		return f.handleResetPrompt(s, i)
	default:
		return fmt.Errorf("admin feature cannot handle command %q", name)
	}
}

// HandleComponent handles the reset confirm and cancel buttons
func (f *Feature) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return f.handleResetButton(s, i)
}

// Close stops every pending reset expiry timer
func (f *Feature) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, timer := range f.pending {
		timer.Stop()
		delete(f.pending, key)
	}
}
