package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"pointsbot/application"
	"pointsbot/bot/common"
	"pointsbot/bot/features/admin"
	"pointsbot/bot/features/help"
	"pointsbot/bot/features/leaderboard"
	"pointsbot/bot/features/points"
	"pointsbot/bot/features/roles"
	"pointsbot/bot/features/settings"
	"pointsbot/infrastructure/observability"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token      string
	GuildID    string // commands are registered globally when empty
	AdminRoles []string
}

// commandHandler answers one slash command; returned errors are reported to the invoker
type commandHandler func(s *discordgo.Session, i *discordgo.InteractionCreate) error

// memberSyncer re-applies a member's tier role
type memberSyncer interface {
	SyncMember(ctx context.Context, guildID, userID int64) (*application.SyncResult, error)
}

type Bot struct {
	config      Config
	session     *discordgo.Session
	uowFactory  application.UnitOfWorkFactory
	roleManager *DiscordRoleManager
	roleSync    memberSyncer

	// Feature modules
	adminFeature *admin.Feature
	handlers     map[string]commandHandler
}

// New creates the Discord session and the feature modules. The gateway is not
// opened until Start, so event subscribers can be wired to RoleManager first.
func New(config Config, uowFactory application.UnitOfWorkFactory) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	bot := &Bot{
		config:      config,
		session:     dg,
		uowFactory:  uowFactory,
		roleManager: NewDiscordRoleManager(dg),
	}

	leaderboardFeature := leaderboard.NewFeature(dg, uowFactory, config.AdminRoles)
	pointsFeature := points.NewFeature(dg, uowFactory)
	rolesFeature := roles.NewFeature(dg, uowFactory, config.AdminRoles)
	settingsFeature := settings.NewFeature(dg, uowFactory, config.AdminRoles)
	helpFeature := help.NewFeature(config.AdminRoles)
	bot.adminFeature = admin.NewFeature(dg, uowFactory, config.AdminRoles)

	bot.handlers = map[string]commandHandler{
		"points":        pointsFeature.HandleCommand,
		"history":       pointsFeature.HandleCommand,
		"leaderboard":   leaderboardFeature.HandleCommand,
		"stats":         leaderboardFeature.HandleCommand,
		"roles":         rolesFeature.HandleCommand,
		"setrole":       rolesFeature.HandleCommand,
		"removerole":    rolesFeature.HandleCommand,
		"addpoints":     bot.adminFeature.HandleCommand,
		"removepoints":  bot.adminFeature.HandleCommand,
		"setpoints":     bot.adminFeature.HandleCommand,
		"resetpoints":   bot.adminFeature.HandleCommand,
		"notifications": settingsFeature.HandleCommand,
		"help":          helpFeature.HandleCommand,
	}

	dg.AddHandler(bot.handleReady)
	dg.AddHandler(bot.handleGuildCreate)
	dg.AddHandler(bot.handleMemberAdd)
	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleInteractions)

	return bot, nil
}

// RoleManager exposes the Discord-backed role manager and tier announcer
func (b *Bot) RoleManager() *DiscordRoleManager {
	return b.roleManager
}

// SetRoleSync enables re-applying tier roles to members who rejoin the guild
func (b *Bot) SetRoleSync(syncer memberSyncer) {
	b.roleSync = syncer
}

// Start opens the gateway connection and registers the slash commands
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		b.session.Close()
		return fmt.Errorf("error registering commands: %w", err)
	}

	return nil
}

func (b *Bot) Close() error {
	b.adminFeature.Close()
	return b.session.Close()
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithFields(log.Fields{
		"user":   r.User.Username,
		"guilds": len(r.Guilds),
	}).Info("Bot is ready")

	status := fmt.Sprintf("/help | %d серверов", len(r.Guilds))
	if err := s.UpdateWatchStatus(0, status); err != nil {
		log.WithError(err).Warn("Failed to update presence")
	}
}

// handleGuildCreate seeds the default tiers the first time a guild is seen
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	guildID, err := common.ParseID(g.ID)
	if err != nil {
		log.WithError(err).WithField("guildID", g.ID).Error("Invalid guild ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var seeded bool
	err = common.InGuild(ctx, b.uowFactory, guildID, func(svc *common.GuildServices) error {
		seeded, err = svc.Tiers.EnsureDefaults(ctx)
		return err
	})
	if err != nil {
		log.WithError(err).WithField("guildID", guildID).Error("Failed to seed default tiers")
		return
	}

	log.WithFields(log.Fields{
		"guildID": guildID,
		"name":    g.Name,
		"seeded":  seeded,
	}).Info("Joined guild")
}

// handleMemberAdd restores the tier role of a member who left and came back
func (b *Bot) handleMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if b.roleSync == nil || m.User == nil || m.User.Bot {
		return
	}

	guildID, err := common.ParseID(m.GuildID)
	if err != nil {
		return
	}
	userID, err := common.ParseID(m.User.ID)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := b.roleSync.SyncMember(ctx, guildID, userID); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guildID": guildID,
			"userID":  userID,
		}).Warn("Failed to restore tier role for joining member")
	}
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	handler, ok := b.handlers[name]
	if !ok {
		log.WithField("command", name).Warn("Unknown command")
		return
	}

	if i.GuildID == "" || i.Member == nil {
		common.RespondWithError(s, i, "Эта команда доступна только на сервере.")
		return
	}

	start := time.Now()
	err := handler(s, i)
	b.finish(s, i, name, start, err)
}

func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	customID := i.MessageComponentData().CustomID
	if !admin.IsResetComponent(customID) {
		return
	}

	start := time.Now()
	err := b.adminFeature.HandleComponent(s, i)
	b.finish(s, i, "resetpoints", start, err)
}

// finish records the command outcome and reports a failure to the invoker
func (b *Bot) finish(s *discordgo.Session, i *discordgo.InteractionCreate, name string, start time.Time, err error) {
	outcome := observability.OutcomeSuccess
	if err != nil {
		outcome = observability.OutcomeError
	}
	observability.GetMetrics().RecordCommand(name, outcome, time.Since(start))

	if err == nil {
		return
	}

	// User errors are rejections, not failures
	var botErr *common.BotError
	if errors.As(err, &botErr) && botErr.Err == nil {
		log.WithFields(log.Fields{"command": name, "reason": botErr.LogMessage}).Info("Command rejected")
		common.RespondWithError(s, i, botErr.UserMessage)
		return
	}
	common.HandleError(s, i, err, false)
}
