package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pointsbot/bot/common"
	"pointsbot/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Custom ID prefixes of the reset prompt buttons
const (
	ResetConfirmPrefix = "reset_confirm"
	ResetCancelPrefix  = "reset_cancel"
)

// IsResetComponent reports whether customID belongs to a reset prompt
func IsResetComponent(customID string) bool {
	return strings.HasPrefix(customID, ResetConfirmPrefix+":") || strings.HasPrefix(customID, ResetCancelPrefix+":")
}

// resetButton is a decoded reset prompt button, "<prefix>:<guildID>:<authorID>:<unix>"
type resetButton struct {
	Confirm  bool
	GuildID  string
	AuthorID string
	IssuedAt time.Time
}

func resetCustomID(prefix, guildID, authorID string, issuedAt time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%d", prefix, guildID, authorID, issuedAt.Unix())
}

func parseResetCustomID(customID string) (*resetButton, error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 4 {
		return nil, fmt.Errorf("malformed reset custom ID %q", customID)
	}

	var confirm bool
	switch parts[0] {
	case ResetConfirmPrefix:
		confirm = true
	case ResetCancelPrefix:
	default:
		return nil, fmt.Errorf("unknown reset action %q", parts[0])
	}

	if _, err := common.ParseID(parts[1]); err != nil {
		return nil, fmt.Errorf("invalid guild in reset custom ID %q: %w", customID, err)
	}
	if _, err := common.ParseID(parts[2]); err != nil {
		return nil, fmt.Errorf("invalid author in reset custom ID %q: %w", customID, err)
	}
	issued, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp in reset custom ID %q: %w", customID, err)
	}

	return &resetButton{Confirm: confirm, GuildID: parts[1], AuthorID: parts[2], IssuedAt: time.Unix(issued, 0)}, nil
}

// key identifies the prompt both buttons belong to
func (b *resetButton) key() string {
	return fmt.Sprintf("%s:%s:%d", b.GuildID, b.AuthorID, b.IssuedAt.Unix())
}

func (b *resetButton) expired(now time.Time) bool {
	return now.Sub(b.IssuedAt) > common.ResetConfirmTimeout
}

func (f *Feature) handleResetPrompt(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if err := common.RequireAdmin(s, i, f.adminRoles); err != nil {
		return err
	}

	authorID := i.Member.User.ID
	issued := f.now()
	components := resetButtons(
		resetCustomID(ResetConfirmPrefix, i.GuildID, authorID, issued),
		resetCustomID(ResetCancelPrefix, i.GuildID, authorID, issued),
	)

	if err := common.RespondWithEmbed(s, i, BuildResetPromptEmbed(), components, false); err != nil {
		return fmt.Errorf("failed to send reset prompt: %w", err)
	}

	prompt := &resetButton{GuildID: i.GuildID, AuthorID: authorID, IssuedAt: issued}
	interaction := i.Interaction
	f.track(prompt.key(), func() {
		disabled := common.DisableComponents(components)
		if _, err := s.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{Components: &disabled}); err != nil {
			log.WithError(err).WithField("guildID", interaction.GuildID).Warn("Failed to disable expired reset prompt")
		}
	})
	return nil
}

func (f *Feature) handleResetButton(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	button, err := parseResetCustomID(i.MessageComponentData().CustomID)
	if err != nil {
		return common.NewSystemError(err, "Invalid reset button")
	}

	if i.Member == nil || i.Member.User == nil || i.Member.User.ID != button.AuthorID {
		verb := "отменить"
		if button.Confirm {
			verb = "подтвердить"
		}
		return common.RespondEphemeral(s, i, fmt.Sprintf("❌ Только автор команды может %s!", verb))
	}

	if button.expired(f.now()) || !f.untrack(button.key()) {
		return common.RespondEphemeral(s, i, "⏰ Время подтверждения истекло.")
	}

	if !button.Confirm {
		return common.UpdateComponentMessage(s, i, BuildResetCancelledEmbed())
	}

	if button.GuildID != i.GuildID {
		return common.NewSystemError(fmt.Errorf("reset button of guild %s pressed in %s", button.GuildID, i.GuildID), "Reset button guild mismatch")
	}
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		return common.NewSystemError(err, "Invalid guild ID")
	}

	summary, err := f.reset(context.Background(), guildID)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"guildID":             guildID,
		"actorID":             button.AuthorID,
		"accountsRemoved":     summary.AccountsRemoved,
		"transactionsRemoved": summary.TransactionsRemoved,
	}).Warn("Guild points reset")

	return common.UpdateComponentMessage(s, i, BuildResetDoneEmbed(summary))
}

func (f *Feature) reset(ctx context.Context, guildID int64) (*entities.ResetSummary, error) {
	var summary *entities.ResetSummary
	err := common.InGuild(ctx, f.uowFactory, guildID, func(svc *common.GuildServices) error {
		var err error
		summary, err = svc.Ledger.ResetGuild(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reset guild: %w", err)
	}
	return summary, nil
}

// track arms the expiry of a prompt; onExpire runs only if nobody answered in time
func (f *Feature) track(key string, onExpire func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pending[key] = time.AfterFunc(common.ResetConfirmTimeout, func() {
		if f.untrack(key) {
			onExpire()
		}
	})
}

// untrack claims a pending prompt, reporting false when it already expired or was answered
func (f *Feature) untrack(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	timer, ok := f.pending[key]
	if !ok {
		return false
	}
	timer.Stop()
	delete(f.pending, key)
	return true
}
