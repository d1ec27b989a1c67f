package admin

import (
	"context"
	"fmt"
	"strings"

	"pointsbot/bot/common"
	"pointsbot/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// balanceOptions are the options shared by /addpoints, /removepoints and /setpoints
type balanceOptions struct {
	guildID int64
	userID  int64
	actorID int64
	amount  int64
	reason  string
}

func parseBalanceOptions(i *discordgo.InteractionCreate, defaultReason string) (*balanceOptions, error) {
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		return nil, common.NewSystemError(err, "Invalid guild ID")
	}
	actorID, err := common.ParseID(i.Member.User.ID)
	if err != nil {
		return nil, common.NewSystemError(err, "Invalid actor ID")
	}

	opts := &balanceOptions{guildID: guildID, actorID: actorID, reason: defaultReason}
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "member":
			userID, err := common.ParseID(opt.Value.(string))
			if err != nil {
				return nil, common.NewSystemError(err, "Invalid member ID")
			}
			opts.userID = userID
		case "amount":
			opts.amount = opt.IntValue()
		case "reason":
			if reason := strings.TrimSpace(opt.StringValue()); reason != "" {
				opts.reason = reason
			}
		}
	}
	return opts, nil
}

func (f *Feature) handleAddPoints(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if err := common.RequireAdmin(s, i, f.adminRoles); err != nil {
		return err
	}
	opts, err := parseBalanceOptions(i, entities.DefaultCreditReason)
	if err != nil {
		return err
	}

	change, err := f.credit(context.Background(), opts)
	if err != nil {
		return err
	}

	return common.RespondWithEmbed(s, i, BuildCreditEmbed(change), nil, false)
}

func (f *Feature) handleRemovePoints(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if err := common.RequireAdmin(s, i, f.adminRoles); err != nil {
		return err
	}
	opts, err := parseBalanceOptions(i, entities.DefaultDebitReason)
	if err != nil {
		return err
	}

	change, err := f.debit(context.Background(), opts)
	if err != nil {
		return err
	}

	return common.RespondWithEmbed(s, i, BuildDebitEmbed(change), nil, false)
}

func (f *Feature) handleSetPoints(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if err := common.RequireAdmin(s, i, f.adminRoles); err != nil {
		return err
	}
	opts, err := parseBalanceOptions(i, entities.DefaultSetReason)
	if err != nil {
		return err
	}

	change, err := f.set(context.Background(), opts)
	if err != nil {
		return err
	}

	return common.RespondWithEmbed(s, i, BuildSetEmbed(change), nil, false)
}

func (f *Feature) credit(ctx context.Context, opts *balanceOptions) (*Change, error) {
	change := &Change{UserID: opts.userID, ActorID: opts.actorID, Amount: opts.amount, Reason: opts.reason}
	err := common.InGuild(ctx, f.uowFactory, opts.guildID, func(svc *common.GuildServices) error {
		var err error
		change.NewBalance, err = svc.Ledger.Credit(ctx, opts.userID, opts.amount, &opts.actorID, opts.reason)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to credit points: %w", err)
	}

	f.logChange("credit", opts, change)
	return change, nil
}

func (f *Feature) debit(ctx context.Context, opts *balanceOptions) (*Change, error) {
	change := &Change{UserID: opts.userID, ActorID: opts.actorID, Reason: opts.reason}
	err := common.InGuild(ctx, f.uowFactory, opts.guildID, func(svc *common.GuildServices) error {
		var err error
		change.Amount, change.NewBalance, err = svc.Ledger.Debit(ctx, opts.userID, opts.amount, &opts.actorID, opts.reason)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to debit points: %w", err)
	}

	f.logChange("debit", opts, change)
	return change, nil
}

func (f *Feature) set(ctx context.Context, opts *balanceOptions) (*Change, error) {
	change := &Change{UserID: opts.userID, ActorID: opts.actorID, Reason: opts.reason}
	err := common.InGuild(ctx, f.uowFactory, opts.guildID, func(svc *common.GuildServices) error {
		var err error
		change.NewBalance, err = svc.Ledger.SetBalance(ctx, opts.userID, opts.amount, &opts.actorID, opts.reason)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set points: %w", err)
	}
	change.Amount = change.NewBalance

	f.logChange("set", opts, change)
	return change, nil
}

func (f *Feature) logChange(op string, opts *balanceOptions, change *Change) {
	log.WithFields(log.Fields{
		"op":         op,
		"guildID":    opts.guildID,
		"userID":     opts.userID,
		"actorID":    opts.actorID,
		"requested":  opts.amount,
		"applied":    change.Amount,
		"newBalance": change.NewBalance,
	}).Info("Admin balance change")
}
