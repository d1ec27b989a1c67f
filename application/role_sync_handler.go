package application

import (
	"context"
	"errors"
	"fmt"

	"pointsbot/domain/entities"
	"pointsbot/domain/services"
	"pointsbot/events"
	"pointsbot/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// RoleSyncHandler keeps members' tier roles in line with their balances.
// It reacts to committed ledger events and always recomputes from the current
// balance, so late or duplicated events are harmless.
type RoleSyncHandler struct {
	uowFactory  UnitOfWorkFactory
	roleManager RoleManager
	announcer   TierAnnouncer
}

// SyncResult reports what a member sync changed
type SyncResult struct {
	UserID   int64
	Balance  int64
	Target   *entities.RoleThreshold
	Granted  string
	Revoked  []string
	Promoted bool
}

// NewRoleSyncHandler creates a new role sync handler. announcer may be nil.
func NewRoleSyncHandler(uowFactory UnitOfWorkFactory, roleManager RoleManager, announcer TierAnnouncer) *RoleSyncHandler {
	return &RoleSyncHandler{
		uowFactory:  uowFactory,
		roleManager: roleManager,
		announcer:   announcer,
	}
}

// Register subscribes the handler to the ledger events it reacts to
func (h *RoleSyncHandler) Register(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBalanceChange, h.handleEvent)
	bus.Subscribe(events.EventTypeGuildReset, h.handleEvent)
	bus.Subscribe(events.EventTypeThresholdsChanged, h.handleEvent)
}

func (h *RoleSyncHandler) handleEvent(ctx context.Context, event events.Event) {
	if err := h.Handle(ctx, event); err != nil {
		log.WithError(err).WithField("eventType", event.Type()).Error("Role sync failed")
	}
}

// Handle reconciles roles for a single event
func (h *RoleSyncHandler) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.BalanceChangeEvent:
		snapshot, err := h.loadSnapshot(ctx, e.GuildID, []int64{e.UserID})
		if err != nil {
			return err
		}
		result, err := h.syncMember(ctx, e.GuildID, e.UserID, snapshot.balances[e.UserID], snapshot.thresholds)
		if result != nil && result.Granted != "" {
			result.Promoted = e.NewBalance > e.OldBalance
			h.announce(ctx, e.GuildID, snapshot.notificationChannel, result)
		}
		return err

	case events.GuildResetEvent:
		return h.SyncGuild(ctx, e.GuildID)

	case events.ThresholdsChangedEvent:
		return h.SyncGuild(ctx, e.GuildID)

	default:
		return nil
	}
}

// SyncMember brings one member's tier roles in line with their current balance
func (h *RoleSyncHandler) SyncMember(ctx context.Context, guildID, userID int64) (*SyncResult, error) {
	snapshot, err := h.loadSnapshot(ctx, guildID, []int64{userID})
	if err != nil {
		return nil, err
	}
	return h.syncMember(ctx, guildID, userID, snapshot.balances[userID], snapshot.thresholds)
}

// SyncGuild re-syncs every account of the guild and every member holding a tier role
func (h *RoleSyncHandler) SyncGuild(ctx context.Context, guildID int64) error {
	snapshot, err := h.loadSnapshot(ctx, guildID, nil)
	if err != nil {
		return err
	}

	members := make(map[int64]bool, len(snapshot.balances))
	for userID := range snapshot.balances {
		members[userID] = true
	}

	if len(snapshot.thresholds) > 0 {
		holders, err := h.roleManager.MembersWithRoles(ctx, guildID, entities.RoleNames(snapshot.thresholds))
		if err != nil {
			return fmt.Errorf("failed to list tier role holders: %w", err)
		}
		for _, userID := range holders {
			members[userID] = true
		}
	}

	var errs []error
	for userID := range members {
		if _, err := h.syncMember(ctx, guildID, userID, snapshot.balances[userID], snapshot.thresholds); err != nil {
			errs = append(errs, fmt.Errorf("user %d: %w", userID, err))
		}
	}

	log.WithFields(log.Fields{
		"guildID": guildID,
		"members": len(members),
		"errors":  len(errs),
	}).Info("Guild tier roles synced")

	return errors.Join(errs...)
}

func (h *RoleSyncHandler) syncMember(ctx context.Context, guildID, userID, balance int64, thresholds []*entities.RoleThreshold) (*SyncResult, error) {
	held, err := h.roleManager.MemberRoleNames(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member roles: %w", err)
	}

	transition := services.PlanRoleTransition(balance, thresholds, held)
	result := &SyncResult{
		UserID:  userID,
		Balance: balance,
		Target:  transition.Target,
	}
	if !transition.Changed() {
		return result, nil
	}

	// Grant first so a failure never leaves the member with no tier at all
	if transition.Grant {
		target := transition.Target
		if _, err := h.roleManager.EnsureRole(ctx, guildID, RoleSpec{Name: target.RoleName, Color: target.ColorValue()}); err != nil {
			observability.GetMetrics().RecordRoleChange(observability.RoleActionFailed)
			return result, fmt.Errorf("failed to ensure role %q: %w", target.RoleName, err)
		}
		if err := h.roleManager.Grant(ctx, guildID, userID, target.RoleName); err != nil {
			observability.GetMetrics().RecordRoleChange(observability.RoleActionFailed)
			return result, fmt.Errorf("failed to grant role %q: %w", target.RoleName, err)
		}
		observability.GetMetrics().RecordRoleChange(observability.RoleActionGrant)
		result.Granted = target.RoleName
	}

	var errs []error
	for _, roleName := range transition.Revoke {
		if err := h.roleManager.Revoke(ctx, guildID, userID, roleName); err != nil {
			observability.GetMetrics().RecordRoleChange(observability.RoleActionFailed)
			errs = append(errs, fmt.Errorf("failed to revoke role %q: %w", roleName, err))
			continue
		}
		observability.GetMetrics().RecordRoleChange(observability.RoleActionRevoke)
		result.Revoked = append(result.Revoked, roleName)
	}

	log.WithFields(log.Fields{
		"guildID": guildID,
		"userID":  userID,
		"balance": balance,
		"granted": result.Granted,
		"revoked": result.Revoked,
	}).Info("Tier roles updated")

	return result, errors.Join(errs...)
}

type guildSnapshot struct {
	thresholds          []*entities.RoleThreshold
	balances            map[int64]int64
	notificationChannel *int64
}

// loadSnapshot reads thresholds, settings and balances in one read-only unit of work.
// A nil userIDs loads every account of the guild.
func (h *RoleSyncHandler) loadSnapshot(ctx context.Context, guildID int64, userIDs []int64) (*guildSnapshot, error) {
	uow := h.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	thresholds, err := uow.RoleThresholdRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get role thresholds: %w", err)
	}

	settings, err := uow.GuildSettingsRepository().GetOrCreateGuildSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}

	snapshot := &guildSnapshot{
		thresholds:          thresholds,
		balances:            make(map[int64]int64),
		notificationChannel: settings.NotificationChannelID,
	}

	if userIDs == nil {
		accounts, err := uow.AccountRepository().GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get accounts: %w", err)
		}
		for _, account := range accounts {
			snapshot.balances[account.UserID] = account.Points
		}
	} else {
		for _, userID := range userIDs {
			account, err := uow.AccountRepository().GetByUserID(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("failed to get account: %w", err)
			}
			if account != nil {
				snapshot.balances[userID] = account.Points
			}
		}
	}

	// Creating default settings is the only possible write
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return snapshot, nil
}

func (h *RoleSyncHandler) announce(ctx context.Context, guildID int64, channelID *int64, result *SyncResult) {
	if h.announcer == nil || channelID == nil {
		return
	}

	if err := h.announcer.AnnounceTierChange(ctx, *channelID, guildID, result.UserID, result.Granted, result.Promoted); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guildID":   guildID,
			"channelID": *channelID,
		}).Warn("Failed to announce tier change")
	}
}
