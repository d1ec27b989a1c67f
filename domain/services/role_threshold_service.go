package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"pointsbot/domain"
	"pointsbot/domain/entities"
	"pointsbot/domain/interfaces"
	"pointsbot/events"

	log "github.com/sirupsen/logrus"
)

const maxRoleNameLength = 100

// roleThresholdService implements the RoleThresholdService interface
type roleThresholdService struct {
	guildID           int64
	thresholdRepo     interfaces.RoleThresholdRepository
	guildSettingsRepo interfaces.GuildSettingsRepository
	eventPublisher    interfaces.EventPublisher
}

// NewRoleThresholdService creates a new role threshold service
func NewRoleThresholdService(
	guildID int64,
	thresholdRepo interfaces.RoleThresholdRepository,
	guildSettingsRepo interfaces.GuildSettingsRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.RoleThresholdService {
	return &roleThresholdService{
		guildID:           guildID,
		thresholdRepo:     thresholdRepo,
		guildSettingsRepo: guildSettingsRepo,
		eventPublisher:    eventPublisher,
	}
}

// ListThresholds returns the tiers ordered by points ascending
func (s *roleThresholdService) ListThresholds(ctx context.Context) ([]*entities.RoleThreshold, error) {
	thresholds, err := s.thresholdRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get role thresholds: %w", err)
	}
	return thresholds, nil
}

// SetThreshold creates or overwrites the tier at pointsRequired
func (s *roleThresholdService) SetThreshold(ctx context.Context, pointsRequired int64, roleName, roleColor string) (*entities.RoleThreshold, error) {
	if pointsRequired <= 0 {
		return nil, fmt.Errorf("threshold must be positive, got %d: %w", pointsRequired, domain.ErrInvalidAmount)
	}

	roleName = strings.TrimSpace(roleName)
	if roleName == "" || utf8.RuneCountInString(roleName) > maxRoleNameLength {
		return nil, fmt.Errorf("role name must be 1-%d characters: %w", maxRoleNameLength, domain.ErrInvalidRole)
	}

	threshold := &entities.RoleThreshold{
		GuildID:        s.guildID,
		PointsRequired: pointsRequired,
		RoleName:       roleName,
		RoleColor:      entities.NormalizeRoleColor(roleColor),
	}

	if err := s.thresholdRepo.Upsert(ctx, threshold); err != nil {
		return nil, fmt.Errorf("failed to save role threshold: %w", err)
	}

	s.publishChange(pointsRequired, false)
	return threshold, nil
}

// RemoveThreshold deletes the tier at pointsRequired
func (s *roleThresholdService) RemoveThreshold(ctx context.Context, pointsRequired int64) (bool, error) {
	removed, err := s.thresholdRepo.Delete(ctx, pointsRequired)
	if err != nil {
		return false, fmt.Errorf("failed to delete role threshold: %w", err)
	}

	if removed {
		s.publishChange(pointsRequired, true)
	}
	return removed, nil
}

// EnsureDefaults seeds the default tiers once per guild. A guild that already has
// tiers, or was seeded before, is left alone so removed tiers stay removed.
func (s *roleThresholdService) EnsureDefaults(ctx context.Context) (bool, error) {
	settings, err := s.guildSettingsRepo.GetOrCreateGuildSettings(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get guild settings: %w", err)
	}
	if settings.DefaultTiersSeeded {
		return false, nil
	}

	existing, err := s.thresholdRepo.GetAll(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get role thresholds: %w", err)
	}

	seeded := false
	if len(existing) == 0 {
		for _, threshold := range entities.DefaultRoleThresholds(s.guildID) {
			if err := s.thresholdRepo.Upsert(ctx, threshold); err != nil {
				return false, fmt.Errorf("failed to seed role threshold %d: %w", threshold.PointsRequired, err)
			}
		}
		seeded = true
	}

	settings.DefaultTiersSeeded = true
	if err := s.guildSettingsRepo.UpdateGuildSettings(ctx, settings); err != nil {
		return false, fmt.Errorf("failed to update guild settings: %w", err)
	}

	if seeded {
		log.WithField("guildID", s.guildID).Info("Seeded default role thresholds")
	}
	return seeded, nil
}

func (s *roleThresholdService) publishChange(pointsRequired int64, removed bool) {
	if err := s.eventPublisher.Publish(events.ThresholdsChangedEvent{
		GuildID:        s.guildID,
		PointsRequired: pointsRequired,
		Removed:        removed,
	}); err != nil {
		log.WithError(err).Error("Failed to publish thresholds changed event")
	}
}
