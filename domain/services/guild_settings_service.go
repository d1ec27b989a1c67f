package services

import (
	"context"
	"fmt"

	"pointsbot/domain/entities"
	"pointsbot/domain/interfaces"
)

// guildSettingsService implements the GuildSettingsService interface
type guildSettingsService struct {
	guildSettingsRepo interfaces.GuildSettingsRepository
}

// NewGuildSettingsService creates a new guild settings service
func NewGuildSettingsService(guildSettingsRepo interfaces.GuildSettingsRepository) interfaces.GuildSettingsService {
	return &guildSettingsService{
		guildSettingsRepo: guildSettingsRepo,
	}
}

// GetOrCreateSettings retrieves guild settings or creates default ones if not found
func (s *guildSettingsService) GetOrCreateSettings(ctx context.Context) (*entities.GuildSettings, error) {
	settings, err := s.guildSettingsRepo.GetOrCreateGuildSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create guild settings: %w", err)
	}
	return settings, nil
}

// UpdateNotificationChannel sets the announcement channel; nil disables announcements
func (s *guildSettingsService) UpdateNotificationChannel(ctx context.Context, channelID *int64) error {
	settings, err := s.guildSettingsRepo.GetOrCreateGuildSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to get guild settings: %w", err)
	}

	settings.SetNotificationChannel(channelID)

	if err := s.guildSettingsRepo.UpdateGuildSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to update guild settings: %w", err)
	}
	return nil
}
