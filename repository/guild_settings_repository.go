package repository

import (
	"context"
	"fmt"

	"pointsbot/database"
	"pointsbot/domain/entities"
)

// GuildSettingsRepository implements the GuildSettingsRepository interface
type GuildSettingsRepository struct {
	q       Queryable
	guildID int64
}

// NewGuildSettingsRepository creates a new guild settings repository
func NewGuildSettingsRepository(db *database.DB, guildID int64) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: db.Pool, guildID: guildID}
}

func newGuildSettingsRepository(q Queryable, guildID int64) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: q, guildID: guildID}
}

// GetOrCreateGuildSettings retrieves guild settings or creates default ones if not found
func (r *GuildSettingsRepository) GetOrCreateGuildSettings(ctx context.Context) (*entities.GuildSettings, error) {
	// The no-op update makes RETURNING yield the existing row too
	query := `
		INSERT INTO guild_settings (guild_id)
		VALUES ($1)
		ON CONFLICT (guild_id) DO UPDATE SET guild_id = EXCLUDED.guild_id
		RETURNING guild_id, notification_channel_id, default_tiers_seeded
	`

	var settings entities.GuildSettings
	err := r.q.QueryRow(ctx, query, r.guildID).Scan(
		&settings.GuildID,
		&settings.NotificationChannelID,
		&settings.DefaultTiersSeeded,
	)
	if err != nil {
		return nil, storageError(fmt.Sprintf("get guild settings for guild %d", r.guildID), err)
	}

	return &settings, nil
}

// UpdateGuildSettings updates guild settings
func (r *GuildSettingsRepository) UpdateGuildSettings(ctx context.Context, settings *entities.GuildSettings) error {
	query := `
		UPDATE guild_settings
		SET notification_channel_id = $2,
		    default_tiers_seeded = $3,
		    updated_at = NOW()
		WHERE guild_id = $1
	`

	result, err := r.q.Exec(ctx, query, r.guildID, settings.NotificationChannelID, settings.DefaultTiersSeeded)
	if err != nil {
		return storageError(fmt.Sprintf("update guild settings for guild %d", r.guildID), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("guild settings not found for guild %d", r.guildID)
	}

	return nil
}
