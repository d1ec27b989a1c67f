package interfaces

import (
	"context"

	"pointsbot/domain/entities"
	"pointsbot/events"
)

// Repositories are scoped to one guild by the unit of work that created them.
// Lookups of missing rows return nil, nil.

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetByUserID retrieves an account without creating it
	GetByUserID(ctx context.Context, userID int64) (*entities.Account, error)

	// GetOrCreateForUpdate returns the account, creating it with zero points when
	// absent, and holds it locked until the unit of work ends
	GetOrCreateForUpdate(ctx context.Context, userID int64) (*entities.Account, error)

	// UpdatePoints overwrites the balance of an existing account
	UpdatePoints(ctx context.Context, userID int64, points int64) error

	// CountWithMorePoints counts accounts holding strictly more than points
	CountWithMorePoints(ctx context.Context, points int64) (int64, error)

	// GetLeaderboard returns accounts ordered by points desc, created_at asc, user_id asc
	GetLeaderboard(ctx context.Context, limit, offset int) ([]*entities.Account, error)

	// GetAll returns every account of the guild
	GetAll(ctx context.Context) ([]*entities.Account, error)

	// GetStats aggregates every account of the guild
	GetStats(ctx context.Context) (*entities.GuildStats, error)

	// DeleteAll removes every account of the guild
	DeleteAll(ctx context.Context) (int64, error)
}

// TransactionRepository defines the interface for the transaction log
type TransactionRepository interface {
	// Record appends a transaction, filling in ID, GuildID and CreatedAt
	Record(ctx context.Context, transaction *entities.Transaction) error

	// GetByUser returns a user's transactions, most recent first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.Transaction, error)

	// DeleteAll removes every transaction of the guild
	DeleteAll(ctx context.Context) (int64, error)
}

// RoleThresholdRepository defines the interface for the tier table
type RoleThresholdRepository interface {
	// GetAll returns the guild's thresholds ordered by points ascending
	GetAll(ctx context.Context) ([]*entities.RoleThreshold, error)

	// GetByPoints retrieves the threshold at an exact point value
	GetByPoints(ctx context.Context, pointsRequired int64) (*entities.RoleThreshold, error)

	// Upsert creates the threshold or overwrites name and colour at that point value
	Upsert(ctx context.Context, threshold *entities.RoleThreshold) error

	// Delete removes the threshold at an exact point value, reporting whether one existed
	Delete(ctx context.Context, pointsRequired int64) (bool, error)
}

// GuildSettingsRepository defines the interface for guild settings data access
type GuildSettingsRepository interface {
	// GetOrCreateGuildSettings retrieves guild settings or creates default ones
	GetOrCreateGuildSettings(ctx context.Context) (*entities.GuildSettings, error)

	// UpdateGuildSettings persists guild settings
	UpdateGuildSettings(ctx context.Context, settings *entities.GuildSettings) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}
