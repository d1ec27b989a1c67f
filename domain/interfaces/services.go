package interfaces

import (
	"context"

	"pointsbot/domain/entities"
)

// LedgerService owns balances and the transaction log of one guild
type LedgerService interface {
	// GetBalance returns the user's balance, 0 for unknown users
	GetBalance(ctx context.Context, userID int64) (int64, error)

	// Credit adds a positive amount and returns the new balance
	Credit(ctx context.Context, userID int64, amount int64, actorID *int64, reason string) (int64, error)

	// Debit removes up to amount, never going below zero, and returns the amount
	// actually removed together with the new balance
	Debit(ctx context.Context, userID int64, amount int64, actorID *int64, reason string) (applied int64, newBalance int64, err error)

	// SetBalance overwrites the balance and returns it
	SetBalance(ctx context.Context, userID int64, amount int64, actorID *int64, reason string) (int64, error)

	// Rank returns the user's 1-based position by descending balance
	Rank(ctx context.Context, userID int64) (int, error)

	// Leaderboard returns up to limit entries starting at offset
	Leaderboard(ctx context.Context, limit, offset int) ([]*entities.LeaderboardEntry, error)

	// GuildStats aggregates the guild's accounts
	GuildStats(ctx context.Context) (*entities.GuildStats, error)

	// TransactionHistory returns the user's transactions, most recent first
	TransactionHistory(ctx context.Context, userID int64, limit int) ([]*entities.Transaction, error)

	// ResetGuild deletes every account and transaction of the guild
	ResetGuild(ctx context.Context) (*entities.ResetSummary, error)
}

// RoleThresholdService manages the guild's tier table
type RoleThresholdService interface {
	// ListThresholds returns the tiers ordered by points ascending
	ListThresholds(ctx context.Context) ([]*entities.RoleThreshold, error)

	// SetThreshold creates or overwrites the tier at pointsRequired
	SetThreshold(ctx context.Context, pointsRequired int64, roleName, roleColor string) (*entities.RoleThreshold, error)

	// RemoveThreshold deletes the tier at pointsRequired, reporting whether it existed
	RemoveThreshold(ctx context.Context, pointsRequired int64) (bool, error)

	// EnsureDefaults seeds the default tiers the first time a guild is seen
	EnsureDefaults(ctx context.Context) (bool, error)
}

// GuildSettingsService manages per-guild settings
type GuildSettingsService interface {
	// GetOrCreateSettings retrieves guild settings or creates default ones
	GetOrCreateSettings(ctx context.Context) (*entities.GuildSettings, error)

	// UpdateNotificationChannel sets the announcement channel; nil disables announcements
	UpdateNotificationChannel(ctx context.Context, channelID *int64) error
}
