package application

import (
	"context"

	"pointsbot/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and releases pending events
	Commit() error

	// Rollback rolls back the transaction and drops pending events.
	// Safe to call after Commit.
	Rollback() error

	// GuildID returns the guild the unit of work is scoped to
	GuildID() int64

	// Repository getters
	AccountRepository() interfaces.AccountRepository
	TransactionRepository() interfaces.TransactionRepository
	RoleThresholdRepository() interfaces.RoleThresholdRepository
	GuildSettingsRepository() interfaces.GuildSettingsRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// CreateForGuild creates a new UnitOfWork instance scoped to a specific guild
	CreateForGuild(guildID int64) UnitOfWork
}
