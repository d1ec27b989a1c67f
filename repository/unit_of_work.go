package repository

import (
	"context"
	"errors"
	"fmt"

	"pointsbot/application"
	"pointsbot/database"
	"pointsbot/domain/interfaces"
	"pointsbot/events"
	"pointsbot/infrastructure/observability"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                *database.DB
	tx                pgx.Tx
	ctx               context.Context
	guildID           int64
	transactionalBus  *events.TransactionalBus
	accountRepo       interfaces.AccountRepository
	transactionRepo   interfaces.TransactionRepository
	roleThresholdRepo interfaces.RoleThresholdRepository
	guildSettingsRepo interfaces.GuildSettingsRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory. Events raised inside a unit
// of work reach eventBus only after it commits; eventBus may be nil.
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) application.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

// CreateForGuild creates a new UnitOfWork scoped to a guild
func (f *unitOfWorkFactory) CreateForGuild(guildID int64) application.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		guildID:          guildID,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		if isConnectionError(err) {
			log.WithError(err).WithField("guildID", u.guildID).Error("Database unreachable")
		}
		return storageError("begin transaction", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create guild-scoped repositories with the transaction
	u.accountRepo = newAccountRepository(tx, u.guildID)
	u.transactionRepo = newTransactionRepository(tx, u.guildID)
	u.roleThresholdRepo = newRoleThresholdRepository(tx, u.guildID)
	u.guildSettingsRepo = newGuildSettingsRepository(tx, u.guildID)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	done := observability.GetMetrics().MeasureDatabaseQuery("unit_of_work", "Commit")
	err := u.tx.Commit(u.ctx)
	done()
	u.tx = nil
	if err != nil {
		u.transactionalBus.Discard()
		return storageError("commit transaction", err)
	}

	// Flush pending events after successful commit
	u.transactionalBus.Flush()

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	u.tx = nil

	// Discard pending events on rollback
	u.transactionalBus.Discard()

	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	return nil
}

// GuildID returns the guild this unit of work is scoped to
func (u *unitOfWork) GuildID() int64 {
	return u.guildID
}

// AccountRepository returns the account repository for this unit of work
func (u *unitOfWork) AccountRepository() interfaces.AccountRepository {
	if u.accountRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.accountRepo
}

// TransactionRepository returns the transaction repository for this unit of work
func (u *unitOfWork) TransactionRepository() interfaces.TransactionRepository {
	if u.transactionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionRepo
}

// RoleThresholdRepository returns the role threshold repository for this unit of work
func (u *unitOfWork) RoleThresholdRepository() interfaces.RoleThresholdRepository {
	if u.roleThresholdRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.roleThresholdRepo
}

// GuildSettingsRepository returns the guild settings repository for this unit of work
func (u *unitOfWork) GuildSettingsRepository() interfaces.GuildSettingsRepository {
	if u.guildSettingsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.guildSettingsRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	return u.transactionalBus
}
