package filestore

import (
	"context"
	"fmt"

	"pointsbot/domain"
	"pointsbot/domain/interfaces"
	"pointsbot/events"

	log "github.com/sirupsen/logrus"
)

// unitOfWork works on a private copy of the document that replaces the store's
// document only when the commit reaches disk
type unitOfWork struct {
	store            *Store
	guildID          int64
	transactionalBus *events.TransactionalBus

	active  bool
	working *document
	dirty   bool

	accountRepo       *accountRepository
	transactionRepo   *transactionRepository
	roleThresholdRepo *roleThresholdRepository
	guildSettingsRepo *guildSettingsRepository
}

// Begin waits for the store and takes a private copy of the document
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.active {
		return fmt.Errorf("transaction already started")
	}

	if err := u.store.acquire(ctx); err != nil {
		return err
	}

	u.active = true
	u.working = u.store.doc.clone()
	u.dirty = false

	u.accountRepo = &accountRepository{u: u}
	u.transactionRepo = &transactionRepository{u: u}
	u.roleThresholdRepo = &roleThresholdRepository{u: u}
	u.guildSettingsRepo = &guildSettingsRepository{u: u}

	return nil
}

// Commit writes the document when anything changed, then releases pending events
func (u *unitOfWork) Commit() error {
	if !u.active {
		return fmt.Errorf("no transaction to commit")
	}
	defer u.end()

	if u.dirty {
		if err := u.store.write(u.working); err != nil {
			u.transactionalBus.Discard()
			log.WithError(err).WithField("path", u.store.path).Error("Failed to write data file")
			return fmt.Errorf("failed to commit transaction: %w: %w", domain.ErrStorageUnavailable, err)
		}
		u.store.doc = u.working
	}

	u.transactionalBus.Flush()
	return nil
}

// Rollback drops the private copy and pending events. Safe after Commit.
func (u *unitOfWork) Rollback() error {
	if !u.active {
		return nil
	}
	u.transactionalBus.Discard()
	u.end()
	return nil
}

func (u *unitOfWork) end() {
	u.active = false
	u.working = nil
	u.store.release()
}

// guild returns the working copy of this unit of work's guild, creating it on write
func (u *unitOfWork) guild(forWrite bool) *guildDocument {
	if !u.active {
		panic("unit of work is not active")
	}

	id := key(u.guildID)
	g, ok := u.working.Guilds[id]
	if !ok {
		g = newGuildDocument()
		if !forWrite {
			return g
		}
		u.working.Guilds[id] = g
	}
	if forWrite {
		u.dirty = true
	}
	return g
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
