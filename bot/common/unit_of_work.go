package common

import (
	"context"
	"fmt"

	"pointsbot/application"
	"pointsbot/domain/interfaces"
	"pointsbot/domain/services"
)

// GuildServices are the domain services bound to one guild unit of work
type GuildServices struct {
	Ledger   interfaces.LedgerService
	Tiers    interfaces.RoleThresholdService
	Settings interfaces.GuildSettingsService
}

// InGuild runs fn inside a unit of work scoped to guildID. The work is committed
// when fn returns nil and rolled back otherwise.
func InGuild(ctx context.Context, factory application.UnitOfWorkFactory, guildID int64, fn func(svc *GuildServices) error) error {
	uow := factory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	svc := &GuildServices{
		Ledger:   services.NewLedgerService(guildID, uow.AccountRepository(), uow.TransactionRepository(), uow.EventBus()),
		Tiers:    services.NewRoleThresholdService(guildID, uow.RoleThresholdRepository(), uow.GuildSettingsRepository(), uow.EventBus()),
		Settings: services.NewGuildSettingsService(uow.GuildSettingsRepository()),
	}

	if err := fn(svc); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
