package services

import (
	"context"
	"fmt"

	"pointsbot/domain/entities"
	"pointsbot/domain/interfaces"
	"pointsbot/events"

	log "github.com/sirupsen/logrus"
)

// recordBalanceChange appends the transaction and raises the balance change event.
// Every balance mutation goes through here.
func recordBalanceChange(
	ctx context.Context,
	transactionRepo interfaces.TransactionRepository,
	eventPublisher interfaces.EventPublisher,
	transaction *entities.Transaction,
	oldBalance, newBalance int64,
	transactionType entities.TransactionType,
) error {
	if err := transactionRepo.Record(ctx, transaction); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	event := events.BalanceChangeEvent{
		UserID:          transaction.UserID,
		GuildID:         transaction.GuildID,
		OldBalance:      oldBalance,
		NewBalance:      newBalance,
		ChangeAmount:    transaction.Amount,
		TransactionType: transactionType,
		ActorID:         transaction.ActorID,
	}
	log.WithFields(log.Fields{
		"userID":          event.UserID,
		"guildID":         event.GuildID,
		"oldBalance":      event.OldBalance,
		"newBalance":      event.NewBalance,
		"transactionType": event.TransactionType,
		"changeAmount":    event.ChangeAmount,
	}).Debug("Publishing BalanceChangeEvent")

	// The transaction is already recorded; a lost event only delays role sync
	if err := eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	return nil
}
