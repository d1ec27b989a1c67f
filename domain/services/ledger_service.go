package services

import (
	"context"
	"fmt"
	"math"

	"pointsbot/domain"
	"pointsbot/domain/entities"
	"pointsbot/domain/interfaces"
	"pointsbot/events"

	log "github.com/sirupsen/logrus"
)

// ledgerService implements the LedgerService interface for one guild
type ledgerService struct {
	guildID         int64
	accountRepo     interfaces.AccountRepository
	transactionRepo interfaces.TransactionRepository
	eventPublisher  interfaces.EventPublisher
}

// NewLedgerService creates a ledger bound to the guild of the given repositories
func NewLedgerService(
	guildID int64,
	accountRepo interfaces.AccountRepository,
	transactionRepo interfaces.TransactionRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.LedgerService {
	return &ledgerService{
		guildID:         guildID,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		eventPublisher:  eventPublisher,
	}
}

// GetBalance returns the user's balance, 0 for unknown users
func (s *ledgerService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return 0, nil
	}
	return account.Points, nil
}

// Credit adds a positive amount and returns the new balance
func (s *ledgerService) Credit(ctx context.Context, userID int64, amount int64, actorID *int64, reason string) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit amount must be positive, got %d: %w", amount, domain.ErrInvalidAmount)
	}

	account, err := s.accountRepo.GetOrCreateForUpdate(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load account: %w", err)
	}

	if amount > math.MaxInt64-account.Points {
		return 0, fmt.Errorf("credit of %d overflows balance %d: %w", amount, account.Points, domain.ErrInvalidAmount)
	}

	newBalance := account.Points + amount
	if err := s.applyChange(ctx, account, newBalance, entities.TransactionTypeCredit, actorID, reason); err != nil {
		return 0, err
	}

	return newBalance, nil
}

// Debit removes min(amount, balance) and returns the amount removed with the new balance
func (s *ledgerService) Debit(ctx context.Context, userID int64, amount int64, actorID *int64, reason string) (int64, int64, error) {
	if amount <= 0 {
		return 0, 0, fmt.Errorf("debit amount must be positive, got %d: %w", amount, domain.ErrInvalidAmount)
	}

	account, err := s.accountRepo.GetOrCreateForUpdate(ctx, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load account: %w", err)
	}

	applied := min(amount, account.Points)
	if applied == 0 {
		return 0, account.Points, nil
	}

	newBalance := account.Points - applied
	if err := s.applyChange(ctx, account, newBalance, entities.TransactionTypeDebit, actorID, reason); err != nil {
		return 0, 0, err
	}

	return applied, newBalance, nil
}

// SetBalance overwrites the balance; negative amounts are rejected
func (s *ledgerService) SetBalance(ctx context.Context, userID int64, amount int64, actorID *int64, reason string) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("balance cannot be negative, got %d: %w", amount, domain.ErrInvalidAmount)
	}

	account, err := s.accountRepo.GetOrCreateForUpdate(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load account: %w", err)
	}

	if account.Points == amount {
		return amount, nil
	}

	if err := s.applyChange(ctx, account, amount, entities.TransactionTypeSet, actorID, reason); err != nil {
		return 0, err
	}

	return amount, nil
}

// Rank returns 1 + the number of accounts with strictly more points; ties share a rank
func (s *ledgerService) Rank(ctx context.Context, userID int64) (int, error) {
	balance, err := s.GetBalance(ctx, userID)
	if err != nil {
		return 0, err
	}

	above, err := s.accountRepo.CountWithMorePoints(ctx, balance)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts above %d: %w", balance, err)
	}

	return int(above) + 1, nil
}

// Leaderboard returns up to limit entries starting at offset
func (s *ledgerService) Leaderboard(ctx context.Context, limit, offset int) ([]*entities.LeaderboardEntry, error) {
	if limit <= 0 {
		return []*entities.LeaderboardEntry{}, nil
	}
	if offset < 0 {
		offset = 0
	}

	accounts, err := s.accountRepo.GetLeaderboard(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	entries := make([]*entities.LeaderboardEntry, 0, len(accounts))
	for i, account := range accounts {
		entries = append(entries, &entities.LeaderboardEntry{
			Position: offset + i + 1,
			UserID:   account.UserID,
			Points:   account.Points,
		})
	}
	return entries, nil
}

// GuildStats aggregates the guild's accounts
func (s *ledgerService) GuildStats(ctx context.Context) (*entities.GuildStats, error) {
	stats, err := s.accountRepo.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild stats: %w", err)
	}
	if stats == nil {
		return &entities.GuildStats{}, nil
	}
	return stats, nil
}

// TransactionHistory returns the user's transactions, most recent first
func (s *ledgerService) TransactionHistory(ctx context.Context, userID int64, limit int) ([]*entities.Transaction, error) {
	if limit <= 0 {
		return []*entities.Transaction{}, nil
	}

	history, err := s.transactionRepo.GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	return history, nil
}

// ResetGuild deletes every account and transaction of the guild
func (s *ledgerService) ResetGuild(ctx context.Context) (*entities.ResetSummary, error) {
	transactionsRemoved, err := s.transactionRepo.DeleteAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to delete transactions: %w", err)
	}

	accountsRemoved, err := s.accountRepo.DeleteAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to delete accounts: %w", err)
	}

	summary := &entities.ResetSummary{
		AccountsRemoved:     accountsRemoved,
		TransactionsRemoved: transactionsRemoved,
	}

	if err := s.eventPublisher.Publish(events.GuildResetEvent{
		GuildID:             s.guildID,
		AccountsRemoved:     accountsRemoved,
		TransactionsRemoved: transactionsRemoved,
	}); err != nil {
		log.WithError(err).Error("Failed to publish guild reset event")
	}

	log.WithFields(log.Fields{
		"guildID":             s.guildID,
		"accountsRemoved":     accountsRemoved,
		"transactionsRemoved": transactionsRemoved,
	}).Info("Guild ledger reset")

	return summary, nil
}

// applyChange writes the new balance and records the matching transaction
func (s *ledgerService) applyChange(
	ctx context.Context,
	account *entities.Account,
	newBalance int64,
	transactionType entities.TransactionType,
	actorID *int64,
	reason string,
) error {
	if err := s.accountRepo.UpdatePoints(ctx, account.UserID, newBalance); err != nil {
		return fmt.Errorf("failed to update points: %w", err)
	}

	transaction := &entities.Transaction{
		UserID:  account.UserID,
		GuildID: s.guildID,
		Amount:  newBalance - account.Points,
		Reason:  reason,
		ActorID: actorID,
	}

	return recordBalanceChange(ctx, s.transactionRepo, s.eventPublisher, transaction, account.Points, newBalance, transactionType)
}
