package filestore

import (
	"context"
	"fmt"
	"sort"

	"pointsbot/domain"
	"pointsbot/domain/entities"
)

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

type accountRepository struct {
	u *unitOfWork
}

func (r *accountRepository) GetByUserID(ctx context.Context, userID int64) (*entities.Account, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	account, ok := r.u.guild(false).Accounts[key(userID)]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

// GetOrCreateForUpdate needs no lock: the whole unit of work already runs alone
func (r *accountRepository) GetOrCreateForUpdate(ctx context.Context, userID int64) (*entities.Account, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	g := r.u.guild(false)
	account, ok := g.Accounts[key(userID)]
	if !ok {
		now := r.u.store.now()
		account = &entities.Account{
			UserID:    userID,
			GuildID:   r.u.guildID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		r.u.guild(true).Accounts[key(userID)] = account
	}

	copied := *account
	return &copied, nil
}

func (r *accountRepository) UpdatePoints(ctx context.Context, userID int64, points int64) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if points < 0 {
		return fmt.Errorf("points cannot be negative for user %d: %w", userID, domain.ErrInvalidAmount)
	}

	account, ok := r.u.guild(false).Accounts[key(userID)]
	if !ok {
		return fmt.Errorf("account for user %d not found in guild %d", userID, r.u.guildID)
	}

	r.u.guild(true)
	account.Points = points
	account.UpdatedAt = r.u.store.now()
	return nil
}

func (r *accountRepository) CountWithMorePoints(ctx context.Context, points int64) (int64, error) {
	if err := checkContext(ctx); err != nil {
		return 0, err
	}

	var count int64
	for _, account := range r.u.guild(false).Accounts {
		if account.Points > points {
			count++
		}
	}
	return count, nil
}

// sortedAccounts returns copies ordered by points desc, created_at asc, user_id asc
func (r *accountRepository) sortedAccounts() []*entities.Account {
	accounts := make([]*entities.Account, 0, len(r.u.guild(false).Accounts))
	for _, account := range r.u.guild(false).Accounts {
		copied := *account
		accounts = append(accounts, &copied)
	}

	sort.Slice(accounts, func(i, j int) bool {
		a, b := accounts[i], accounts[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.UserID < b.UserID
	})
	return accounts
}

func (r *accountRepository) GetLeaderboard(ctx context.Context, limit, offset int) ([]*entities.Account, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	accounts := r.sortedAccounts()
	if offset >= len(accounts) {
		return []*entities.Account{}, nil
	}
	end := min(offset+limit, len(accounts))
	return accounts[offset:end], nil
}

func (r *accountRepository) GetAll(ctx context.Context) ([]*entities.Account, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	accounts := r.sortedAccounts()
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].UserID < accounts[j].UserID })
	return accounts, nil
}

func (r *accountRepository) GetStats(ctx context.Context) (*entities.GuildStats, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	stats := &entities.GuildStats{}
	for _, account := range r.u.guild(false).Accounts {
		stats.AccountCount++
		stats.TotalPoints += account.Points
		stats.MaxPoints = max(stats.MaxPoints, account.Points)
	}
	if stats.AccountCount > 0 {
		stats.AveragePoints = float64(stats.TotalPoints) / float64(stats.AccountCount)
	}
	return stats, nil
}

func (r *accountRepository) DeleteAll(ctx context.Context) (int64, error) {
	if err := checkContext(ctx); err != nil {
		return 0, err
	}

	g := r.u.guild(false)
	removed := int64(len(g.Accounts))
	if removed == 0 && len(g.Transactions) == 0 {
		return 0, nil
	}

	g = r.u.guild(true)
	g.Accounts = make(map[string]*entities.Account)
	// Transactions go with their accounts, as with the foreign key cascade
	g.Transactions = make([]*entities.Transaction, 0)
	return removed, nil
}

type transactionRepository struct {
	u *unitOfWork
}

func (r *transactionRepository) Record(ctx context.Context, transaction *entities.Transaction) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	g := r.u.guild(true)
	if _, ok := g.Accounts[key(transaction.UserID)]; !ok {
		return fmt.Errorf("account for user %d not found in guild %d", transaction.UserID, r.u.guildID)
	}

	transaction.ID = r.u.working.NextTransactionID
	transaction.GuildID = r.u.guildID
	transaction.CreatedAt = r.u.store.now()
	r.u.working.NextTransactionID++

	copied := *transaction
	g.Transactions = append(g.Transactions, &copied)
	return nil
}

func (r *transactionRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.Transaction, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	history := make([]*entities.Transaction, 0)
	for _, tx := range r.u.guild(false).Transactions {
		if tx.UserID == userID {
			copied := *tx
			history = append(history, &copied)
		}
	}

	sort.Slice(history, func(i, j int) bool {
		a, b := history[i], history[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	if len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

func (r *transactionRepository) DeleteAll(ctx context.Context) (int64, error) {
	if err := checkContext(ctx); err != nil {
		return 0, err
	}

	g := r.u.guild(false)
	removed := int64(len(g.Transactions))
	if removed == 0 {
		return 0, nil
	}

	r.u.guild(true).Transactions = make([]*entities.Transaction, 0)
	return removed, nil
}

type roleThresholdRepository struct {
	u *unitOfWork
}

func (r *roleThresholdRepository) GetAll(ctx context.Context) ([]*entities.RoleThreshold, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	thresholds := make([]*entities.RoleThreshold, 0)
	for _, threshold := range r.u.guild(false).RoleThresholds {
		copied := *threshold
		thresholds = append(thresholds, &copied)
	}
	sort.Slice(thresholds, func(i, j int) bool {
		return thresholds[i].PointsRequired < thresholds[j].PointsRequired
	})
	return thresholds, nil
}

func (r *roleThresholdRepository) GetByPoints(ctx context.Context, pointsRequired int64) (*entities.RoleThreshold, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	threshold, ok := r.u.guild(false).RoleThresholds[key(pointsRequired)]
	if !ok {
		return nil, nil
	}
	copied := *threshold
	return &copied, nil
}

func (r *roleThresholdRepository) Upsert(ctx context.Context, threshold *entities.RoleThreshold) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	g := r.u.guild(true)
	now := r.u.store.now()
	threshold.GuildID = r.u.guildID
	threshold.UpdatedAt = now
	if existing, ok := g.RoleThresholds[key(threshold.PointsRequired)]; ok {
		threshold.CreatedAt = existing.CreatedAt
	} else {
		threshold.CreatedAt = now
	}

	copied := *threshold
	g.RoleThresholds[key(threshold.PointsRequired)] = &copied
	return nil
}

func (r *roleThresholdRepository) Delete(ctx context.Context, pointsRequired int64) (bool, error) {
	if err := checkContext(ctx); err != nil {
		return false, err
	}

	if _, ok := r.u.guild(false).RoleThresholds[key(pointsRequired)]; !ok {
		return false, nil
	}
	delete(r.u.guild(true).RoleThresholds, key(pointsRequired))
	return true, nil
}

type guildSettingsRepository struct {
	u *unitOfWork
}

// GetOrCreateGuildSettings returns defaults without persisting them; settings live
// inside the guild document
func (r *guildSettingsRepository) GetOrCreateGuildSettings(ctx context.Context) (*entities.GuildSettings, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	g := r.u.guild(false)
	settings := &entities.GuildSettings{
		GuildID:            r.u.guildID,
		DefaultTiersSeeded: g.DefaultTiersSeeded,
	}
	if g.NotificationChannelID != nil {
		channelID := *g.NotificationChannelID
		settings.NotificationChannelID = &channelID
	}
	return settings, nil
}

func (r *guildSettingsRepository) UpdateGuildSettings(ctx context.Context, settings *entities.GuildSettings) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	g := r.u.guild(true)
	g.DefaultTiersSeeded = settings.DefaultTiersSeeded
	g.NotificationChannelID = nil
	if settings.NotificationChannelID != nil {
		channelID := *settings.NotificationChannelID
		g.NotificationChannelID = &channelID
	}
	return nil
}
