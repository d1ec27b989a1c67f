package repository

import (
	"context"
	"errors"
	"fmt"

	"pointsbot/database"
	"pointsbot/domain/entities"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `user_id, guild_id, points, created_at, updated_at`

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q       Queryable
	guildID int64
}

// NewAccountRepository creates a new account repository scoped to a guild
func NewAccountRepository(db *database.DB, guildID int64) *AccountRepository {
	return &AccountRepository{q: db.Pool, guildID: guildID}
}

// newAccountRepository creates a guild-scoped account repository on a transaction
func newAccountRepository(q Queryable, guildID int64) *AccountRepository {
	return &AccountRepository{q: q, guildID: guildID}
}

func scanAccount(row pgx.Row) (*entities.Account, error) {
	var account entities.Account
	err := row.Scan(
		&account.UserID,
		&account.GuildID,
		&account.Points,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByUserID retrieves an account without creating it
func (r *AccountRepository) GetByUserID(ctx context.Context, userID int64) (*entities.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE guild_id = $1 AND user_id = $2
	`

	account, err := scanAccount(r.q.QueryRow(ctx, query, r.guildID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError(fmt.Sprintf("get account %d", userID), err)
	}

	return account, nil
}

// GetOrCreateForUpdate returns the account, inserting it with zero points when absent.
// The no-op update on conflict takes the row lock, so concurrent mutations of the
// same account serialize until the transaction ends.
func (r *AccountRepository) GetOrCreateForUpdate(ctx context.Context, userID int64) (*entities.Account, error) {
	query := `
		INSERT INTO accounts (guild_id, user_id, points)
		VALUES ($1, $2, 0)
		ON CONFLICT (guild_id, user_id) DO UPDATE SET guild_id = EXCLUDED.guild_id
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, r.guildID, userID))
	if err != nil {
		return nil, storageError(fmt.Sprintf("get or create account %d", userID), err)
	}

	return account, nil
}

// UpdatePoints overwrites the balance of an existing account
func (r *AccountRepository) UpdatePoints(ctx context.Context, userID int64, points int64) error {
	query := `
		UPDATE accounts
		SET points = $3, updated_at = NOW()
		WHERE guild_id = $1 AND user_id = $2
	`

	result, err := r.q.Exec(ctx, query, r.guildID, userID, points)
	if err != nil {
		return storageError(fmt.Sprintf("update points for user %d", userID), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("account for user %d not found in guild %d", userID, r.guildID)
	}

	return nil
}

// CountWithMorePoints counts accounts holding strictly more than points
func (r *AccountRepository) CountWithMorePoints(ctx context.Context, points int64) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM accounts
		WHERE guild_id = $1 AND points > $2
	`

	var count int64
	if err := r.q.QueryRow(ctx, query, r.guildID, points).Scan(&count); err != nil {
		return 0, storageError("count accounts above balance", err)
	}

	return count, nil
}

// GetLeaderboard returns accounts ordered by points desc, created_at asc, user_id asc
func (r *AccountRepository) GetLeaderboard(ctx context.Context, limit, offset int) ([]*entities.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE guild_id = $1
		ORDER BY points DESC, created_at ASC, user_id ASC
		LIMIT $2 OFFSET $3
	`

	return r.queryAccounts(ctx, "get leaderboard", query, r.guildID, limit, offset)
}

// GetAll returns every account of the guild
func (r *AccountRepository) GetAll(ctx context.Context) ([]*entities.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE guild_id = $1
		ORDER BY user_id
	`

	return r.queryAccounts(ctx, "get accounts", query, r.guildID)
}

func (r *AccountRepository) queryAccounts(ctx context.Context, op, query string, args ...any) ([]*entities.Account, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError(op, err)
	}
	defer rows.Close()

	accounts := make([]*entities.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, storageError("scan account", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError(op, err)
	}

	return accounts, nil
}

// GetStats aggregates every account of the guild
func (r *AccountRepository) GetStats(ctx context.Context) (*entities.GuildStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(points), 0)::BIGINT,
			COALESCE(AVG(points), 0)::FLOAT8,
			COALESCE(MAX(points), 0)::BIGINT
		FROM accounts
		WHERE guild_id = $1
	`

	var stats entities.GuildStats
	err := r.q.QueryRow(ctx, query, r.guildID).Scan(
		&stats.AccountCount,
		&stats.TotalPoints,
		&stats.AveragePoints,
		&stats.MaxPoints,
	)
	if err != nil {
		return nil, storageError("get guild stats", err)
	}

	return &stats, nil
}

// DeleteAll removes every account of the guild
func (r *AccountRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM accounts WHERE guild_id = $1`, r.guildID)
	if err != nil {
		return 0, storageError("delete accounts", err)
	}

	return result.RowsAffected(), nil
}
