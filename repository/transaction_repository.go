package repository

import (
	"context"
	"fmt"

	"pointsbot/database"
	"pointsbot/domain/entities"
)

// TransactionRepository implements the TransactionRepository interface
type TransactionRepository struct {
	q       Queryable
	guildID int64
}

// NewTransactionRepository creates a new transaction repository scoped to a guild
func NewTransactionRepository(db *database.DB, guildID int64) *TransactionRepository {
	return &TransactionRepository{q: db.Pool, guildID: guildID}
}

// newTransactionRepository creates a guild-scoped transaction repository on a transaction
func newTransactionRepository(q Queryable, guildID int64) *TransactionRepository {
	return &TransactionRepository{q: q, guildID: guildID}
}

// Record appends a transaction, filling in ID, GuildID and CreatedAt
func (r *TransactionRepository) Record(ctx context.Context, transaction *entities.Transaction) error {
	query := `
		INSERT INTO transactions (guild_id, user_id, amount, reason, actor_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	transaction.GuildID = r.guildID
	err := r.q.QueryRow(ctx, query,
		r.guildID,
		transaction.UserID,
		transaction.Amount,
		transaction.Reason,
		transaction.ActorID,
	).Scan(&transaction.ID, &transaction.CreatedAt)
	if err != nil {
		return storageError(fmt.Sprintf("record transaction for user %d", transaction.UserID), err)
	}

	return nil
}

// GetByUser returns a user's transactions, most recent first
func (r *TransactionRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.Transaction, error) {
	query := `
		SELECT id, user_id, guild_id, amount, reason, actor_id, created_at
		FROM transactions
		WHERE guild_id = $1 AND user_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, r.guildID, userID, limit)
	if err != nil {
		return nil, storageError(fmt.Sprintf("get transactions for user %d", userID), err)
	}
	defer rows.Close()

	transactions := make([]*entities.Transaction, 0)
	for rows.Next() {
		var tx entities.Transaction
		err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.GuildID,
			&tx.Amount,
			&tx.Reason,
			&tx.ActorID,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, storageError("scan transaction", err)
		}
		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterate transactions", err)
	}

	return transactions, nil
}

// DeleteAll removes every transaction of the guild
func (r *TransactionRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM transactions WHERE guild_id = $1`, r.guildID)
	if err != nil {
		return 0, storageError("delete transactions", err)
	}

	return result.RowsAffected(), nil
}
