package entities

import (
	"time"
)

// Default reasons recorded when an admin does not give one
const (
	DefaultCreditReason = "Выдано админом"
	DefaultDebitReason  = "Изъято админом"
	DefaultSetReason    = "Установлено админом"
)

// Transaction is an immutable record of a balance delta
type Transaction struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	GuildID   int64     `db:"guild_id" json:"guild_id"`
	Amount    int64     `db:"amount" json:"amount"` // positive = credit, negative = debit
	Reason    string    `db:"reason" json:"reason"`
	ActorID   *int64    `db:"actor_id" json:"actor_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// IsCredit returns true if the transaction added points
func (t *Transaction) IsCredit() bool {
	return t.Amount > 0
}

// IsDebit returns true if the transaction removed points
func (t *Transaction) IsDebit() bool {
	return t.Amount < 0
}

// HasActor returns true if an admin performed the change
func (t *Transaction) HasActor() bool {
	return t.ActorID != nil
}
