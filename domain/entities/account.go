package entities

import (
	"time"
)

// Account is a user's point balance within a specific guild
type Account struct {
	UserID    int64     `db:"user_id" json:"user_id"`
	GuildID   int64     `db:"guild_id" json:"guild_id"`
	Points    int64     `db:"points" json:"points"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HasPoints reports whether the account holds a positive balance
func (a *Account) HasPoints() bool {
	return a.Points > 0
}
