package repository

import (
	"context"
	"errors"
	"testing"

	"pointsbot/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestStorageError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		unavailable bool
		invalid     bool
	}{
		{"deadline", context.DeadlineExceeded, true, false},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, true, false},
		{"connection failure", &pgconn.PgError{Code: "08006"}, true, false},
		{"check violation", &pgconn.PgError{Code: "23514"}, false, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false, false},
		{"scan failure", errors.New("can't scan into dest[2]"), false, false},
		{"no rows", pgx.ErrNoRows, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := storageError("update account 1", tt.err)

			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.unavailable, errors.Is(err, domain.ErrStorageUnavailable))
			assert.Equal(t, tt.invalid, errors.Is(err, domain.ErrInvalidAmount))
			assert.Contains(t, err.Error(), "failed to update account 1")
		})
	}
}
