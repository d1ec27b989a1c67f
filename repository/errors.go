package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"pointsbot/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// storageError wraps a driver error, keeping the cause inspectable. Connection
// failures match domain.ErrStorageUnavailable and rejected balances match
// domain.ErrInvalidAmount.
func storageError(op string, err error) error {
	switch {
	case isConnectionError(err):
		return fmt.Errorf("failed to %s: %w: %w", op, domain.ErrStorageUnavailable, err)
	case isCheckViolation(err):
		return fmt.Errorf("failed to %s: %w: %w", op, domain.ErrInvalidAmount, err)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}

// isCheckViolation reports whether a CHECK constraint rejected the row
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// isConnectionError reports whether err means the database could not be reached
func isConnectionError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	// Class 08: connection exception, 57P: operator intervention
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P")
	}

	return false
}
