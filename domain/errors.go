package domain

import "errors"

// Errors returned by the ledger core. Callers compare with errors.Is; connection
// failures wrap ErrStorageUnavailable around the underlying driver error.
var (
	// ErrInvalidAmount is returned for non-positive credit/debit amounts, negative
	// set amounts, non-positive role thresholds and credits that overflow a balance.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidRole is returned when a role threshold has no usable name.
	ErrInvalidRole = errors.New("invalid role")

	// ErrStorageUnavailable is returned when the store could not complete an operation.
	// Nothing from the failed operation is visible afterwards.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrRoleNotFound is returned when a tier role does not exist on the platform and
	// could not be created.
	ErrRoleNotFound = errors.New("role not found")

	// ErrRolePermission is returned when the platform refuses a role change.
	ErrRolePermission = errors.New("missing permission to manage role")
)
