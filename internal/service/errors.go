package service

import "errors"

// Errors returned by the register core. Handlers map these onto HTTP
// statuses; anything else is a persistence failure and retryable.
var (
	// Validation: caller-fixable, never retried.
	ErrInvalidAmount        = errors.New("amount is invalid")
	ErrEmptyDescription     = errors.New("description is required")
	ErrInvalidEntryType     = errors.New("invalid entry type")
	ErrInvalidPaymentMethod = errors.New("invalid payment_method")

	// State: the caller's view of session state is stale; refresh and retry once.
	ErrRegisterAlreadyOpen = errors.New("register is already open for this store")
	ErrRegisterNotOpen     = errors.New("register session is not open")
	ErrSessionNotOpen      = errors.New("register session is closed")

	// Not found.
	ErrSessionNotFound = errors.New("register session not found")
	ErrEntryNotFound   = errors.New("ledger entry not found")

	// Permission: never retried, surfaced as access denied.
	ErrPermissionDenied = errors.New("permission denied")
)
