package errs

import "errors"

// Sentinel errors shared across usecase layers. Handlers map these onto
// HTTP status codes; nothing below the handler layer retries on them.
var (
	// Validation
	ErrValidation            = errors.New("validation failed")
	ErrInvalidInterval       = errors.New("invalid interval")
	ErrNotGrainAligned       = errors.New("interval not aligned to scheduling grain")
	ErrPastOrTooSoon         = errors.New("slot is in the past or inside the minimum lead time")
	ErrAdvanceWindowExceeded = errors.New("slot is beyond the maximum advance-booking window")

	// Scheduling
	ErrOffTime          = errors.New("interval intersects off-time")
	ErrCapacityExceeded = errors.New("slot capacity exceeded")

	// Lookups
	ErrBusinessNotFound    = errors.New("business not found")
	ErrServiceNotFound     = errors.New("service not found")
	ErrReservationNotFound = errors.New("reservation not found or expired")
	ErrAppointmentNotFound = errors.New("appointment not found")

	// Concurrency / state
	ErrConflict                = errors.New("appointment was concurrently modified")
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")

	// Idempotency
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")

	// Operations
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
