package errs

import "errors"

// Sentinel errors shared by the usecase layer. Handlers map these to HTTP
// statuses; overflow is not represented here because it is a normal timeline
// outcome, not an error.
var (
	// Booking errors
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidTransition = errors.New("invalid status transition")

	// Scheduling errors
	ErrValidation = errors.New("booking validation failed")
	ErrConflict   = errors.New("time slot conflict")
	ErrCapacity   = errors.New("queue capacity reached")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
