package booking

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrIllegalState      = errors.New("illegal booking state")
	ErrConcurrentUpdate  = errors.New("booking was modified concurrently")
)

// ConflictError reports a bed that is unavailable for the requested window,
// with enough detail for the caller to adjust the request. A zero BedNumber
// means the conflict came from a concurrent allocation that won the
// serialization race rather than from a visible overlapping booking.
type ConflictError struct {
	BedNumber  string
	RoomNumber string
}

func (e *ConflictError) Error() string {
	if e.BedNumber == "" {
		return "booking conflict: a concurrent reservation was committed first"
	}
	return fmt.Sprintf("bed %s in room %s is not available for the requested dates", e.BedNumber, e.RoomNumber)
}

// IsConflict reports whether err is a booking conflict of either kind.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
