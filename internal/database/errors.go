package database

import "errors"

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrCapacityExceeded is returned when a booking would push the
	// day's committed tables past its limit.
	ErrCapacityExceeded = errors.New("table capacity exceeded for date")

	// ErrDateDisabled is returned for dates blocked by the day config.
	ErrDateDisabled = errors.New("date is disabled for booking")

	// ErrPastDate rejects bookings on dates already gone.
	ErrPastDate = errors.New("booking date is in the past")

	// ErrDateTooFar rejects bookings beyond the allowed horizon.
	ErrDateTooFar = errors.New("booking date is too far in the future")

	// ErrInvalidStatusChange rejects transitions outside
	// confirmed -> checked_in and confirmed/checked_in -> cancelled.
	ErrInvalidStatusChange = errors.New("invalid booking status transition")

	// ErrConcurrentModification signals an optimistic version conflict.
	ErrConcurrentModification = errors.New("record was modified concurrently")

	// ErrInvalidAward rejects non-positive experience awards.
	ErrInvalidAward = errors.New("award amount must be positive")

	// ErrOutOfStock is returned when all rental copies are out.
	ErrOutOfStock = errors.New("no rental copies available")

	// ErrInvalidPartySize rejects party sizes outside 1..max.
	ErrInvalidPartySize = errors.New("invalid party size")

	// ErrInvalidTimeSlot rejects unknown time slot labels.
	ErrInvalidTimeSlot = errors.New("invalid time slot")
)
