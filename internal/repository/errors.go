package repository

import "errors"

// Store-layer sentinels surfaced to services so business errors can be
// distinguished from infrastructure failures.
var (
	// ErrDuplicateAssignment maps the unique (event_id, user_id) index
	// violation raised when two applications race.
	ErrDuplicateAssignment = errors.New("assignment already exists for event and user")

	// ErrEventAlreadyPaid is returned by the payment batch insert when
	// the in-transaction guard finds existing payments for the event.
	ErrEventAlreadyPaid = errors.New("event already has processed payments")
)
