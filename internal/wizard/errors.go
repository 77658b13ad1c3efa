package wizard

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when an operation is not valid from the current step.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrAttemptInFlight rejects a draw while another is processing. Callers absorb it.
	ErrAttemptInFlight = errors.New("draw attempt already in flight")

	// ErrStaleCompletion marks an async result whose session or request was superseded.
	ErrStaleCompletion = errors.New("stale completion")

	// ErrGateNotPending is returned by confirm or cancel when the gate is not open.
	ErrGateNotPending = errors.New("gate is not pending")

	// ErrTicketConsumed is returned when a reveal ticket is presented twice.
	ErrTicketConsumed = errors.New("reveal ticket already consumed")

	// ErrUnknownTicket is returned for a reveal ticket the gate did not issue.
	ErrUnknownTicket = errors.New("reveal ticket not issued by gate")
)

// MsgIdentityRequired is shown inline when the identity field is blank.
const MsgIdentityRequired = "Please enter your full name."

// ValidationError reports invalid user input. The transition it guarded is blocked.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// invalidTransition wraps ErrInvalidTransition with the attempted operation.
func invalidTransition(op string, from Step) error {
	return fmt.Errorf("%s from %s: %w", op, from, ErrInvalidTransition)
}
