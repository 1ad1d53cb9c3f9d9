package domain

import (
	"errors"
	"fmt"
)

// Error classes. Concrete errors wrap one of these and are classified with errors.Is.
var (
	// ErrValidation is user-correctable input; it is answered inline and never mutates state.
	ErrValidation = errors.New("validation error")
	// ErrTransport is a failed reply or push call.
	ErrTransport = errors.New("transport error")
	// ErrProtocol is a malformed inbound event; only that event is skipped.
	ErrProtocol = errors.New("protocol error")
)

var (
	ErrInvalidTime = fmt.Errorf("%w: expected HH:MM", ErrValidation)
	ErrNoUser      = fmt.Errorf("%w: event has no user id", ErrProtocol)
	ErrNoReplyTo   = fmt.Errorf("%w: event has no reply token", ErrProtocol)
)

// Transport wraps err as a transport error. Returns nil for nil.
func Transport(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrTransport, op, err)
}
