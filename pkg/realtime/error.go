package realtime

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrNotConnected is returned by Send when the channel is not in the
	// connected phase. Send never queues; callers decide whether to buffer
	// or drop.
	ErrNotConnected = errors.New("realtime: not connected")

	// ErrFailed is returned when the connection has entered its terminal
	// failed state after exhausting reconnection attempts.
	ErrFailed = errors.New("realtime: connection failed permanently")
)

// Error is a connection error with vendor context.
type Error struct {
	// Code is the error code (e.g., "auth_failed", "dial_failed").
	Code string

	// Message is the human-readable error message.
	Message string

	// HTTPStatus is the HTTP status of the failed handshake, if any.
	HTTPStatus int

	// Fatal reports whether the error is not retried (credential errors).
	Fatal bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("realtime: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("realtime: %s", e.Message)
}

// IsFatal reports whether err is a non-retriable connection error.
func IsFatal(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Fatal
	}
	return false
}
