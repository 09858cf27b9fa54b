package realtime

import (
	"github.com/tutorstack/tutorcore/pkg/jsontime"
)

// EventType identifies a connection lifecycle event.
type EventType int

const (
	// EventConnected fires when the channel opens, including reconnects.
	EventConnected EventType = iota

	// EventDisconnected fires on explicit teardown.
	EventDisconnected

	// EventReconnecting fires before each retry attempt.
	EventReconnecting

	// EventFailed fires once when the attempt ceiling is exceeded or a
	// fatal error occurs. No further retries follow.
	EventFailed

	// EventError fires for recoverable errors the manager is handling.
	EventError

	// EventMessage carries an inbound payload from the backend. Parsing is
	// the consumer's concern.
	EventMessage
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventReconnecting:
		return "reconnecting"
	case EventFailed:
		return "failed"
	case EventError:
		return "error"
	case EventMessage:
		return "message"
	default:
		return "unknown"
	}
}

// Event is a typed connection lifecycle event.
type Event struct {
	Type    EventType
	Phase   Phase
	Attempt int
	Data    []byte
	Err     error
	Time    jsontime.Milli
}
