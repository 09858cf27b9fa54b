package session

import "encoding/json"

// Status is the lifecycle status of a tutoring session.
type Status int

const (
	Idle Status = iota
	Connecting
	Active
	Paused
	Ended
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Active:
		return "active"
	case Paused:
		return "paused"
	case Ended:
		return "ended"
	default:
		return "idle"
	}
}

// MarshalJSON implements json.Marshaler.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Status) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	switch name {
	case "connecting":
		*s = Connecting
	case "active":
		*s = Active
	case "paused":
		*s = Paused
	case "ended":
		*s = Ended
	default:
		*s = Idle
	}
	return nil
}

// DefaultEligibleStatuses is the default set of statuses in which transcript
// ingestion is accepted. Connecting is included deliberately: fragments can
// arrive before the voice channel finishes its handshake, and rejecting them
// in that window loses the first seconds of every session.
var DefaultEligibleStatuses = []Status{Connecting, Active}
