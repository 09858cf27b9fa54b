package realtime

import "encoding/json"

// Phase is the lifecycle phase of the control connection.
type Phase int

const (
	Disconnected Phase = iota
	Connecting
	Connected
	Reconnecting
	Failed
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler.
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Phase) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	switch name {
	case "connecting":
		*p = Connecting
	case "connected":
		*p = Connected
	case "reconnecting":
		*p = Reconnecting
	case "failed":
		*p = Failed
	default:
		*p = Disconnected
	}
	return nil
}

// Live reports whether the phase has an open channel.
func (p Phase) Live() bool {
	return p == Connected
}
