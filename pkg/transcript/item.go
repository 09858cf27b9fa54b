// Package transcript provides the ordered, bounded display buffer for
// tutoring session content, with real-time fan-out to subscribers.
package transcript

import (
	"encoding/json"

	"github.com/tutorstack/tutorcore/pkg/jsontime"
	"github.com/tutorstack/tutorcore/pkg/mathtex"
)

// Kind is the content kind of a transcript item.
type Kind int

const (
	KindText Kind = iota
	KindMath
	KindSystem
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMath:
		return "math"
	case KindSystem:
		return "system"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (k *Kind) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	switch name {
	case "text":
		*k = KindText
	case "math":
		*k = KindMath
	case "system":
		*k = KindSystem
	default:
		*k = KindText
	}
	return nil
}

// Speaker roles.
const (
	SpeakerStudent = "student"
	SpeakerTutor   = "tutor"
	SpeakerSystem  = "system"
)

// Item is one immutable unit of conversational content. The board assigns
// ID, Seq and Time on Add; items are never mutated afterwards.
type Item struct {
	// ID is the board-assigned identifier.
	ID string `json:"id"`

	// Seq is the strictly increasing sequence position. Positions are never
	// reused, even across eviction, so consumers can detect gaps.
	Seq int64 `json:"seq"`

	// Kind tags the content union: plain text, math, or a system marker.
	Kind Kind `json:"kind"`

	// Content is the raw content: plain text, or LaTeX markup for math.
	Content string `json:"content"`

	// Rendered is the cached display form. Set only for KindMath.
	Rendered *mathtex.Rendered `json:"rendered,omitempty"`

	// Speaker is who produced the content.
	Speaker string `json:"speaker"`

	// Confidence is the speech-recognition confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// Time is when the board accepted the item.
	Time jsontime.Milli `json:"time"`
}
