package session

import (
	"github.com/tutorstack/tutorcore/pkg/jsontime"
	"github.com/tutorstack/tutorcore/pkg/realtime"
)

// Snapshot is a read-only view of session metrics.
type Snapshot struct {
	SessionID string            `json:"session_id,omitempty"`
	Status    Status            `json:"status"`
	Messages  int64             `json:"messages"`
	MathItems int64             `json:"math_items"`
	Errors    int64             `json:"errors"`
	ErrorRate float64           `json:"error_rate"`
	Duration  jsontime.Duration `json:"duration"`
}

// Verdict is the overall health verdict.
type Verdict string

const (
	Healthy   Verdict = "healthy"
	Degraded  Verdict = "degraded"
	Unhealthy Verdict = "unhealthy"
)

// Voice channel health states.
const (
	VoiceOK       = "ok"
	VoiceDown     = "down"
	VoiceDisabled = "disabled"
)

// Report aggregates subsystem health. It is informational: degraded
// subsystems are reported here, never escalated to errors.
type Report struct {
	Overall Verdict        `json:"overall"`
	Status  Status         `json:"status"`
	Conn    realtime.Phase `json:"conn"`
	Board   bool           `json:"board"`
	Voice   string         `json:"voice"`
}
