package session

import "errors"

// Sentinel errors. All of them count toward the session error-rate metric
// when returned from an orchestrator method.
var (
	// ErrSessionActive is returned by Start while a session is running.
	ErrSessionActive = errors.New("session: a session is already active")

	// ErrNotFound is returned by End when the id does not match the
	// current session.
	ErrNotFound = errors.New("session: session not found")

	// ErrNotIngesting is returned by AddItem when the session status is
	// outside the ingestion-eligible set (including Paused and Ended).
	ErrNotIngesting = errors.New("session: not accepting transcript items")

	// ErrNotActive is returned by Pause and Resume on an invalid toggle.
	ErrNotActive = errors.New("session: session not in a toggleable state")
)
