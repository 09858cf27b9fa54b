// Package archive persists completed tutoring sessions. Records are encoded
// with msgpack and keyed hierarchically by student then session, so listing
// one student's history is a prefix scan.
//
// The package includes a BadgerDB-backed implementation for production use
// and an in-memory implementation for testing. Archiving is fail-open at the
// call site: the orchestrator logs archive errors and ends the session
// regardless.
package archive

import (
	"context"
	"errors"

	"github.com/tutorstack/tutorcore/pkg/jsontime"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a session record does not exist.
	ErrNotFound = errors.New("archive: not found")
)

// ItemRecord is one transcript item in an archived session.
type ItemRecord struct {
	Seq        int64          `msgpack:"seq"`
	Kind       string         `msgpack:"kind"`
	Speaker    string         `msgpack:"speaker"`
	Content    string         `msgpack:"content"`
	Latex      string         `msgpack:"latex,omitempty"`
	Confidence float64        `msgpack:"confidence,omitempty"`
	Time       jsontime.Milli `msgpack:"time"`
}

// Record is one archived tutoring session.
type Record struct {
	SessionID string         `msgpack:"session_id"`
	StudentID string         `msgpack:"student_id"`
	Topic     string         `msgpack:"topic"`
	StartedAt jsontime.Milli `msgpack:"started_at"`
	EndedAt   jsontime.Milli `msgpack:"ended_at"`

	Messages  int64 `msgpack:"messages"`
	MathItems int64 `msgpack:"math_items"`
	Errors    int64 `msgpack:"errors"`

	Items []ItemRecord `msgpack:"items"`
}

// Store persists session records.
type Store interface {
	// SaveSession stores a record, overwriting any existing record with the
	// same student and session id.
	SaveSession(ctx context.Context, rec *Record) error

	// LoadSession retrieves one record. Returns ErrNotFound if not present.
	LoadSession(ctx context.Context, studentID, sessionID string) (*Record, error)

	// ListSessions returns all records for a student in key order.
	ListSessions(ctx context.Context, studentID string) ([]*Record, error)

	// Close releases any resources held by the store.
	Close() error
}
