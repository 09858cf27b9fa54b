package session

// Feature toggle names consulted at session start.
const (
	// FlagVoice enables the realtime voice channel.
	FlagVoice = "voice_enabled"

	// FlagIngest enables transcript ingestion from connection events.
	FlagIngest = "transcript_ingest"
)

// FlagSource is a read-only feature-toggle lookup. Absent flags read as
// false; implementations must never panic.
type FlagSource interface {
	IsEnabled(name string) bool
}

// FlagMap is a static FlagSource. A nil FlagMap reads every flag as false.
type FlagMap map[string]bool

// IsEnabled implements FlagSource.
func (m FlagMap) IsEnabled(name string) bool {
	if m == nil {
		return false
	}
	return m[name]
}
