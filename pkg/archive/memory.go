package archive

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Memory is an in-memory Store for tests and for running without a data
// directory. Values are round-tripped through msgpack so encoding behavior
// matches the badger store.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) SaveSession(_ context.Context, rec *Record) error {
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[string(sessionKey(rec.StudentID, rec.SessionID))] = data
	return nil
}

func (m *Memory) LoadSession(_ context.Context, studentID, sessionID string) (*Record, error) {
	m.mu.RLock()
	data, ok := m.data[string(sessionKey(studentID, sessionID))]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *Memory) ListSessions(_ context.Context, studentID string) ([]*Record, error) {
	prefix := string(studentPrefix(studentID))

	m.mu.RLock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	m.mu.RUnlock()
	sort.Strings(keys)

	recs := make([]*Record, 0, len(keys))
	for _, k := range keys {
		m.mu.RLock()
		data := m.data[k]
		m.mu.RUnlock()
		var rec Record
		if err := msgpack.Unmarshal(data, &rec); err != nil {
			return nil, err
		}
		recs = append(recs, &rec)
	}
	return recs, nil
}

func (m *Memory) Close() error {
	return nil
}

var _ Store = (*Memory)(nil)
