package memory

import (
	"sync"

	"curefront/internal/app/ports"
	"curefront/internal/domain/outbreak"
)

// Store backs the in-memory repositories used by tests and local runs.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]ports.SessionRecord
	events   map[string][]outbreak.Event
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]ports.SessionRecord),
		events:   make(map[string][]outbreak.Event),
	}
}

// SeedSession installs a session record directly, bypassing version
// checks. Test helper.
func (s *Store) SeedSession(record ports.SessionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[record.SessionID] = cloneRecord(record)
}

func cloneRecord(record ports.SessionRecord) ports.SessionRecord {
	out := record
	out.Provinces = append([]outbreak.ProvinceState(nil), record.Provinces...)
	if record.Outcome != nil {
		o := *record.Outcome
		out.Outcome = &o
	}
	return out
}
