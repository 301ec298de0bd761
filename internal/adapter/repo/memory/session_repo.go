package memory

import (
	"context"

	"curefront/internal/app/ports"
)

type SessionRepo struct {
	store *Store
}

func NewSessionRepo(store *Store) SessionRepo {
	return SessionRepo{store: store}
}

func (r SessionRepo) Load(_ context.Context, sessionID string) (ports.SessionRecord, error) {
	record, ok := r.store.sessions[sessionID]
	if !ok {
		return ports.SessionRecord{}, ports.ErrNotFound
	}
	return cloneRecord(record), nil
}

func (r SessionRepo) SaveWithVersion(_ context.Context, record ports.SessionRecord, expectedVersion int64) error {
	current, ok := r.store.sessions[record.SessionID]
	if !ok {
		if expectedVersion != 0 {
			return ports.ErrConflict
		}
		r.store.sessions[record.SessionID] = cloneRecord(record)
		return nil
	}
	if current.Version != expectedVersion {
		return ports.ErrConflict
	}
	r.store.sessions[record.SessionID] = cloneRecord(record)
	return nil
}
