package memory

import (
	"context"

	"curefront/internal/app/ports"
	"curefront/internal/domain/outbreak"
)

type EventRepo struct {
	store *Store
}

func NewEventRepo(store *Store) EventRepo {
	return EventRepo{store: store}
}

func (r EventRepo) Append(_ context.Context, sessionID string, events []outbreak.Event) error {
	r.store.events[sessionID] = append(r.store.events[sessionID], events...)
	return nil
}

func (r EventRepo) List(_ context.Context, sessionID string, eventType string, limit int) ([]outbreak.Event, error) {
	stored := r.store.events[sessionID]
	if len(stored) == 0 {
		return nil, ports.ErrNotFound
	}
	// Newest first.
	out := make([]outbreak.Event, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		if eventType != "" && stored[i].Type != eventType {
			continue
		}
		out = append(out, stored[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if len(out) == 0 {
		return nil, ports.ErrNotFound
	}
	return out, nil
}
