package ports

import (
	"context"
	"time"

	"curefront/internal/domain/outbreak"
)

// SessionRecord is the persisted image of one simulation session: the
// province set, the aggregate cure state, the terminal outcome once
// decided, and the clock position the session had reached.
type SessionRecord struct {
	SessionID      string
	Provinces      []outbreak.ProvinceState
	Global         outbreak.GlobalState
	Outcome        *outbreak.Outcome
	DayIndex       int
	MinutesIntoDay float64
	Version        int64
	UpdatedAt      time.Time
}

type SessionRepository interface {
	Load(ctx context.Context, sessionID string) (SessionRecord, error)
	// SaveWithVersion persists the record when the stored version still
	// matches expectedVersion; expectedVersion 0 creates the session.
	// A mismatch returns ErrConflict.
	SaveWithVersion(ctx context.Context, record SessionRecord, expectedVersion int64) error
}

type EventRepository interface {
	Append(ctx context.Context, sessionID string, events []outbreak.Event) error
	// List returns newest-first, optionally capped at limit and filtered
	// by event type.
	List(ctx context.Context, sessionID string, eventType string, limit int) ([]outbreak.Event, error)
}

// RegionCatalog supplies the province set once at initialization.
type RegionCatalog interface {
	Regions(ctx context.Context) ([]outbreak.RegionInfo, error)
}

// EventPublisher fans engine notifications out to live observers.
type EventPublisher interface {
	Publish(events []outbreak.Event)
}
