package sim

import (
	"context"
	"errors"
	"sync"
	"time"

	"curefront/internal/app/ports"
	"curefront/internal/domain/outbreak"
	"curefront/internal/domain/world"
)

// Coordinator owns the single engine instance for the process. The engine
// itself is not goroutine-safe; every entry point here serializes on one
// mutex, which gives callers the single-writer model the simulation
// assumes. Notification handlers never run while the lock is held.
type Coordinator struct {
	TxManager ports.TxManager
	Sessions  ports.SessionRepository
	Events    ports.EventRepository
	Catalog   ports.RegionCatalog
	Metrics   ports.SimMetrics
	Publisher ports.EventPublisher
	Engine    *outbreak.Engine
	SessionID string
	Now       func() time.Time

	mu      sync.Mutex
	last    *world.Reading
	version int64
}

// Bootstrap restores a persisted session if one exists, otherwise seeds a
// fresh one from the region catalog and persists it.
func (c *Coordinator) Bootstrap(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	record, err := c.Sessions.Load(ctx, c.SessionID)
	switch {
	case err == nil:
		if restoreErr := c.Engine.Restore(record.Provinces, record.Global, record.Outcome, record.DayIndex); restoreErr != nil {
			return restoreErr
		}
		c.version = record.Version
		reading := world.Reading{DayIndex: record.DayIndex, MinutesIntoDay: record.MinutesIntoDay}
		c.last = &reading
		return nil
	case errors.Is(err, ports.ErrNotFound):
		_, err := c.initializeLocked(ctx)
		return err
	default:
		return err
	}
}

// Reset discards the running session and reseeds from the catalog.
func (c *Coordinator) Reset(ctx context.Context) ([]outbreak.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initializeLocked(ctx)
}

func (c *Coordinator) initializeLocked(ctx context.Context) ([]outbreak.Event, error) {
	regions, err := c.Catalog.Regions(ctx)
	if err != nil {
		return nil, err
	}
	events, err := c.Engine.Initialize(regions)
	if err != nil {
		return nil, err
	}
	c.last = nil
	if err := c.persistLocked(ctx, events); err != nil {
		c.recordFailure()
		return nil, err
	}
	c.publish(events)
	return events, nil
}

// Tick advances the engine by the simulated minutes elapsed since the
// previous clock reading. The first reading after bootstrap establishes
// the baseline and advances nothing.
func (c *Coordinator) Tick(ctx context.Context, reading world.Reading) ([]outbreak.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delta := 0.0
	if c.last != nil {
		delta = world.DeltaMinutes(*c.last, reading)
	}
	c.last = &reading

	events, err := c.Engine.Advance(delta, reading.DayIndex)
	if err != nil {
		c.recordFailure()
		return nil, err
	}
	if len(events) > 0 {
		if err := c.persistLocked(ctx, events); err != nil {
			c.recordFailure()
			return nil, err
		}
	}
	if c.Metrics != nil {
		c.Metrics.RecordTick(len(events))
	}
	c.publish(events)
	return events, nil
}

// QuoteOutpost reports whether a build would succeed and at what price.
func (c *Coordinator) QuoteOutpost(regionID string) (outbreak.BuildQuote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Engine.CanBuildOutpost(regionID)
}

// BuildOutpost attempts a build, persists the result, and publishes the
// notifications it produced.
func (c *Coordinator) BuildOutpost(ctx context.Context, regionID string) (outbreak.BuildReceipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	receipt, events, err := c.Engine.TryBuildOutpost(regionID)
	if err != nil {
		if c.Metrics != nil {
			c.Metrics.RecordBuildRejected(RefusalCode(err))
		}
		return outbreak.BuildReceipt{}, err
	}
	if err := c.persistLocked(ctx, events); err != nil {
		c.recordFailure()
		return outbreak.BuildReceipt{}, err
	}
	if c.Metrics != nil {
		c.Metrics.RecordBuildSuccess()
	}
	c.publish(events)
	return receipt, nil
}

func (c *Coordinator) persistLocked(ctx context.Context, events []outbreak.Event) error {
	reading := world.Reading{DayIndex: c.Engine.CurrentDay()}
	if c.last != nil {
		reading = *c.last
	}
	record := ports.SessionRecord{
		SessionID:      c.SessionID,
		Provinces:      c.Engine.Provinces(),
		Global:         c.Engine.Global(),
		DayIndex:       reading.DayIndex,
		MinutesIntoDay: reading.MinutesIntoDay,
		Version:        c.version + 1,
		UpdatedAt:      c.now(),
	}
	if outcome, ok := c.Engine.LatestOutcome(); ok {
		record.Outcome = &outcome
	}

	err := c.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := c.Sessions.SaveWithVersion(txCtx, record, c.version); err != nil {
			return err
		}
		return c.Events.Append(txCtx, c.SessionID, events)
	})
	if err != nil {
		return err
	}
	c.version = record.Version
	return nil
}

func (c *Coordinator) publish(events []outbreak.Event) {
	if c.Publisher == nil || len(events) == 0 {
		return
	}
	c.Publisher.Publish(events)
}

func (c *Coordinator) recordFailure() {
	if c.Metrics != nil {
		c.Metrics.RecordFailure()
	}
}

func (c *Coordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Provinces returns snapshots in catalog order.
func (c *Coordinator) Provinces() []outbreak.ProvinceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Engine.Provinces()
}

func (c *Coordinator) Province(regionID string) (outbreak.ProvinceState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Engine.Province(regionID)
}

func (c *Coordinator) Global() outbreak.GlobalState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Engine.Global()
}

func (c *Coordinator) Outcome() (outbreak.Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Engine.LatestOutcome()
}

func (c *Coordinator) CurrentDay() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Engine.CurrentDay()
}

// RefusalCode maps engine build refusals to stable metric/API codes.
func RefusalCode(err error) string {
	switch {
	case errors.Is(err, outbreak.ErrUnknownRegion):
		return "invalid_region"
	case errors.Is(err, outbreak.ErrProvinceFullyInfected):
		return "province_fully_infected"
	case errors.Is(err, outbreak.ErrNotEnoughZar):
		return "not_enough_zar"
	case errors.Is(err, outbreak.ErrNotInitialized):
		return "not_initialized"
	default:
		return "error"
	}
}
