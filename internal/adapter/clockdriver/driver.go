package clockdriver

import (
	"context"
	"log"
	"time"

	"curefront/internal/domain/world"
)

// Driver periodically samples the simulated clock and hands the reading
// to the coordinator. It is the only scheduler in the process; the
// engine never advances on its own.
type Driver struct {
	Clock    world.Clock
	Interval time.Duration
	Now      func() time.Time
	Tick     func(ctx context.Context, reading world.Reading) error
}

// Run blocks until ctx is cancelled. Tick errors are logged and the loop
// keeps going; a stuck tick source should not kill the server.
func (d Driver) Run(ctx context.Context) {
	interval := d.Interval
	if interval <= 0 {
		interval = time.Second
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reading := d.Clock.ReadingAt(now())
			if err := d.Tick(ctx, reading); err != nil {
				log.Printf("clockdriver: tick day=%d: %v", reading.DayIndex, err)
			}
		}
	}
}
