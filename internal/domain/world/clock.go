package world

import (
	"math"
	"time"
)

// MinutesPerDay is the length of one simulated day in simulated minutes.
const MinutesPerDay = 24 * 60

// Reading is a single observation of the simulated clock: which day the
// simulation is on (1-based) and how far into that day it has advanced.
type Reading struct {
	DayIndex       int
	MinutesIntoDay float64
}

type ClockConfig struct {
	StartAt time.Time
	// DayLength is the real-time duration of one simulated day.
	DayLength time.Duration
}

type Clock struct {
	cfg ClockConfig
}

func NewClock(cfg ClockConfig) Clock {
	if cfg.DayLength <= 0 {
		cfg.DayLength = 10 * time.Minute
	}
	if cfg.StartAt.IsZero() {
		cfg.StartAt = time.Unix(0, 0)
	}
	return Clock{cfg: cfg}
}

func DefaultClock() Clock {
	return NewClock(ClockConfig{})
}

// ReadingAt maps wall time onto the simulated calendar. Times before the
// clock's start collapse to the first instant of day 1.
func (c Clock) ReadingAt(now time.Time) Reading {
	elapsed := now.Sub(c.cfg.StartAt)
	if elapsed < 0 {
		elapsed = 0
	}
	day := int(elapsed/c.cfg.DayLength) + 1
	offset := elapsed % c.cfg.DayLength
	frac := float64(offset) / float64(c.cfg.DayLength)
	return Reading{
		DayIndex:       day,
		MinutesIntoDay: frac * MinutesPerDay,
	}
}

// DeltaMinutes returns the simulated minutes elapsed between two readings,
// accounting for day rollover. Non-monotonic readings yield zero rather
// than a negative delta.
func DeltaMinutes(prev, cur Reading) float64 {
	d := float64(cur.DayIndex-prev.DayIndex)*MinutesPerDay + (cur.MinutesIntoDay - prev.MinutesIntoDay)
	if d < 0 || math.IsNaN(d) {
		return 0
	}
	return d
}
