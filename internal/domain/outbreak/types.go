package outbreak

import "time"

// RegionInfo identifies one governed province as supplied by the region
// catalog at initialization.
type RegionInfo struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
}

// ProvinceState tracks infection and outpost deployment for one province.
// InfectionLevel stays within [0,1]; OutpostsDisabled is only ever true
// while OutpostCount > 0; FullyInfected never reverts within a session.
type ProvinceState struct {
	RegionID         string  `json:"region_id"`
	DisplayName      string  `json:"display_name"`
	InfectionLevel   float64 `json:"infection_level"`
	OutpostCount     int     `json:"outpost_count"`
	OutpostsDisabled bool    `json:"outposts_disabled"`
	FullyInfected    bool    `json:"fully_infected"`
}

// GlobalState aggregates cure research and the national budget.
type GlobalState struct {
	CureProgress   float64 `json:"cure_progress"`
	TotalOutposts  int     `json:"total_outposts"`
	ActiveOutposts int     `json:"active_outposts"`
	BudgetZar      int     `json:"budget_zar"`
}

type OutcomeKind string

const (
	OutcomeVictory OutcomeKind = "victory"
	OutcomeDefeat  OutcomeKind = "defeat"
)

// Outcome is the terminal session result. It is captured at most once per
// session and never mutated afterwards.
type Outcome struct {
	Kind                   OutcomeKind `json:"kind"`
	DayIndex               int         `json:"day_index"`
	ProvincesSaved         int         `json:"provinces_saved"`
	FullyInfectedProvinces int         `json:"fully_infected_provinces"`
	Global                 GlobalState `json:"global"`
	DecidedAt              time.Time   `json:"decided_at"`
}

// BuildQuote reports the price a build attempt would be charged.
type BuildQuote struct {
	RegionID string `json:"region_id"`
	CostZar  int    `json:"cost_zar"`
}

// BuildReceipt describes a completed outpost build.
type BuildReceipt struct {
	RegionID     string `json:"region_id"`
	CostZar      int    `json:"cost_zar"`
	OutpostCount int    `json:"outpost_count"`
	BudgetZar    int    `json:"budget_zar"`
}

const (
	EventProvinceChanged      = "province_changed"
	EventGlobalChanged        = "global_changed"
	EventAllProvincesInfected = "all_provinces_infected"
	EventCureCompleted        = "cure_completed"
	EventOutcome              = "outcome"
)

// Event is a state-change notification emitted by the engine. Payload
// carries a read-only snapshot of whatever changed.
type Event struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

func provinceEvent(p ProvinceState, at time.Time) Event {
	return Event{
		Type:       EventProvinceChanged,
		OccurredAt: at,
		Payload: map[string]any{
			"region_id":         p.RegionID,
			"infection_level":   p.InfectionLevel,
			"outpost_count":     p.OutpostCount,
			"outposts_disabled": p.OutpostsDisabled,
			"fully_infected":    p.FullyInfected,
		},
	}
}

func globalEvent(g GlobalState, at time.Time) Event {
	return Event{
		Type:       EventGlobalChanged,
		OccurredAt: at,
		Payload: map[string]any{
			"cure_progress":   g.CureProgress,
			"total_outposts":  g.TotalOutposts,
			"active_outposts": g.ActiveOutposts,
			"budget_zar":      g.BudgetZar,
		},
	}
}

func outcomeEvent(o Outcome) Event {
	return Event{
		Type:       EventOutcome,
		OccurredAt: o.DecidedAt,
		Payload: map[string]any{
			"kind":                     string(o.Kind),
			"day_index":                o.DayIndex,
			"provinces_saved":          o.ProvincesSaved,
			"fully_infected_provinces": o.FullyInfectedProvinces,
			"cure_progress":            o.Global.CureProgress,
			"budget_zar":               o.Global.BudgetZar,
		},
	}
}
