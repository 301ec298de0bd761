package outbreak

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"time"
)

var (
	ErrEmptyCatalog          = errors.New("empty region catalog")
	ErrNotInitialized        = errors.New("simulation not initialized")
	ErrUnknownRegion         = errors.New("unknown region")
	ErrProvinceFullyInfected = errors.New("province fully infected")
	ErrNotEnoughZar          = errors.New("not enough zar")
)

// Engine owns all province and global simulation state. It is not safe
// for concurrent use; callers serialize access (see app/sim.Coordinator).
// Every mutating operation returns the notifications it produced, in
// emission order.
type Engine struct {
	tuning Tuning
	rng    *rand.Rand
	now    func() time.Time

	provinces map[string]*ProvinceState
	order     []string
	hubs      map[string]struct{}

	global      GlobalState
	outcome     *Outcome
	lastDay     int
	initialized bool

	allInfectedFired   bool
	cureCompletedFired bool
}

// NewEngine builds an engine from normalized tuning. A nil rng falls back
// to a time-seeded source; tests inject a fixed seed for determinism.
func NewEngine(t Tuning, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	t = t.Normalized()
	hubs := make(map[string]struct{}, len(t.UrbanHubs))
	for _, id := range t.UrbanHubs {
		hubs[normalizeRegionID(id)] = struct{}{}
	}
	return &Engine{
		tuning: t,
		rng:    rng,
		now:    time.Now,
		hubs:   hubs,
	}
}

// SetNow overrides the event timestamp source. Test hook.
func (e *Engine) SetNow(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

func normalizeRegionID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Initialize seeds per-province infection from the configured range and
// resets all global state. An empty catalog is reported, not applied: the
// engine keeps whatever state it had.
func (e *Engine) Initialize(regions []RegionInfo) ([]Event, error) {
	if len(regions) == 0 {
		return nil, ErrEmptyCatalog
	}

	e.provinces = make(map[string]*ProvinceState, len(regions))
	e.order = e.order[:0]
	spread := e.tuning.InitialInfection.Max - e.tuning.InitialInfection.Min

	at := e.now()
	events := make([]Event, 0, len(regions)+1)
	for _, r := range regions {
		key := normalizeRegionID(r.ID)
		if key == "" {
			continue
		}
		if _, dup := e.provinces[key]; dup {
			continue
		}
		seed := e.tuning.InitialInfection.Min
		if spread > 0 {
			seed += e.rng.Float64() * spread
		}
		p := &ProvinceState{
			RegionID:       r.ID,
			DisplayName:    r.DisplayName,
			InfectionLevel: clamp01(seed),
		}
		p.FullyInfected = p.InfectionLevel >= e.tuning.Virus.FullyInfectedThreshold
		e.provinces[key] = p
		e.order = append(e.order, key)
		events = append(events, provinceEvent(*p, at))
	}
	if len(e.order) == 0 {
		e.provinces = nil
		return nil, ErrEmptyCatalog
	}

	e.global = GlobalState{BudgetZar: e.tuning.StartingBudgetZar}
	e.outcome = nil
	e.lastDay = 1
	e.allInfectedFired = false
	e.cureCompletedFired = false
	e.initialized = true

	events = append(events, globalEvent(e.global, at))
	return events, nil
}

// Restore rehydrates a persisted session so a restarted process resumes
// where it left off. The caller is responsible for handing back state the
// engine itself produced.
func (e *Engine) Restore(provinces []ProvinceState, global GlobalState, outcome *Outcome, dayIndex int) error {
	if len(provinces) == 0 {
		return ErrEmptyCatalog
	}
	e.provinces = make(map[string]*ProvinceState, len(provinces))
	e.order = e.order[:0]
	for i := range provinces {
		p := provinces[i]
		key := normalizeRegionID(p.RegionID)
		if key == "" {
			continue
		}
		p.InfectionLevel = clamp01(p.InfectionLevel)
		e.provinces[key] = &p
		e.order = append(e.order, key)
	}
	if len(e.order) == 0 {
		e.provinces = nil
		return ErrEmptyCatalog
	}
	e.global = global
	if outcome != nil {
		o := *outcome
		e.outcome = &o
	} else {
		e.outcome = nil
	}
	if dayIndex < 1 {
		dayIndex = 1
	}
	e.lastDay = dayIndex
	e.allInfectedFired = e.allFullyInfected()
	e.cureCompletedFired = global.CureProgress >= e.tuning.CureCompletionThreshold
	e.initialized = true
	return nil
}

// Advance integrates infection growth and local curing over the elapsed
// simulated minutes, then recomputes global cure progress and evaluates
// the session outcome. Negative elapsed time clamps to zero; a zero tick
// is a no-op beyond recording the day index for later builds.
func (e *Engine) Advance(elapsedMinutes float64, dayIndex int) ([]Event, error) {
	if !e.initialized {
		return nil, ErrNotInitialized
	}
	if dayIndex < 1 {
		dayIndex = 1
	}
	e.lastDay = dayIndex

	if elapsedMinutes < 0 || math.IsNaN(elapsedMinutes) {
		elapsedMinutes = 0
	}
	if elapsedMinutes == 0 {
		return nil, nil
	}
	hours := elapsedMinutes / 60

	// Community transmission escalates with each passing day; day 1 has
	// no amplification.
	strength := 1 + float64(dayIndex-1)*e.tuning.Virus.DailyGrowthRate
	growth := e.tuning.Virus.BaseInfectionPerHour * strength * hours

	at := e.now()
	var events []Event
	for _, key := range e.order {
		p := e.provinces[key]
		before := *p

		localCure := 0.0
		if p.OutpostCount > 0 && !p.OutpostsDisabled {
			localCure = e.tuning.Outposts.LocalCurePerHour * float64(p.OutpostCount) * hours
		}
		// Net effect only: the intermediate value may leave [0,1], the
		// final level never does.
		p.InfectionLevel = clamp01(p.InfectionLevel + growth - localCure)

		e.refreshProvinceFlags(p)

		if *p != before {
			events = append(events, provinceEvent(*p, at))
		}
	}

	events = append(events, e.recomputeGlobal(hours, at)...)
	events = append(events, e.evaluateOutcome(dayIndex, at)...)

	if !e.allInfectedFired && e.allFullyInfected() {
		e.allInfectedFired = true
		events = append(events, Event{
			Type:       EventAllProvincesInfected,
			OccurredAt: at,
			Payload:    map[string]any{"provinces": len(e.order)},
		})
	}
	return events, nil
}

// refreshProvinceFlags applies the single-threshold disable rule and the
// sticky fully-infected flag against the province's current infection.
func (e *Engine) refreshProvinceFlags(p *ProvinceState) {
	p.OutpostsDisabled = p.OutpostCount > 0 && p.InfectionLevel >= e.tuning.Virus.OutpostDisableThreshold
	if p.InfectionLevel >= e.tuning.Virus.FullyInfectedThreshold {
		p.FullyInfected = true
	}
}

// recomputeGlobal walks active outposts in deployment order, assigning
// each a diminishing-return multiplier (urban hubs scaled up), and
// advances cure progress when time actually passed. Outpost counts
// refresh on every walk, including zero-hour ones after a build.
func (e *Engine) recomputeGlobal(hours float64, at time.Time) []Event {
	total, active := 0, 0
	factor := 0.0
	idx := 0
	for _, key := range e.order {
		p := e.provinces[key]
		total += p.OutpostCount
		if p.OutpostCount == 0 || p.OutpostsDisabled {
			continue
		}
		active += p.OutpostCount
		_, hub := e.hubs[key]
		for i := 0; i < p.OutpostCount; i++ {
			m := math.Pow(e.tuning.Outposts.DiminishingFactor, float64(idx))
			if hub {
				m *= e.tuning.UrbanHubBonus
			}
			factor += m
			idx++
		}
	}
	e.global.TotalOutposts = total
	e.global.ActiveOutposts = active

	if hours > 0 && factor > 0 && e.tuning.Outposts.GlobalCurePerHour > 0 {
		e.global.CureProgress = clamp01(e.global.CureProgress + e.tuning.Outposts.GlobalCurePerHour*factor*hours)
	}

	events := []Event{globalEvent(e.global, at)}
	if !e.cureCompletedFired && e.global.CureProgress >= e.tuning.CureCompletionThreshold {
		e.cureCompletedFired = true
		events = append(events, Event{
			Type:       EventCureCompleted,
			OccurredAt: at,
			Payload:    map[string]any{"cure_progress": e.global.CureProgress},
		})
	}
	return events
}

func (e *Engine) evaluateOutcome(dayIndex int, at time.Time) []Event {
	if e.outcome != nil {
		return nil
	}
	var kind OutcomeKind
	switch {
	case e.global.CureProgress >= e.tuning.CureCompletionThreshold:
		kind = OutcomeVictory
	case e.allFullyInfected():
		kind = OutcomeDefeat
	default:
		return nil
	}
	infected := 0
	for _, key := range e.order {
		if e.provinces[key].FullyInfected {
			infected++
		}
	}
	e.outcome = &Outcome{
		Kind:                   kind,
		DayIndex:               dayIndex,
		ProvincesSaved:         len(e.order) - infected,
		FullyInfectedProvinces: infected,
		Global:                 e.global,
		DecidedAt:              at,
	}
	return []Event{outcomeEvent(*e.outcome)}
}

func (e *Engine) allFullyInfected() bool {
	if len(e.order) == 0 {
		return false
	}
	for _, key := range e.order {
		if !e.provinces[key].FullyInfected {
			return false
		}
	}
	return true
}

// CanBuildOutpost validates a build without mutating state and reports
// the price that would be charged. The cost rises with every outpost
// built anywhere in the country, not just locally.
func (e *Engine) CanBuildOutpost(regionID string) (BuildQuote, error) {
	if !e.initialized {
		return BuildQuote{}, ErrNotInitialized
	}
	p, ok := e.provinces[normalizeRegionID(regionID)]
	if !ok {
		return BuildQuote{}, ErrUnknownRegion
	}
	if p.FullyInfected {
		return BuildQuote{}, ErrProvinceFullyInfected
	}
	cost := e.tuning.Costs.BaseZar + e.tuning.Costs.PerExistingOutpostZar*e.global.TotalOutposts
	if e.global.BudgetZar < cost {
		return BuildQuote{}, ErrNotEnoughZar
	}
	return BuildQuote{RegionID: p.RegionID, CostZar: cost}, nil
}

// TryBuildOutpost charges the budget, deploys an outpost, and refreshes
// the global cure state without advancing progress. The outcome check
// uses the day index of the most recent Advance; building never moves
// the calendar.
func (e *Engine) TryBuildOutpost(regionID string) (BuildReceipt, []Event, error) {
	quote, err := e.CanBuildOutpost(regionID)
	if err != nil {
		return BuildReceipt{}, nil, err
	}
	p := e.provinces[normalizeRegionID(regionID)]

	e.global.BudgetZar -= quote.CostZar
	p.OutpostCount++
	e.refreshProvinceFlags(p)

	at := e.now()
	events := []Event{provinceEvent(*p, at)}
	events = append(events, e.recomputeGlobal(0, at)...)
	events = append(events, e.evaluateOutcome(e.lastDay, at)...)

	return BuildReceipt{
		RegionID:     p.RegionID,
		CostZar:      quote.CostZar,
		OutpostCount: p.OutpostCount,
		BudgetZar:    e.global.BudgetZar,
	}, events, nil
}

// Province returns a snapshot of one province. Region lookup is
// case-insensitive.
func (e *Engine) Province(regionID string) (ProvinceState, bool) {
	p, ok := e.provinces[normalizeRegionID(regionID)]
	if !ok {
		return ProvinceState{}, false
	}
	return *p, true
}

// Provinces returns snapshots in catalog order.
func (e *Engine) Provinces() []ProvinceState {
	out := make([]ProvinceState, 0, len(e.order))
	for _, key := range e.order {
		out = append(out, *e.provinces[key])
	}
	return out
}

func (e *Engine) Global() GlobalState {
	return e.global
}

// LatestOutcome reports the terminal result, if the session has one.
func (e *Engine) LatestOutcome() (Outcome, bool) {
	if e.outcome == nil {
		return Outcome{}, false
	}
	return *e.outcome, true
}

func (e *Engine) Initialized() bool {
	return e.initialized
}

// CurrentDay is the day index of the most recent Advance (1 before any).
func (e *Engine) CurrentDay() int {
	if e.lastDay < 1 {
		return 1
	}
	return e.lastDay
}
