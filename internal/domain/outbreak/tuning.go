package outbreak

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning is the immutable rate/cost configuration supplied to the engine
// at construction. Values are per simulated hour unless noted.
type Tuning struct {
	Virus    VirusTuning   `yaml:"virus"`
	Outposts OutpostTuning `yaml:"outposts"`
	Costs    CostTuning    `yaml:"costs"`

	InitialInfection  SeedRange `yaml:"initial_infection"`
	StartingBudgetZar int       `yaml:"starting_budget_zar"`

	UrbanHubs     []string `yaml:"urban_hubs"`
	UrbanHubBonus float64  `yaml:"urban_hub_bonus"`

	// CureCompletionThreshold is deliberately just short of 1 so that
	// floating-point accumulation cannot strand progress at 0.999999.
	CureCompletionThreshold float64 `yaml:"cure_completion_threshold"`
}

type VirusTuning struct {
	BaseInfectionPerHour    float64 `yaml:"base_infection_per_hour"`
	DailyGrowthRate         float64 `yaml:"daily_growth_rate"`
	OutpostDisableThreshold float64 `yaml:"outpost_disable_threshold"`
	FullyInfectedThreshold  float64 `yaml:"fully_infected_threshold"`
}

type OutpostTuning struct {
	LocalCurePerHour  float64 `yaml:"local_cure_per_hour"`
	GlobalCurePerHour float64 `yaml:"global_cure_per_hour"`
	DiminishingFactor float64 `yaml:"diminishing_factor"`
	// TargetWinDays is descriptive balancing guidance; the engine does
	// not enforce it.
	TargetWinDays int `yaml:"target_win_days"`
}

type CostTuning struct {
	BaseZar               int `yaml:"base_zar"`
	PerExistingOutpostZar int `yaml:"per_existing_outpost_zar"`
}

type SeedRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func DefaultTuning() Tuning {
	return Tuning{
		Virus: VirusTuning{
			BaseInfectionPerHour:    0.02,
			DailyGrowthRate:         0.15,
			OutpostDisableThreshold: 0.8,
			FullyInfectedThreshold:  1.0,
		},
		Outposts: OutpostTuning{
			LocalCurePerHour:  0.035,
			GlobalCurePerHour: 0.004,
			DiminishingFactor: 0.9,
			TargetWinDays:     30,
		},
		Costs: CostTuning{
			BaseZar:               20,
			PerExistingOutpostZar: 8,
		},
		InitialInfection:        SeedRange{Min: 0.05, Max: 0.15},
		StartingBudgetZar:       100,
		UrbanHubs:               []string{"gauteng", "western-cape", "kwazulu-natal"},
		UrbanHubBonus:           1.25,
		CureCompletionThreshold: 0.999,
	}
}

// LoadTuning reads a YAML tuning file over the defaults, so partial files
// only override what they name.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	return t.Normalized(), nil
}

// Normalized clamps degenerate values instead of rejecting them: negative
// rates become zero, inverted seed ranges swap, and thresholds fall back
// to defaults when out of (0,1].
func (t Tuning) Normalized() Tuning {
	def := DefaultTuning()

	t.Virus.BaseInfectionPerHour = nonNegative(t.Virus.BaseInfectionPerHour)
	t.Virus.DailyGrowthRate = nonNegative(t.Virus.DailyGrowthRate)
	if t.Virus.OutpostDisableThreshold <= 0 || t.Virus.OutpostDisableThreshold > 1 {
		t.Virus.OutpostDisableThreshold = def.Virus.OutpostDisableThreshold
	}
	if t.Virus.FullyInfectedThreshold <= 0 || t.Virus.FullyInfectedThreshold > 1 {
		t.Virus.FullyInfectedThreshold = def.Virus.FullyInfectedThreshold
	}

	t.Outposts.LocalCurePerHour = nonNegative(t.Outposts.LocalCurePerHour)
	t.Outposts.GlobalCurePerHour = nonNegative(t.Outposts.GlobalCurePerHour)
	if t.Outposts.DiminishingFactor <= 0 || t.Outposts.DiminishingFactor > 1 {
		t.Outposts.DiminishingFactor = def.Outposts.DiminishingFactor
	}

	if t.Costs.BaseZar < 0 {
		t.Costs.BaseZar = 0
	}
	if t.Costs.PerExistingOutpostZar < 0 {
		t.Costs.PerExistingOutpostZar = 0
	}

	t.InitialInfection.Min = clamp01(t.InitialInfection.Min)
	t.InitialInfection.Max = clamp01(t.InitialInfection.Max)
	if t.InitialInfection.Min > t.InitialInfection.Max {
		t.InitialInfection.Min, t.InitialInfection.Max = t.InitialInfection.Max, t.InitialInfection.Min
	}

	if t.StartingBudgetZar < 0 {
		t.StartingBudgetZar = 0
	}
	if t.UrbanHubBonus < 1 {
		t.UrbanHubBonus = def.UrbanHubBonus
	}
	if t.CureCompletionThreshold <= 0 || t.CureCompletionThreshold > 1 {
		t.CureCompletionThreshold = def.CureCompletionThreshold
	}
	return t
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
