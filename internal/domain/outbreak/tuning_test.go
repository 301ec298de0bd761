package outbreak

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalized_ClampsDegenerateValues(t *testing.T) {
	bad := Tuning{
		Virus: VirusTuning{
			BaseInfectionPerHour:    -1,
			DailyGrowthRate:         -0.5,
			OutpostDisableThreshold: 1.5,
			FullyInfectedThreshold:  0,
		},
		Outposts: OutpostTuning{
			LocalCurePerHour:  -2,
			GlobalCurePerHour: -3,
			DiminishingFactor: 2,
		},
		Costs:             CostTuning{BaseZar: -10, PerExistingOutpostZar: -1},
		InitialInfection:  SeedRange{Min: 0.9, Max: 0.1},
		StartingBudgetZar: -50,
		UrbanHubBonus:     0.5,
	}
	got := bad.Normalized()
	def := DefaultTuning()

	if got.Virus.BaseInfectionPerHour != 0 || got.Virus.DailyGrowthRate != 0 {
		t.Fatalf("negative rates should clamp to zero: %+v", got.Virus)
	}
	if got.Virus.OutpostDisableThreshold != def.Virus.OutpostDisableThreshold {
		t.Fatalf("out-of-range disable threshold should fall back to default")
	}
	if got.Virus.FullyInfectedThreshold != def.Virus.FullyInfectedThreshold {
		t.Fatalf("zero fully-infected threshold should fall back to default")
	}
	if got.Outposts.DiminishingFactor != def.Outposts.DiminishingFactor {
		t.Fatalf("diminishing factor above 1 should fall back to default")
	}
	if got.InitialInfection.Min != 0.1 || got.InitialInfection.Max != 0.9 {
		t.Fatalf("inverted seed range should swap, got %+v", got.InitialInfection)
	}
	if got.Costs.BaseZar != 0 || got.Costs.PerExistingOutpostZar != 0 || got.StartingBudgetZar != 0 {
		t.Fatalf("negative money should clamp to zero")
	}
	if got.UrbanHubBonus != def.UrbanHubBonus {
		t.Fatalf("hub bonus below 1 should fall back to default")
	}
	if got.CureCompletionThreshold != def.CureCompletionThreshold {
		t.Fatalf("missing completion threshold should default")
	}
}

func TestLoadTuning_PartialFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	raw := []byte(`
virus:
  base_infection_per_hour: 0.05
costs:
  base_zar: 40
urban_hubs:
  - gauteng
`)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write tuning: %v", err)
	}

	got, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("load tuning: %v", err)
	}
	def := DefaultTuning()
	if got.Virus.BaseInfectionPerHour != 0.05 {
		t.Fatalf("override not applied: %f", got.Virus.BaseInfectionPerHour)
	}
	if got.Costs.BaseZar != 40 {
		t.Fatalf("cost override not applied: %d", got.Costs.BaseZar)
	}
	if got.Virus.DailyGrowthRate != def.Virus.DailyGrowthRate {
		t.Fatalf("untouched field lost its default")
	}
	if len(got.UrbanHubs) != 1 || got.UrbanHubs[0] != "gauteng" {
		t.Fatalf("hub list override not applied: %v", got.UrbanHubs)
	}
}

func TestLoadTuning_MissingFile(t *testing.T) {
	if _, err := LoadTuning(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadTuning_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("virus: ["), 0o644); err != nil {
		t.Fatalf("write tuning: %v", err)
	}
	if _, err := LoadTuning(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
