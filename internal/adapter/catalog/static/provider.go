package staticcatalog

import (
	"context"
	"fmt"
	"os"

	"curefront/internal/domain/outbreak"

	"gopkg.in/yaml.v3"
)

// Provider serves the region catalog. With no Path configured it returns
// the built-in set of South African provinces; a YAML file replaces the
// set entirely.
type Provider struct {
	Path string
}

func (p Provider) Regions(_ context.Context) ([]outbreak.RegionInfo, error) {
	if p.Path == "" {
		return DefaultRegions(), nil
	}
	raw, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, err
	}
	var file struct {
		Regions []outbreak.RegionInfo `yaml:"regions"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("region catalog %s: %w", p.Path, err)
	}
	return file.Regions, nil
}

// DefaultRegions lists the nine provinces of South Africa.
func DefaultRegions() []outbreak.RegionInfo {
	return []outbreak.RegionInfo{
		{ID: "eastern-cape", DisplayName: "Eastern Cape"},
		{ID: "free-state", DisplayName: "Free State"},
		{ID: "gauteng", DisplayName: "Gauteng"},
		{ID: "kwazulu-natal", DisplayName: "KwaZulu-Natal"},
		{ID: "limpopo", DisplayName: "Limpopo"},
		{ID: "mpumalanga", DisplayName: "Mpumalanga"},
		{ID: "northern-cape", DisplayName: "Northern Cape"},
		{ID: "north-west", DisplayName: "North West"},
		{ID: "western-cape", DisplayName: "Western Cape"},
	}
}
