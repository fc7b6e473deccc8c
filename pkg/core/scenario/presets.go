package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Preset is a named parameter bundle offered to the UI (conservative / base /
// aggressive and whatever else the deployment configures).
type Preset struct {
	Name     string   `json:"name" yaml:"name"`
	Scenario Scenario `json:"scenario" yaml:"scenario"`
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// LoadPresets reads named presets from a yaml file. Every preset must pass
// Validate; a bad file is rejected whole rather than served partially.
func LoadPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}

	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}

	for i := range f.Presets {
		p := &f.Presets[i]
		if p.Name == "" {
			return nil, fmt.Errorf("preset %d has no name", i)
		}
		p.Scenario.Normalize()
		if err := p.Scenario.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
	}
	return f.Presets, nil
}

// BuiltinPresets returns the compiled-in fallback used when no presets file
// is deployed.
func BuiltinPresets() []Preset {
	base := Defaults()

	conservative := base
	conservative.GrowthRate = 0.03
	conservative.DiscountRate = 0.12
	conservative.TerminalGrowth = 0.015

	aggressive := base
	aggressive.GrowthRate = 0.08
	aggressive.DiscountRate = 0.09
	aggressive.TerminalGrowth = 0.025
	aggressive.Years = 10

	return []Preset{
		{Name: "base", Scenario: base},
		{Name: "conservative", Scenario: conservative},
		{Name: "aggressive", Scenario: aggressive},
	}
}
