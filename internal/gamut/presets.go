package gamut

import (
	"fmt"
	"strings"
)

// Preset is a named set of limits, with hue in degrees.
type Preset struct {
	Name   string
	Hue    [2]float64
	Chroma [2]float64
	Light  [2]float64
}

// Limits converts the preset into validated Limits.
func (p Preset) Limits() (Limits, error) {
	return NewLimits(p.Hue[0], p.Hue[1], p.Chroma[0], p.Chroma[1], p.Light[0], p.Light[1])
}

var presets = []Preset{
	{
		Name:   "All",
		Hue:    [2]float64{0, 360},
		Chroma: [2]float64{0, 100},
		Light:  [2]float64{0, 100},
	},
	{
		// Moderate chroma and no extreme lightness keep neighbouring colours
		// apart under the common deficiencies.
		Name:   "Colourblind Friendly",
		Hue:    [2]float64{0, 360},
		Chroma: [2]float64{40, 70},
		Light:  [2]float64{15, 85},
	},
}

// DefaultPreset is used when no preset or explicit limits are given.
const DefaultPreset = "All"

// Presets returns the built-in presets in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// PresetNames returns the built-in preset names in display order.
func PresetNames() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

// LookupPreset finds a preset by name. Matching ignores case and treats
// '-' and '_' as spaces, so "colourblind-friendly" works on a command line.
func LookupPreset(name string) (Preset, error) {
	key := normalisePresetName(name)
	for _, p := range presets {
		if normalisePresetName(p.Name) == key {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
}

func normalisePresetName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", " ", "_", " ").Replace(s)
}
