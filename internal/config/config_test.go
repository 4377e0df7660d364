package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmylchreest/scheming/internal/gamut"
	"github.com/jmylchreest/scheming/internal/scheme"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	c, used, err := NewBuilder().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if used != "" {
		t.Errorf("used = %q, want no file", used)
	}
	p, err := c.Params()
	if err != nil {
		t.Fatalf("Params() error = %v", err)
	}
	if p.Count != scheme.DefaultCount || p.Seeded || !p.Simulation.Periodic {
		t.Errorf("Params() = %+v", p)
	}
	if p.Limits != gamut.DefaultLimits() {
		t.Errorf("Limits = %v, want defaults", p.Limits)
	}
}

func TestWithFile(t *testing.T) {
	path := writeConfig(t, `{
  "colours": 6,
  "hue": [40, 70],
  "light": [20, 80],
  "seed": 42,
  "periodic": false,
  "plugins": {"kitty": "/opt/kitty.sh"}
}`)

	c, used, err := NewBuilder().WithFile(path).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if used != path {
		t.Errorf("used = %q, want %q", used, path)
	}

	p, err := c.Params()
	if err != nil {
		t.Fatalf("Params() error = %v", err)
	}
	if p.Count != 6 || !p.Seeded || p.Seed != 42 || p.Simulation.Periodic {
		t.Errorf("Params() = %+v", p)
	}
	hue := p.Limits.HueDegrees()
	if math.Abs(hue.Low-40) > 1e-9 || math.Abs(hue.High-70) > 1e-9 {
		t.Errorf("hue = %v, want [40, 70]", hue)
	}
	if p.Limits.Light != (gamut.Interval{Low: 20, High: 80}) {
		t.Errorf("light = %v", p.Limits.Light)
	}
	if c.Steps == nil || p.Steps != *c.Steps || p.Steps != scheme.DefaultParams().Steps {
		t.Errorf("steps should keep the default, got %d", p.Steps)
	}
	if c.Manager().Plugins["kitty"] != "/opt/kitty.sh" {
		t.Errorf("plugins = %v", c.Plugins)
	}
}

func TestWithFileErrors(t *testing.T) {
	if _, _, err := NewBuilder().WithFile(filepath.Join(t.TempDir(), "missing.json")).Build(); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}

	path := writeConfig(t, `{"colour": 5}`)
	if _, _, err := NewBuilder().WithFile(path).Build(); err == nil {
		t.Error("unknown field should be rejected")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"colours": 6, "preset": "all"}`)
	t.Setenv("SCHEMING_COLOURS", "12")
	t.Setenv("SCHEMING_STEPS", "50")
	t.Setenv("SCHEMING_SEED", "7")
	t.Setenv("SCHEMING_PRESET", "colourblind-friendly")
	t.Setenv("SCHEMING_PERIODIC", "false")

	c, _, err := NewBuilder().WithFile(path).WithEnvConfig().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if c.Colours != 12 || c.Steps == nil || *c.Steps != 50 || c.Seed == nil || *c.Seed != 7 {
		t.Errorf("config = %+v", c)
	}
	if c.Preset != "colourblind-friendly" || c.Periodic == nil || *c.Periodic {
		t.Errorf("preset/periodic = %q %v", c.Preset, c.Periodic)
	}

	want, err := gamut.LookupPreset("Colourblind Friendly")
	if err != nil {
		t.Fatal(err)
	}
	wantLimits, err := want.Limits()
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Limits()
	if err != nil {
		t.Fatal(err)
	}
	if got != wantLimits {
		t.Errorf("Limits() = %v, want %v", got, wantLimits)
	}
}

func TestZeroStepsIsKept(t *testing.T) {
	t.Setenv("SCHEMING_STEPS", "0")
	c, _, err := NewBuilder().WithEnvConfig().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	p, err := c.Params()
	if err != nil {
		t.Fatalf("Params() error = %v", err)
	}
	if p.Steps != 0 {
		t.Errorf("Steps = %d, want 0", p.Steps)
	}

	path := writeConfig(t, `{"steps": 0}`)
	t.Setenv("SCHEMING_STEPS", "")
	c, _, err = NewBuilder().WithFile(path).WithEnvConfig().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if c.Steps == nil || *c.Steps != 0 {
		t.Errorf("file steps = %v, want 0", c.Steps)
	}
}

func TestEnvPresetReplacesFileRanges(t *testing.T) {
	path := writeConfig(t, `{"hue": [40, 70], "chroma": [0, 10], "light": [20, 30]}`)
	t.Setenv("SCHEMING_PRESET", "colourblind-friendly")

	c, _, err := NewBuilder().WithFile(path).WithEnvConfig().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if c.Hue != nil || c.Chroma != nil || c.Light != nil {
		t.Errorf("ranges survived the env preset: hue=%v chroma=%v light=%v", c.Hue, c.Chroma, c.Light)
	}

	preset, err := gamut.LookupPreset("colourblind-friendly")
	if err != nil {
		t.Fatal(err)
	}
	want, err := preset.Limits()
	if err != nil {
		t.Fatal(err)
	}
	if got, err := c.Limits(); err != nil || got != want {
		t.Errorf("Limits() = %v, %v; want %v", got, err, want)
	}
}

func TestMergePresetWithOwnRanges(t *testing.T) {
	base := Config{Hue: &Range{10, 20}, Chroma: &Range{5, 6}}
	merged := base.Merge(Config{Preset: "all", Light: &Range{30, 60}})

	if merged.Hue != nil || merged.Chroma != nil {
		t.Errorf("base ranges kept: hue=%v chroma=%v", merged.Hue, merged.Chroma)
	}
	if merged.Light == nil || *merged.Light != (Range{30, 60}) {
		t.Errorf("light = %v, want [30 60]", merged.Light)
	}
}

func TestEnvErrors(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SCHEMING_COLOURS", "0"},
		{"SCHEMING_COLOURS", "many"},
		{"SCHEMING_STEPS", "-1"},
		{"SCHEMING_SEED", "-3"},
		{"SCHEMING_PRESET", "neon"},
		{"SCHEMING_PERIODIC", "sometimes"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, _, err := NewBuilder().WithEnvConfig().Build(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestLimitsRejectsInvertedRange(t *testing.T) {
	c := Default()
	c.Chroma = &Range{80, 10}
	if _, err := c.Limits(); !errors.Is(err, gamut.ErrInvalidRange) {
		t.Errorf("Limits() error = %v, want ErrInvalidRange", err)
	}
}

func TestMerge(t *testing.T) {
	base := Config{Plugins: map[string]string{"a": "/a"}, DisabledPlugins: []string{"x"}}
	merged := base.Merge(Config{Plugins: map[string]string{"b": "/b"}, DisabledPlugins: []string{"y"}, Format: "hex"})

	if len(merged.Plugins) != 2 || len(base.Plugins) != 1 {
		t.Errorf("plugins merged = %v, base = %v", merged.Plugins, base.Plugins)
	}
	if len(merged.DisabledPlugins) != 2 || merged.Format != "hex" {
		t.Errorf("merged = %+v", merged)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	seed := uint64(99)
	c := Default()
	c.Seed = &seed
	c.Hue = &Range{10, 200}

	path := filepath.Join(t.TempDir(), "out.json")
	if err := Save(path, c); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Seed == nil || *got.Seed != 99 || got.Hue == nil || *got.Hue != (Range{10, 200}) {
		t.Errorf("Load() = %+v", got)
	}
}
