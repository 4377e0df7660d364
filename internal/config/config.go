// Package config loads scheming settings from defaults, a JSON file and
// the environment.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jmylchreest/scheming/internal/gamut"
	"github.com/jmylchreest/scheming/internal/plugin/manager"
	"github.com/jmylchreest/scheming/internal/scheme"
	"github.com/jmylchreest/scheming/internal/vecspace"
)

// FileName is the config file looked up in the working directory.
const FileName = ".scheming.json"

// Range is a [low, high] pair. Hue ranges are in degrees.
type Range [2]float64

// Config holds every persistent setting. Zero values mean "use the default".
type Config struct {
	Colours int    `json:"colours,omitempty"`
	Preset  string `json:"preset,omitempty"`
	Hue     *Range `json:"hue,omitempty"`
	Chroma  *Range `json:"chroma,omitempty"`
	Light   *Range `json:"light,omitempty"`

	Seed *uint64 `json:"seed,omitempty"`
	// Steps is a pointer so an explicit 0, which skips spreading, is kept.
	Steps *int `json:"steps,omitempty"`

	Periodic *bool   `json:"periodic,omitempty"`
	Force    float64 `json:"force,omitempty"`
	Decay    float64 `json:"decay,omitempty"`

	Mode   string `json:"mode,omitempty"`
	Format string `json:"format,omitempty"`

	Plugins         map[string]string `json:"plugins,omitempty"`
	DisabledPlugins []string          `json:"disabled_plugins,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	periodic := vecspace.DefaultParams().Periodic
	steps := vecspace.DefaultSteps
	return Config{
		Colours:  scheme.DefaultCount,
		Preset:   gamut.DefaultPreset,
		Steps:    &steps,
		Periodic: &periodic,
		Format:   "table",
	}
}

// Merge overlays the non-zero fields of o onto c. A preset in o replaces
// any ranges in c; ranges set alongside it in o still apply.
func (c Config) Merge(o Config) Config {
	if o.Colours != 0 {
		c.Colours = o.Colours
	}
	if o.Preset != "" {
		c.Preset = o.Preset
		c.Hue, c.Chroma, c.Light = nil, nil, nil
	}
	if o.Hue != nil {
		c.Hue = o.Hue
	}
	if o.Chroma != nil {
		c.Chroma = o.Chroma
	}
	if o.Light != nil {
		c.Light = o.Light
	}
	if o.Seed != nil {
		c.Seed = o.Seed
	}
	if o.Steps != nil {
		c.Steps = o.Steps
	}
	if o.Periodic != nil {
		c.Periodic = o.Periodic
	}
	if o.Force != 0 {
		c.Force = o.Force
	}
	if o.Decay != 0 {
		c.Decay = o.Decay
	}
	if o.Mode != "" {
		c.Mode = o.Mode
	}
	if o.Format != "" {
		c.Format = o.Format
	}
	if len(o.Plugins) > 0 {
		merged := maps.Clone(c.Plugins)
		if merged == nil {
			merged = make(map[string]string, len(o.Plugins))
		}
		maps.Copy(merged, o.Plugins)
		c.Plugins = merged
	}
	if len(o.DisabledPlugins) > 0 {
		c.DisabledPlugins = append(append([]string(nil), c.DisabledPlugins...), o.DisabledPlugins...)
	}
	return c
}

// Limits resolves the preset and then applies any explicit ranges.
func (c Config) Limits() (gamut.Limits, error) {
	name := c.Preset
	if name == "" {
		name = gamut.DefaultPreset
	}
	preset, err := gamut.LookupPreset(name)
	if err != nil {
		return gamut.Limits{}, err
	}
	limits, err := preset.Limits()
	if err != nil {
		return gamut.Limits{}, err
	}

	if c.Hue != nil {
		if err := limits.SetHue(c.Hue[0], c.Hue[1]); err != nil {
			return gamut.Limits{}, err
		}
	}
	if c.Chroma != nil {
		if err := limits.SetChroma(c.Chroma[0], c.Chroma[1]); err != nil {
			return gamut.Limits{}, err
		}
	}
	if c.Light != nil {
		if err := limits.SetLight(c.Light[0], c.Light[1]); err != nil {
			return gamut.Limits{}, err
		}
	}
	return limits, nil
}

// Simulation returns the repulsion parameters with overrides applied.
func (c Config) Simulation() vecspace.Params {
	p := vecspace.DefaultParams()
	if c.Periodic != nil {
		p.Periodic = *c.Periodic
	}
	if c.Force != 0 {
		p.Force = c.Force
	}
	if c.Decay != 0 {
		p.Decay = c.Decay
	}
	return p
}

// Params converts c into a generation request.
func (c Config) Params() (scheme.Params, error) {
	limits, err := c.Limits()
	if err != nil {
		return scheme.Params{}, err
	}
	p := scheme.DefaultParams()
	p.Limits = limits
	p.Simulation = c.Simulation()
	if c.Colours != 0 {
		p.Count = c.Colours
	}
	if c.Steps != nil {
		p.Steps = *c.Steps
	}
	if c.Seed != nil {
		p.Seed, p.Seeded = *c.Seed, true
	}
	return p, p.Validate()
}

// Manager returns the exporter configuration.
func (c Config) Manager() manager.Config {
	return manager.Config{Plugins: c.Plugins, DisabledPlugins: c.DisabledPlugins}
}

// Load reads a JSON config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - config path chosen by the user
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	var c Config
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return c, nil
}

// Save writes c as indented JSON.
func Save(path string, c Config) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultPaths lists where a config file is searched for, in order.
func DefaultPaths() []string {
	paths := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "scheming", "config.json"))
	}
	return paths
}

// Builder layers defaults, a config file and the environment.
type Builder struct {
	base     Config
	file     string
	search   bool
	useEnv   bool
	lookupFn func(string) (string, bool)
}

// NewBuilder starts from Default().
func NewBuilder() *Builder {
	return &Builder{base: Default(), lookupFn: os.LookupEnv}
}

// WithConfig replaces the base configuration.
func (b *Builder) WithConfig(c Config) *Builder {
	b.base = c
	return b
}

// WithFile loads path, which must exist. An empty path searches
// DefaultPaths and tolerates a missing file.
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	b.search = path == ""
	return b
}

// WithEnvConfig reads SCHEMING_* variables. They override the file.
func (b *Builder) WithEnvConfig() *Builder {
	b.useEnv = true
	return b
}

// Build resolves the configuration. It reports the file used, if any.
func (b *Builder) Build() (Config, string, error) {
	c := b.base
	used := ""

	switch {
	case b.file != "":
		fc, err := Load(b.file)
		if err != nil {
			return Config{}, "", err
		}
		c, used = c.Merge(fc), b.file
	case b.search:
		for _, p := range DefaultPaths() {
			fc, err := Load(p)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return Config{}, "", err
			}
			c, used = c.Merge(fc), p
			break
		}
	}

	if b.useEnv {
		ec, err := b.fromEnv()
		if err != nil {
			return Config{}, "", err
		}
		c = c.Merge(ec)
	}
	return c, used, nil
}

func (b *Builder) fromEnv() (Config, error) {
	var c Config
	if v, ok := b.lookupFn("SCHEMING_COLOURS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("SCHEMING_COLOURS: want a positive integer, got %q", v)
		}
		c.Colours = n
	}
	if v, ok := b.lookupFn("SCHEMING_STEPS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("SCHEMING_STEPS: want a non-negative integer, got %q", v)
		}
		c.Steps = &n
	}
	if v, ok := b.lookupFn("SCHEMING_SEED"); ok && v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("SCHEMING_SEED: %w", err)
		}
		c.Seed = &seed
	}
	if v, ok := b.lookupFn("SCHEMING_PRESET"); ok && v != "" {
		if _, err := gamut.LookupPreset(v); err != nil {
			return Config{}, fmt.Errorf("SCHEMING_PRESET: %w", err)
		}
		c.Preset = v
	}
	if v, ok := b.lookupFn("SCHEMING_PERIODIC"); ok && v != "" {
		periodic, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("SCHEMING_PERIODIC: %w", err)
		}
		c.Periodic = &periodic
	}
	return c, nil
}
