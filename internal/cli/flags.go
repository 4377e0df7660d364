package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/scheming/internal/config"
	"github.com/jmylchreest/scheming/internal/dichromacy"
	"github.com/jmylchreest/scheming/internal/scheme"
)

// rangeValue is a pflag.Value for "low:high" pairs.
type rangeValue struct {
	r config.Range
}

var _ pflag.Value = (*rangeValue)(nil)

func (v *rangeValue) String() string {
	if v.r == (config.Range{}) {
		return ""
	}
	return fmt.Sprintf("%g:%g", v.r[0], v.r[1])
}

func (v *rangeValue) Set(s string) error {
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return fmt.Errorf("want low:high, got %q", s)
	}
	low, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return fmt.Errorf("invalid low bound %q", lo)
	}
	high, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return fmt.Errorf("invalid high bound %q", hi)
	}
	v.r = config.Range{low, high}
	return nil
}

func (v *rangeValue) Type() string {
	return "low:high"
}

// schemeFlags are the generation flags shared by every command that builds
// a scheme.
type schemeFlags struct {
	count    int
	preset   string
	hue      rangeValue
	chroma   rangeValue
	light    rangeValue
	seed     uint64
	steps    int
	periodic bool
	mode     string
}

func (f *schemeFlags) register(fs *pflag.FlagSet) {
	fs.IntVarP(&f.count, "colours", "n", scheme.DefaultCount, "number of colours")
	fs.StringVarP(&f.preset, "preset", "p", "", "limit preset (see 'scheming presets')")
	fs.Var(&f.hue, "hue", "hue range in degrees, within 0:360")
	fs.Var(&f.chroma, "chroma", "chroma range, within 0:100")
	fs.Var(&f.light, "light", "lightness range, within 0:100")
	fs.Uint64Var(&f.seed, "seed", 0, "random seed for a reproducible scheme")
	fs.IntVar(&f.steps, "steps", 0, "repulsion steps, 0 keeps the random start (default from config)")
	fs.BoolVar(&f.periodic, "periodic", true, "wrap the simulation space at its faces")
	fs.StringVar(&f.mode, "simulate", "", "also show colours as seen with a colour vision deficiency ("+strings.Join(dichromacy.ModeNames(), ", ")+")")
}

// apply overlays the flags the user actually set onto cfg.
func (f *schemeFlags) apply(fs *pflag.FlagSet, cfg config.Config) config.Config {
	if fs.Changed("colours") {
		cfg.Colours = f.count
	}
	if fs.Changed("preset") {
		cfg.Preset = f.preset
		// A preset replaces ranges that came from the config file.
		cfg.Hue, cfg.Chroma, cfg.Light = nil, nil, nil
	}
	if fs.Changed("hue") {
		r := f.hue.r
		cfg.Hue = &r
	}
	if fs.Changed("chroma") {
		r := f.chroma.r
		cfg.Chroma = &r
	}
	if fs.Changed("light") {
		r := f.light.r
		cfg.Light = &r
	}
	if fs.Changed("seed") {
		seed := f.seed
		cfg.Seed = &seed
	}
	if fs.Changed("steps") {
		steps := f.steps
		cfg.Steps = &steps
	}
	if fs.Changed("periodic") {
		periodic := f.periodic
		cfg.Periodic = &periodic
	}
	if fs.Changed("simulate") {
		cfg.Mode = f.mode
	}
	return cfg
}

// generated is a scheme plus its optional simulation.
type generated struct {
	cfg       config.Config
	scheme    *scheme.Scheme
	mode      dichromacy.Mode
	simulated bool
}

// build resolves flags against configuration and generates a scheme.
func (a *app) build(ctx context.Context, cmd *cobra.Command, f *schemeFlags) (*generated, error) {
	cfg := f.apply(cmd.Flags(), a.cfg)

	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	params.Logger = a.logger.Named("scheme")

	var mode dichromacy.Mode
	if cfg.Mode != "" {
		if mode, err = dichromacy.ParseMode(cfg.Mode); err != nil {
			return nil, err
		}
	}

	s, err := scheme.Generate(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate scheme: %w", err)
	}
	a.logger.Debug("generated scheme", "colours", s.Len(), "limits", s.Limits().String(), "min_delta_e", s.MinDeltaE())

	return &generated{cfg: cfg, scheme: s, mode: mode, simulated: cfg.Mode != ""}, nil
}
