package scheme

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/scheming/internal/colour"
	"github.com/jmylchreest/scheming/internal/dichromacy"
	"github.com/jmylchreest/scheming/internal/gamut"
	"github.com/jmylchreest/scheming/internal/vecspace"
)

// Params is a complete generation request.
type Params struct {
	Count  int
	Limits gamut.Limits

	// Seed is used only when Seeded is set; otherwise every call differs.
	Seed   uint64
	Seeded bool

	Steps      int
	StepSize   float64
	Simulation vecspace.Params

	Logger hclog.Logger
}

// DefaultParams returns a request for DefaultCount colours with default limits.
func DefaultParams() Params {
	return Params{
		Count:      DefaultCount,
		Limits:     gamut.DefaultLimits(),
		Steps:      vecspace.DefaultSteps,
		StepSize:   1,
		Simulation: vecspace.DefaultParams(),
	}
}

// Validate checks p before any computation happens.
func (p Params) Validate() error {
	if p.Count < 1 {
		return fmt.Errorf("colour count must be at least 1, got %d", p.Count)
	}
	if p.Steps < 0 {
		return fmt.Errorf("step count must not be negative, got %d", p.Steps)
	}
	if err := p.Limits.Validate(); err != nil {
		return err
	}
	if err := p.Simulation.Validate(); err != nil {
		return fmt.Errorf("invalid simulation parameters: %w", err)
	}
	return nil
}

// Options converts p into the equivalent Scheme options.
func (p Params) Options() []Option {
	opts := []Option{
		WithLimits(p.Limits),
		WithSimulation(p.Simulation),
		WithSteps(p.Steps, p.StepSize),
	}
	if p.Seeded {
		opts = append(opts, WithSeed(p.Seed))
	}
	if p.Logger != nil {
		opts = append(opts, WithLogger(p.Logger))
	}
	return opts
}

// Generate builds a scheme from a single request.
func Generate(ctx context.Context, p Params) (*Scheme, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return NewContext(ctx, p.Count, p.Options()...)
}

// Simulate returns the scheme's colours as they appear under mode. Colours
// that cannot be projected are returned unchanged alongside the error.
func (s *Scheme) Simulate(mode dichromacy.Mode) ([]colour.RGB, error) {
	out, err := dichromacy.ProjectAll(s.RGB(), mode)
	if err != nil {
		s.logger.Warn("some colours could not be simulated", "mode", mode.String(), "error", err)
	}
	return out, err
}
