// Package scheme generates colour schemes whose members are spread evenly
// through a constrained region of CIELab space.
package scheme

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/scheming/internal/colour"
	"github.com/jmylchreest/scheming/internal/gamut"
	"github.com/jmylchreest/scheming/internal/vecspace"
)

// DefaultCount is the number of colours in a scheme when none is requested.
const DefaultCount = 10

// ErrInvalidPermutation is returned by Reorder for an argument that is not a
// permutation of the scheme's indices.
var ErrInvalidPermutation = errors.New("invalid permutation")

// Scheme is an ordered set of colours and the limits that produced them.
type Scheme struct {
	colours []colour.Colour
	size    int

	limits gamut.Limits
	sim    vecspace.Params
	steps  int
	dt     float64
	white  colour.WhitePoint
	rng    vecspace.Source
	logger hclog.Logger
}

// Option configures a Scheme.
type Option func(*Scheme)

// WithLimits sets the initial hue, chroma and lightness limits.
func WithLimits(l gamut.Limits) Option {
	return func(s *Scheme) { s.limits = l }
}

// WithSource sets the random source used to seed point positions.
func WithSource(rng vecspace.Source) Option {
	return func(s *Scheme) { s.rng = rng }
}

// WithSeed makes generation deterministic.
func WithSeed(seed uint64) Option {
	return WithSource(vecspace.NewSeededSource(seed))
}

// WithSimulation overrides the repulsion parameters.
func WithSimulation(p vecspace.Params) Option {
	return func(s *Scheme) { s.sim = p }
}

// WithSteps sets the number of simulation steps and the step size.
func WithSteps(steps int, dt float64) Option {
	return func(s *Scheme) {
		s.steps = steps
		s.dt = dt
	}
}

// WithWhitePoint sets the reference white used to convert Lab values.
func WithWhitePoint(w colour.WhitePoint) Option {
	return func(s *Scheme) { s.white = w }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l hclog.Logger) Option {
	return func(s *Scheme) { s.logger = l }
}

// New generates a scheme of n colours.
func New(n int, opts ...Option) (*Scheme, error) {
	return NewContext(context.Background(), n, opts...)
}

// NewContext is New with cancellation between simulation steps.
func NewContext(ctx context.Context, n int, opts ...Option) (*Scheme, error) {
	if n < 1 {
		return nil, fmt.Errorf("colour count must be at least 1, got %d", n)
	}

	s := &Scheme{
		size:   n,
		limits: gamut.DefaultLimits(),
		sim:    vecspace.DefaultParams(),
		steps:  vecspace.DefaultSteps,
		dt:     1,
		white:  colour.D65,
		logger: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.limits.Validate(); err != nil {
		return nil, err
	}
	if err := s.sim.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation parameters: %w", err)
	}
	if s.steps < 0 {
		return nil, fmt.Errorf("step count must not be negative, got %d", s.steps)
	}

	if err := s.RerollContext(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reroll replaces every colour with a freshly generated set.
func (s *Scheme) Reroll() error {
	return s.RerollContext(context.Background())
}

// RerollContext is Reroll with cancellation. On error the existing colours
// are kept.
func (s *Scheme) RerollContext(ctx context.Context) error {
	colours, err := s.findColours(ctx)
	if err != nil {
		return fmt.Errorf("failed to generate colours: %w", err)
	}
	s.colours = colours
	return nil
}

// findColours spreads points through the unit cube and maps each axis onto
// one Lab axis: x to lightness, y to a and z to b.
func (s *Scheme) findColours(ctx context.Context) ([]colour.Colour, error) {
	ps, err := vecspace.New(s.size, s.sim, s.rng)
	if err != nil {
		return nil, err
	}
	if err := ps.SpreadContext(ctx, s.steps, s.dt); err != nil {
		return nil, err
	}

	box := s.limits.Bounds()
	light := s.limits.Light
	s.logger.Debug("spread points", "count", s.size, "steps", s.steps,
		"min_separation", ps.MinSeparation(), "bounds", box)

	points := ps.NormalizedPositions()
	colours := make([]colour.Colour, len(points))
	for i, p := range points {
		lab := colour.Lab{
			L: light.Low + p.X*light.Span(),
			A: box.AMin + p.Y*(box.AMax-box.AMin),
			B: box.BMin + p.Z*(box.BMax-box.BMin),
		}
		colours[i] = colour.NewColourWithWhite(lab, s.white)
	}

	if s.logger.IsTrace() {
		for i, c := range colours {
			s.logger.Trace("colour", "index", i, "colour", c.String(), "in_gamut", c.InGamut())
		}
	}
	return colours, nil
}

// SetHueLimit sets the hue range in degrees. The colours are not regenerated
// until the next Reroll.
func (s *Scheme) SetHueLimit(lowDeg, highDeg float64) error {
	return s.limits.SetHue(lowDeg, highDeg)
}

// SetChromaLimit sets the chroma range.
func (s *Scheme) SetChromaLimit(low, high float64) error {
	return s.limits.SetChroma(low, high)
}

// SetLightLimit sets the lightness range.
func (s *Scheme) SetLightLimit(low, high float64) error {
	return s.limits.SetLight(low, high)
}

// SetLimits replaces all three limits at once.
func (s *Scheme) SetLimits(l gamut.Limits) error {
	if err := l.Validate(); err != nil {
		return err
	}
	s.limits = l
	return nil
}

// Resize changes the number of colours and regenerates the scheme.
func (s *Scheme) Resize(n int) error {
	if n < 1 {
		return fmt.Errorf("colour count must be at least 1, got %d", n)
	}
	old := s.size
	s.size = n
	if err := s.Reroll(); err != nil {
		s.size = old
		return err
	}
	return nil
}

// Limits returns the current limits.
func (s *Scheme) Limits() gamut.Limits {
	return s.limits
}

// Bounds returns the (a, b) box colours are currently drawn from.
func (s *Scheme) Bounds() gamut.Box {
	return s.limits.Bounds()
}

// Len returns the number of colours.
func (s *Scheme) Len() int {
	return len(s.colours)
}

// Colours returns a copy of the colours in order.
func (s *Scheme) Colours() []colour.Colour {
	out := make([]colour.Colour, len(s.colours))
	copy(out, s.colours)
	return out
}

// Colour returns the i-th colour. Like slice indexing it panics when i is
// out of range; use Len to bound it.
func (s *Scheme) Colour(i int) colour.Colour {
	return s.colours[i]
}

// RGB returns the integer sRGB values in order.
func (s *Scheme) RGB() []colour.RGB {
	out := make([]colour.RGB, len(s.colours))
	for i, c := range s.colours {
		out[i] = c.RGB()
	}
	return out
}

// Hex returns the "#rrggbb" strings in order.
func (s *Scheme) Hex() []string {
	out := make([]string, len(s.colours))
	for i, c := range s.colours {
		out[i] = c.Hex()
	}
	return out
}

// Swap exchanges colours i and j.
func (s *Scheme) Swap(i, j int) error {
	n := len(s.colours)
	if i < 0 || i >= n || j < 0 || j >= n {
		return fmt.Errorf("swap %d <-> %d out of range for %d colours", i, j, n)
	}
	s.colours[i], s.colours[j] = s.colours[j], s.colours[i]
	return nil
}

// Move takes the colour at from and reinserts it at to, shifting the colours
// in between.
func (s *Scheme) Move(from, to int) error {
	n := len(s.colours)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("move %d -> %d out of range for %d colours", from, to, n)
	}
	c := s.colours[from]
	if from < to {
		copy(s.colours[from:to], s.colours[from+1:to+1])
	} else {
		copy(s.colours[to+1:from+1], s.colours[to:from])
	}
	s.colours[to] = c
	return nil
}

// Reorder arranges the colours so that the new i-th colour is the old
// perm[i]-th.
func (s *Scheme) Reorder(perm []int) error {
	if len(perm) != len(s.colours) {
		return fmt.Errorf("%w: got %d indices for %d colours", ErrInvalidPermutation, len(perm), len(s.colours))
	}
	seen := make([]bool, len(perm))
	for _, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			return fmt.Errorf("%w: %v", ErrInvalidPermutation, perm)
		}
		seen[p] = true
	}

	out := make([]colour.Colour, len(perm))
	for i, p := range perm {
		out[i] = s.colours[p]
	}
	s.colours = out
	return nil
}

// MinDeltaE returns the smallest CIEDE2000 distance between any two colours.
func (s *Scheme) MinDeltaE() float64 {
	d, _, _ := colour.MinDeltaE(s.RGB())
	return d
}
