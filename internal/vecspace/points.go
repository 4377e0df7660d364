// Package vecspace spreads points through a bounded cube by mutual repulsion.
//
// Each step computes all pairwise distances, so the cost is O(N²) per step, and
// O(27·N²) with periodic boundaries where every pair is checked against the 27
// translated images of the cube. That is fine for the tens of points a colour
// scheme needs but not for more than a few hundred.
package vecspace

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"
)

// Source supplies uniformly distributed values in [0, 1).
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	Float64() float64
}

// globalSource draws from the automatically seeded math/rand/v2 generator.
type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// NewSeededSource returns a deterministic Source.
func NewSeededSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Params controls the repulsion simulation.
type Params struct {
	// Force is the strength of the repulsion between a pair of points.
	Force float64
	// Decay is the exponent of the distance fall-off: force / distance^Decay.
	Decay float64
	// Scale is the edge length of the cube.
	Scale float64
	// Periodic wraps the cube as a 3-torus instead of clamping at its faces.
	Periodic bool
}

// DefaultParams returns the parameters used for colour scheme generation.
func DefaultParams() Params {
	return Params{
		Force:    20,
		Decay:    8,
		Scale:    10,
		Periodic: true,
	}
}

// Validate checks that p describes a usable simulation.
func (p Params) Validate() error {
	if !(p.Scale > 0) || math.IsInf(p.Scale, 0) {
		return fmt.Errorf("scale must be a positive finite number, got %v", p.Scale)
	}
	if math.IsNaN(p.Force) || math.IsInf(p.Force, 0) {
		return fmt.Errorf("force must be finite, got %v", p.Force)
	}
	if math.IsNaN(p.Decay) || math.IsInf(p.Decay, 0) {
		return fmt.Errorf("decay exponent must be finite, got %v", p.Decay)
	}
	return nil
}

// DefaultSteps is the iteration budget used by Spread callers that have no preference.
const DefaultSteps = 200

// PointSet is a set of points inside [0, Scale]³.
type PointSet struct {
	points []r3.Vec
	// fixed marks points that never move. Point 0 is fixed on creation so the
	// cloud has an anchor and does not drift as a whole.
	fixed  []bool
	params Params
	// rng breaks exact coincidences that clamping can create.
	rng Source
}

// New places n points uniformly at random in the cube. A nil rng uses the
// package-level math/rand/v2 generator.
func New(n int, params Params, rng Source) (*PointSet, error) {
	if n < 0 {
		return nil, fmt.Errorf("point count must not be negative, got %d", n)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation parameters: %w", err)
	}
	if rng == nil {
		rng = globalSource{}
	}

	ps := &PointSet{
		points: make([]r3.Vec, n),
		fixed:  make([]bool, n),
		params: params,
		rng:    rng,
	}
	for i := range ps.points {
		ps.points[i] = r3.Vec{
			X: rng.Float64() * params.Scale,
			Y: rng.Float64() * params.Scale,
			Z: rng.Float64() * params.Scale,
		}
	}
	if n > 0 {
		ps.fixed[0] = true
	}

	return ps, nil
}

// NewFromPositions builds a PointSet from explicit positions with no fixed points.
// Positions are brought inside the cube using the usual boundary rule.
// Coincident points are separated by the package-level generator.
func NewFromPositions(positions []r3.Vec, params Params) (*PointSet, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation parameters: %w", err)
	}

	ps := &PointSet{
		points: make([]r3.Vec, len(positions)),
		fixed:  make([]bool, len(positions)),
		params: params,
		rng:    globalSource{},
	}
	copy(ps.points, positions)
	for i := range ps.points {
		ps.points[i] = ps.bound(ps.points[i])
	}
	return ps, nil
}

// Len returns the number of points.
func (ps *PointSet) Len() int {
	return len(ps.points)
}

// Params returns the simulation parameters.
func (ps *PointSet) Params() Params {
	return ps.params
}

// Fixed reports whether point i is anchored.
func (ps *PointSet) Fixed(i int) bool {
	return ps.fixed[i]
}

// SetFixed anchors or releases point i.
func (ps *PointSet) SetFixed(i int, fixed bool) {
	ps.fixed[i] = fixed
}

// Positions returns a copy of the raw positions.
func (ps *PointSet) Positions() []r3.Vec {
	out := make([]r3.Vec, len(ps.points))
	copy(out, ps.points)
	return out
}

// NormalizedPositions returns the positions divided by the scale, so every
// coordinate is in [0, 1].
func (ps *PointSet) NormalizedPositions() []r3.Vec {
	out := make([]r3.Vec, len(ps.points))
	for i, p := range ps.points {
		out[i] = r3.Scale(1/ps.params.Scale, p)
	}
	return out
}

// separation returns the displacement from point j to point i. With periodic
// boundaries it is the shortest such displacement over the 27 images of j.
func (ps *PointSet) separation(i, j int) r3.Vec {
	d := r3.Sub(ps.points[i], ps.points[j])
	if !ps.params.Periodic {
		return d
	}

	best := d
	bestNorm := r3.Norm2(d)
	s := ps.params.Scale
	for ox := -1.0; ox <= 1; ox++ {
		for oy := -1.0; oy <= 1; oy++ {
			for oz := -1.0; oz <= 1; oz++ {
				img := r3.Sub(d, r3.Vec{X: ox * s, Y: oy * s, Z: oz * s})
				if n := r3.Norm2(img); n < bestNorm {
					best, bestNorm = img, n
				}
			}
		}
	}
	return best
}

// Distances returns the symmetric matrix of pairwise distances, using the
// nearest image when the space is periodic.
func (ps *PointSet) Distances() [][]float64 {
	n := len(ps.points)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := range n {
		for j := i + 1; j < n; j++ {
			d := r3.Norm(ps.separation(i, j))
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return dist
}

// MinSeparation returns the smallest pairwise distance, or +Inf with fewer than two points.
func (ps *PointSet) MinSeparation() float64 {
	minimum := math.Inf(1)
	for i := range ps.points {
		for j := i + 1; j < len(ps.points); j++ {
			if d := r3.Norm(ps.separation(i, j)); d < minimum {
				minimum = d
			}
		}
	}
	return minimum
}

// Step advances the simulation by dt.
func (ps *PointSet) Step(dt float64) {
	n := len(ps.points)
	totals := make([]r3.Vec, n)

	for i := range n {
		for j := i + 1; j < n; j++ {
			sep := ps.separation(i, j)
			d := r3.Norm(sep)
			if d == 0 {
				continue
			}
			denom := math.Pow(d, ps.params.Decay)
			if denom == 0 || math.IsInf(denom, 0) {
				continue
			}

			// Unit vector from j to i scaled by the force magnitude.
			f := r3.Scale(ps.params.Force/denom/d, sep)
			totals[i] = r3.Add(totals[i], f)
			totals[j] = r3.Sub(totals[j], f)
		}
	}

	for i := range n {
		if ps.fixed[i] {
			continue
		}
		ps.points[i] = r3.Add(ps.points[i], r3.Scale(dt, totals[i]))
	}
	for i := range n {
		ps.points[i] = ps.bound(ps.points[i])
	}
	ps.separateCoincident()
}

// coincidenceNudge is the size of the displacement that separates coincident
// points, as a fraction of the scale.
const coincidenceNudge = 1e-6

// separateCoincident moves one point of every exactly coincident pair a tiny
// random distance towards the middle of the cube. A coincident pair exerts no
// force on itself and feels identical forces from everything else, so
// without this it would never come apart. Pairs of fixed points are left.
func (ps *PointSet) separateCoincident() {
	for i := range ps.points {
		for j := i + 1; j < len(ps.points); j++ {
			if ps.points[i] != ps.points[j] {
				continue
			}
			k := j
			if ps.fixed[j] {
				if ps.fixed[i] {
					continue
				}
				k = i
			}
			ps.points[k] = ps.bound(ps.nudge(ps.points[k]))
		}
	}
}

func (ps *PointSet) nudge(p r3.Vec) r3.Vec {
	s := ps.params.Scale
	step := func(v float64) float64 {
		d := coincidenceNudge * s * (0.5 + ps.rng.Float64())
		if v > s/2 {
			return v - d
		}
		return v + d
	}
	return r3.Vec{X: step(p.X), Y: step(p.Y), Z: step(p.Z)}
}

// Spread runs steps iterations of Step. There is no convergence check.
func (ps *PointSet) Spread(steps int, dt float64) {
	for range steps {
		ps.Step(dt)
	}
}

// SpreadContext is Spread with cancellation checked between steps.
func (ps *PointSet) SpreadContext(ctx context.Context, steps int, dt float64) error {
	for range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		ps.Step(dt)
	}
	return nil
}

func (ps *PointSet) bound(p r3.Vec) r3.Vec {
	if ps.params.Periodic {
		return r3.Vec{
			X: wrap(p.X, ps.params.Scale),
			Y: wrap(p.Y, ps.params.Scale),
			Z: wrap(p.Z, ps.params.Scale),
		}
	}
	return r3.Vec{
		X: clamp(p.X, ps.params.Scale),
		Y: clamp(p.Y, ps.params.Scale),
		Z: clamp(p.Z, ps.params.Scale),
	}
}

// wrap maps v into [0, scale). Non-finite values, which only arise from
// overflowing forces, are reset to 0.
func wrap(v, scale float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	v = math.Mod(v, scale)
	if v < 0 {
		v += scale
	}
	if v >= scale {
		v -= scale
	}
	return v
}

func clamp(v, scale float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v <= 0:
		return 0
	case v >= scale:
		return scale
	default:
		return v
	}
}
