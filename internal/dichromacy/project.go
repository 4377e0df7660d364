package dichromacy

import (
	"errors"
	"fmt"
	"math"

	"github.com/jmylchreest/scheming/internal/colour"
)

// ErrDegenerateConfusionLine is returned when the line through a colour's
// chromaticity and the confusion point is parallel to the confusion axis, or
// otherwise produces no finite intersection.
var ErrDegenerateConfusionLine = errors.New("degenerate confusion line")

// ProjectionError carries the colour and mode a projection failed for.
type ProjectionError struct {
	Colour colour.RGB
	Mode   Mode
	Err    error
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("cannot simulate %s for %s: %v", e.Mode, e.Colour.Hex(), e.Err)
}

func (e *ProjectionError) Unwrap() error {
	return e.Err
}

// ConfusionLine describes a dichromat's confusion geometry in CIE xy
// chromaticity: every colour on a line through the confusion point (U, V) is
// seen as the colour where that line meets the axis with the given slope and
// intercept.
type ConfusionLine struct {
	U         float64
	V         float64
	Slope     float64
	Intercept float64
}

var confusionLines = map[Deficiency]ConfusionLine{
	Protan: {U: 0.735, V: 0.265, Slope: 1.273463, Intercept: -0.073894},
	Deutan: {U: 1.14, V: -0.14, Slope: 0.968437, Intercept: 0.003331},
	Tritan: {U: 0.171, V: -0.003, Slope: 0.062921, Intercept: 0.292119},
}

const (
	// gamma is the display curve assumed by the projection.
	gamma = 2.2

	// anomalyWeight is the weight of the simulated colour against the
	// original in anomalous modes.
	anomalyWeight = 1.75
)

// Neutral reference chromaticity the out-of-gamut correction moves towards.
var whiteXYZ = [3]float64{0.312713, 0.329016, 0.358271}

// Rec. 709 luminance weights applied to encoded channel values.
var lumaWeights = [3]float64{0.212656, 0.715158, 0.072186}

// AsThough returns rgb as it would appear under mode. Normal is the identity.
// Only the confusion-line projections can fail, with a *ProjectionError
// wrapping ErrDegenerateConfusionLine.
func AsThough(rgb colour.RGB, mode Mode) (colour.RGB, error) {
	var sim colour.RGB
	switch mode.Deficiency {
	case None:
		return rgb, nil
	case Achroma:
		sim = achromatize(rgb)
	case Protan, Deutan, Tritan:
		var err error
		sim, err = project(rgb, confusionLines[mode.Deficiency])
		if err != nil {
			return rgb, &ProjectionError{Colour: rgb, Mode: mode, Err: err}
		}
	default:
		return rgb, fmt.Errorf("unknown deficiency %d", int(mode.Deficiency))
	}

	if mode.Anomalous {
		return anomalize(rgb, sim), nil
	}
	return sim, nil
}

// AsThoughHex is AsThough for callers that want the "#rrggbb" form.
func AsThoughHex(rgb colour.RGB, mode Mode) (string, error) {
	out, err := AsThough(rgb, mode)
	if err != nil {
		return "", err
	}
	return out.Hex(), nil
}

// ProjectAll applies mode to every colour. A colour that cannot be projected
// is passed through unchanged and its error is joined into the returned error.
func ProjectAll(rgbs []colour.RGB, mode Mode) ([]colour.RGB, error) {
	out := make([]colour.RGB, len(rgbs))
	var errs []error
	for i, c := range rgbs {
		p, err := AsThough(c, mode)
		if err != nil {
			errs = append(errs, err)
		}
		out[i] = p
	}
	return out, errors.Join(errs...)
}

func achromatize(rgb colour.RGB) colour.RGB {
	y := lumaWeights[0]*float64(rgb.R) + lumaWeights[1]*float64(rgb.G) + lumaWeights[2]*float64(rgb.B)
	v := roundByte(y)
	return colour.RGB{R: v, G: v, B: v}
}

// anomalize mixes the simulated colour with the original at anomalyWeight:1.
func anomalize(orig, sim colour.RGB) colour.RGB {
	mix := func(o, s uint8) uint8 {
		return roundByte((anomalyWeight*float64(s) + float64(o)) / (anomalyWeight + 1))
	}
	return colour.RGB{R: mix(orig.R, sim.R), G: mix(orig.G, sim.G), B: mix(orig.B, sim.B)}
}

// project moves rgb along its confusion line onto the confusion axis and
// re-encodes the result, pulling out-of-gamut channels back towards neutral.
func project(rgb colour.RGB, line ConfusionLine) (colour.RGB, error) {
	xyz := colour.RGBToXYZ(decodeGamma(rgb))
	if xyz.Y == 0 {
		return colour.RGB{}, nil
	}
	c := colour.XYZToXyY(xyz)

	// Slope of the line through the colour and the confusion point.
	var slope float64
	if c.X < line.U {
		slope = (line.V - c.Y) / (line.U - c.X)
	} else {
		slope = (c.Y - line.V) / (c.X - line.U)
	}
	if !finite(slope) || slope == line.Slope {
		return colour.RGB{}, ErrDegenerateConfusionLine
	}

	intercept := c.Y - c.X*slope
	du := (line.Intercept - intercept) / (slope - line.Slope)
	dv := slope*du + intercept
	if dv == 0 {
		return colour.RGB{}, ErrDegenerateConfusionLine
	}

	simXYZ := colour.XYZ{
		X: du * c.Lum / dv,
		Y: c.Lum,
		Z: (1 - (du + dv)) * c.Lum / dv,
	}
	sim := colour.XYZToLinearRGB(simXYZ)

	// Offset from the simulated colour to the neutral of the same luminance.
	delta := colour.XYZToLinearRGB(colour.XYZ{
		X: whiteXYZ[0]*c.Lum/whiteXYZ[1] - simXYZ.X,
		Y: 0,
		Z: whiteXYZ[2]*c.Lum/whiteXYZ[1] - simXYZ.Z,
	})

	adjust := math.Max(channelAdjustment(sim.R, delta.R),
		math.Max(channelAdjustment(sim.G, delta.G), channelAdjustment(sim.B, delta.B)))

	sim.R += adjust * delta.R
	sim.G += adjust * delta.G
	sim.B += adjust * delta.B
	if !finite(sim.R) || !finite(sim.G) || !finite(sim.B) {
		return colour.RGB{}, ErrDegenerateConfusionLine
	}

	return encodeGamma(sim), nil
}

// channelAdjustment is the fraction of d needed to bring s back to the edge
// of [0, 1]. Fractions outside [0, 1] and a zero d give no adjustment.
func channelAdjustment(s, d float64) float64 {
	if d == 0 {
		return 0
	}
	target := 1.0
	if s < 0 {
		target = 0
	}
	adj := (target - s) / d
	if adj < 0 || adj > 1 || math.IsNaN(adj) {
		return 0
	}
	return adj
}

func decodeGamma(rgb colour.RGB) colour.LinearRGB {
	dec := func(v uint8) float64 { return math.Pow(float64(v)/255, gamma) }
	return colour.LinearRGB{R: dec(rgb.R), G: dec(rgb.G), B: dec(rgb.B)}
}

func encodeGamma(l colour.LinearRGB) colour.RGB {
	enc := func(v float64) uint8 {
		return roundByte(255 * math.Pow(colour.Clamp01(v), 1/gamma))
	}
	return colour.RGB{R: enc(l.R), G: enc(l.G), B: enc(l.B)}
}

func roundByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
