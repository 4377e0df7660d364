// Package gamut maps hue/chroma/lightness constraints onto the region of
// CIELab space that a colour scheme may occupy.
package gamut

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRange is matched by every *InvalidRangeError.
var ErrInvalidRange = errors.New("invalid range")

// InvalidRangeError reports a limit whose bounds are inverted or out of domain.
type InvalidRangeError struct {
	Field  string
	Low    float64
	High   float64
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid %s range [%g, %g]: %s", e.Field, e.Low, e.High, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidRange) succeed.
func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

// Interval is a closed interval [Low, High].
type Interval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Span returns High - Low.
func (i Interval) Span() float64 {
	return i.High - i.Low
}

// Contains reports whether v lies in the interval.
func (i Interval) Contains(v float64) bool {
	return v >= i.Low && v <= i.High
}

// Domain bounds accepted at the boundary.
const (
	MaxHueDegrees = 360.0
	MaxChroma     = 100.0
	MaxLightness  = 100.0
)

// Limits constrains the colours of a scheme in cylindrical HCL coordinates.
// Hue is stored in radians as a non-wrapping interval inside [0, 2π].
type Limits struct {
	Hue    Interval `json:"hue"`
	Chroma Interval `json:"chroma"`
	Light  Interval `json:"light"`
}

// DefaultLimits allows every hue, chroma up to 100 and the full lightness range.
func DefaultLimits() Limits {
	return Limits{
		Hue:    Interval{Low: 0, High: 2 * math.Pi},
		Chroma: Interval{Low: 0, High: MaxChroma},
		Light:  Interval{Low: 0, High: MaxLightness},
	}
}

// NewLimits builds Limits from hue given in degrees and chroma/lightness ranges.
func NewLimits(hueLowDeg, hueHighDeg, chromaLow, chromaHigh, lightLow, lightHigh float64) (Limits, error) {
	l := DefaultLimits()
	if err := l.SetHue(hueLowDeg, hueHighDeg); err != nil {
		return Limits{}, err
	}
	if err := l.SetChroma(chromaLow, chromaHigh); err != nil {
		return Limits{}, err
	}
	if err := l.SetLight(lightLow, lightHigh); err != nil {
		return Limits{}, err
	}
	return l, nil
}

func checkRange(field string, low, high, domainLow, domainHigh float64) error {
	if math.IsNaN(low) || math.IsNaN(high) {
		return &InvalidRangeError{Field: field, Low: low, High: high, Reason: "bounds must be numbers"}
	}
	if low > high {
		return &InvalidRangeError{Field: field, Low: low, High: high, Reason: "low exceeds high"}
	}
	if low < domainLow || high > domainHigh {
		return &InvalidRangeError{
			Field:  field,
			Low:    low,
			High:   high,
			Reason: fmt.Sprintf("bounds must lie within [%g, %g]", domainLow, domainHigh),
		}
	}
	return nil
}

// SetHue sets the hue interval from degrees in [0, 360]. The limits are left
// unchanged on error.
func (l *Limits) SetHue(lowDeg, highDeg float64) error {
	if err := checkRange("hue", lowDeg, highDeg, 0, MaxHueDegrees); err != nil {
		return err
	}
	l.Hue = Interval{Low: lowDeg * math.Pi / 180, High: highDeg * math.Pi / 180}
	return nil
}

// SetChroma sets the chroma interval within [0, 100].
func (l *Limits) SetChroma(low, high float64) error {
	if err := checkRange("chroma", low, high, 0, MaxChroma); err != nil {
		return err
	}
	l.Chroma = Interval{Low: low, High: high}
	return nil
}

// SetLight sets the lightness interval within [0, 100].
func (l *Limits) SetLight(low, high float64) error {
	if err := checkRange("light", low, high, 0, MaxLightness); err != nil {
		return err
	}
	l.Light = Interval{Low: low, High: high}
	return nil
}

// HueDegrees returns the hue interval converted back to degrees.
func (l Limits) HueDegrees() Interval {
	return Interval{Low: l.Hue.Low * 180 / math.Pi, High: l.Hue.High * 180 / math.Pi}
}

// Validate checks every interval, for Limits built as struct literals.
func (l Limits) Validate() error {
	if err := checkRange("hue", l.Hue.Low, l.Hue.High, 0, 2*math.Pi); err != nil {
		return err
	}
	if err := checkRange("chroma", l.Chroma.Low, l.Chroma.High, 0, math.MaxFloat64); err != nil {
		return err
	}
	return checkRange("light", l.Light.Low, l.Light.High, 0, MaxLightness)
}

// String renders the limits in the units a user enters them.
func (l Limits) String() string {
	h := l.HueDegrees()
	return fmt.Sprintf("hue %g-%g°, chroma %g-%g, light %g-%g",
		h.Low, h.High, l.Chroma.Low, l.Chroma.High, l.Light.Low, l.Light.High)
}
