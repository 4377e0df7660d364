package gamut

import "math"

// Box is an axis-aligned rectangle in the (a, b) plane of CIELab.
type Box struct {
	AMin float64 `json:"a_min"`
	AMax float64 `json:"a_max"`
	BMin float64 `json:"b_min"`
	BMax float64 `json:"b_max"`
}

// Contains reports whether (a, b) lies inside the box, allowing eps of slack.
func (b Box) Contains(a, bb, eps float64) bool {
	return a >= b.AMin-eps && a <= b.AMax+eps && bb >= b.BMin-eps && bb <= b.BMax+eps
}

// LabBounds returns the bounding box of the a,b values reachable by colours
// whose hue lies in hue (radians, non-wrapping) and chroma lies in chroma.
//
// The reachable region is an annular sector, so the box is exact on the axes
// and loose on the corners.
func LabBounds(hue, chroma Interval) (aMin, aMax, bMin, bMax float64) {
	h0, h1 := hue.Low, hue.High

	// a = C·cos(h): cos reaches -1 at π. Its +1 at 0 and 2π can only be an
	// endpoint of a non-wrapping interval, which the endpoint values cover.
	lo, hi := endpointRange(math.Cos(h0), math.Cos(h1))
	if crosses(hue, math.Pi) {
		lo = -1
	}
	aMin, aMax = scaleByChroma(lo, hi, chroma)

	// b = C·sin(h): sin reaches +1 at π/2 and -1 at 3π/2.
	lo, hi = endpointRange(math.Sin(h0), math.Sin(h1))
	if crosses(hue, 3*math.Pi/2) {
		lo = -1
	}
	if crosses(hue, math.Pi/2) {
		hi = 1
	}
	bMin, bMax = scaleByChroma(lo, hi, chroma)

	return aMin, aMax, bMin, bMax
}

// Bounds is LabBounds for l's hue and chroma.
func (l Limits) Bounds() Box {
	aMin, aMax, bMin, bMax := LabBounds(l.Hue, l.Chroma)
	return Box{AMin: aMin, AMax: aMax, BMin: bMin, BMax: bMax}
}

func crosses(i Interval, angle float64) bool {
	return i.Low <= angle && angle <= i.High
}

func endpointRange(x, y float64) (float64, float64) {
	return math.Min(x, y), math.Max(x, y)
}

// scaleByChroma turns a range of unit projections into a range of a or b
// values. When the projection keeps one sign the smallest chroma gives the
// end nearest zero and the largest chroma the far end. A range spanning zero
// reaches both of its extremes at the largest chroma.
func scaleByChroma(lo, hi float64, chroma Interval) (float64, float64) {
	switch {
	case lo >= 0:
		return lo * chroma.Low, hi * chroma.High
	case hi <= 0:
		return lo * chroma.High, hi * chroma.Low
	default:
		return lo * chroma.High, hi * chroma.High
	}
}
