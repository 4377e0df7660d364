package colour

import (
	"encoding/json"
	"fmt"
)

// Colour is an immutable colour built from a Lab triple. Every derived
// representation is computed once by the constructor.
type Colour struct {
	lab    Lab
	white  WhitePoint
	xyz    XYZ
	linear LinearRGB
	rgb    RGB
	hex    string
}

// NewColour converts a Lab triple under D65.
func NewColour(l, a, b float64) Colour {
	return NewColourWithWhite(Lab{L: l, A: a, B: b}, D65)
}

// NewColourWithWhite converts lab relative to an arbitrary reference white.
func NewColourWithWhite(lab Lab, white WhitePoint) Colour {
	xyz := LabToXYZ(lab, white)
	linear := XYZToLinearRGB(xyz)
	rgb := LinearToSRGB(linear)

	return Colour{
		lab:    lab,
		white:  white,
		xyz:    xyz,
		linear: linear,
		rgb:    rgb,
		hex:    rgb.Hex(),
	}
}

// Lab returns the source Lab triple.
func (c Colour) Lab() Lab { return c.lab }

// WhitePoint returns the reference white the colour was converted under.
func (c Colour) WhitePoint() WhitePoint { return c.white }

// XYZ returns the tristimulus values.
func (c Colour) XYZ() XYZ { return c.xyz }

// Linear returns the unclipped linear RGB values.
func (c Colour) Linear() LinearRGB { return c.linear }

// RGB returns the clipped 8-bit sRGB value.
func (c Colour) RGB() RGB { return c.rgb }

// Hex returns the lowercase "#rrggbb" form.
func (c Colour) Hex() string { return c.hex }

// InGamut reports whether the linear RGB representation needed no clipping.
func (c Colour) InGamut() bool {
	const eps = 1e-9
	for _, v := range []float64{c.linear.R, c.linear.G, c.linear.B} {
		if v < -eps || v > 1+eps {
			return false
		}
	}
	return true
}

// String returns a short description, e.g. "#1a2b3c Lab(50.00, 10.00, -20.00)".
func (c Colour) String() string {
	return fmt.Sprintf("%s Lab(%.2f, %.2f, %.2f)", c.hex, c.lab.L, c.lab.A, c.lab.B)
}

// ColourJSON is the serialised form of a Colour.
type ColourJSON struct {
	Hex    string    `json:"hex"`
	RGB    RGB       `json:"rgb"`
	Lab    Lab       `json:"lab"`
	XYZ    XYZ       `json:"xyz"`
	Linear LinearRGB `json:"linear_rgb"`
}

// JSON returns the serialisable view of c.
func (c Colour) JSON() ColourJSON {
	return ColourJSON{
		Hex:    c.hex,
		RGB:    c.rgb,
		Lab:    c.lab,
		XYZ:    c.xyz,
		Linear: c.linear,
	}
}

// MarshalJSON implements json.Marshaler.
func (c Colour) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.JSON())
}
