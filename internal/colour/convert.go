// Package colour converts between CIELab, XYZ, linear RGB and sRGB and provides
// the Colour value type used by the scheme generator.
package colour

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// WhitePoint is a reference white expressed as XYZ tristimulus values scaled so that Y = 100.
type WhitePoint struct {
	X, Y, Z float64
}

// D65 is the CIE standard illuminant D65.
var D65 = WhitePoint{X: 95.0489, Y: 100, Z: 108.8840}

// Matrix3 is a row-major 3x3 matrix.
type Matrix3 [3][3]float64

// Apply returns the matrix-vector product m·v.
func (m Matrix3) Apply(v [3]float64) [3]float64 {
	var out [3]float64
	for i := range 3 {
		out[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return out
}

// XYZToSRGBMatrix converts XYZ (Y normalised to 1) to linear sRGB under D65.
var XYZToSRGBMatrix = Matrix3{
	{3.2404542, -1.5371385, -0.4985314},
	{-0.9692660, 1.8760108, 0.0415560},
	{0.0556434, -0.2040259, 1.0572252},
}

// srgbToXYZMatrix is the inverse of XYZToSRGBMatrix, computed once at start-up.
var srgbToXYZMatrix = mustInvert(XYZToSRGBMatrix)

// SRGBToXYZMatrix returns a copy of the linear sRGB to XYZ matrix.
func SRGBToXYZMatrix() Matrix3 {
	return srgbToXYZMatrix
}

func mustInvert(m Matrix3) Matrix3 {
	dense := mat.NewDense(3, 3, []float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})

	var inv mat.Dense
	if err := inv.Inverse(dense); err != nil {
		panic(fmt.Sprintf("colour: sRGB matrix is not invertible: %v", err))
	}

	var out Matrix3
	for i := range 3 {
		for j := range 3 {
			out[i][j] = inv.At(i, j)
		}
	}
	return out
}

// Lab is a CIELab colour. L is in [0, 100]; a and b are roughly in [-100, 100].
type Lab struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// XYZ holds tristimulus values with Y = 1 for the reference white.
type XYZ struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// XyY is the chromaticity form of XYZ.
type XyY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	// Lum is the luminance Y carried over from XYZ.
	Lum float64 `json:"lum"`
}

// LinearRGB holds physically linear light intensities. Channels outside [0, 1] are out of gamut.
type LinearRGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

const (
	labDelta = 6.0 / 29.0

	// srgbLinearThreshold is where the companding curve switches to its linear segment.
	srgbLinearThreshold = 0.0031308
	// srgbEncodedThreshold is the same point on the encoded side.
	srgbEncodedThreshold = 0.04045
)

// fInv is the inverse of the CIELab weighting function.
func fInv(t float64) float64 {
	if t > labDelta {
		return t * t * t
	}
	return 3 * labDelta * labDelta * (t - 4.0/29.0)
}

// LabToXYZ converts a Lab triple to XYZ relative to the given white point.
func LabToXYZ(lab Lab, white WhitePoint) XYZ {
	fy := (lab.L + 16) / 116
	return XYZ{
		X: white.X * fInv(fy+lab.A/500) / 100,
		Y: white.Y * fInv(fy) / 100,
		Z: white.Z * fInv(fy-lab.B/200) / 100,
	}
}

// XYZToLinearRGB applies the fixed XYZ to sRGB matrix. The result is not clipped.
func XYZToLinearRGB(xyz XYZ) LinearRGB {
	v := XYZToSRGBMatrix.Apply([3]float64{xyz.X, xyz.Y, xyz.Z})
	return LinearRGB{R: v[0], G: v[1], B: v[2]}
}

// RGBToXYZ converts linear RGB back to XYZ using the inverse sRGB matrix.
func RGBToXYZ(linear LinearRGB) XYZ {
	v := srgbToXYZMatrix.Apply([3]float64{linear.R, linear.G, linear.B})
	return XYZ{X: v[0], Y: v[1], Z: v[2]}
}

// XYZToXyY returns the chromaticity coordinates of xyz. Pure black maps to (0, 0, Y).
func XYZToXyY(xyz XYZ) XyY {
	sum := xyz.X + xyz.Y + xyz.Z
	if sum == 0 {
		return XyY{X: 0, Y: 0, Lum: xyz.Y}
	}
	return XyY{X: xyz.X / sum, Y: xyz.Y / sum, Lum: xyz.Y}
}

// XyYToXYZ reconstructs tristimulus values from chromaticity. A zero y yields black.
func XyYToXYZ(c XyY) XYZ {
	if c.Y == 0 {
		return XYZ{}
	}
	return XYZ{
		X: c.X * c.Lum / c.Y,
		Y: c.Lum,
		Z: (1 - c.X - c.Y) * c.Lum / c.Y,
	}
}

// CompandChannel applies the sRGB transfer curve to a single linear channel.
// The result is not clipped.
func CompandChannel(c float64) float64 {
	if c <= srgbLinearThreshold {
		return 12.92 * c
	}
	return 1.055*math.Pow(c, 1/2.4) - 0.055
}

// LinearizeChannel is the inverse of CompandChannel for an encoded value in [0, 1].
func LinearizeChannel(c float64) float64 {
	if c <= srgbEncodedThreshold {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// LinearToSRGB companded, clips to [0, 1] and scales to integer sRGB.
// Clipping is the deliberate policy for out-of-gamut colours.
func LinearToSRGB(linear LinearRGB) RGB {
	return RGB{
		R: toByte(CompandChannel(linear.R)),
		G: toByte(CompandChannel(linear.G)),
		B: toByte(CompandChannel(linear.B)),
	}
}

// SRGBToLinear normalises by 255 and removes the sRGB transfer curve.
func SRGBToLinear(rgb RGB) LinearRGB {
	return LinearRGB{
		R: LinearizeChannel(float64(rgb.R) / 255),
		G: LinearizeChannel(float64(rgb.G) / 255),
		B: LinearizeChannel(float64(rgb.B) / 255),
	}
}

// toByte clips v to [0, 1] and rounds v*255 to the nearest integer.
func toByte(v float64) uint8 {
	return uint8(math.Round(Clamp01(v) * 255))
}

// Clamp01 limits v to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
