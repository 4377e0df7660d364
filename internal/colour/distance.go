package colour

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// toColorful converts rgb to a go-colorful value using its clipped sRGB form.
func (rgb RGB) toColorful() colorful.Color {
	return colorful.Color{
		R: float64(rgb.R) / 255,
		G: float64(rgb.G) / 255,
		B: float64(rgb.B) / 255,
	}
}

// DeltaE returns the CIEDE2000 difference between the displayed forms of two colours.
// Values are on go-colorful's scale, where 0.01 is roughly one just-noticeable difference.
func DeltaE(a, b RGB) float64 {
	return a.toColorful().DistanceCIEDE2000(b.toColorful())
}

// MinDeltaE returns the smallest pairwise DeltaE in rgbs and the indices of that pair.
// Fewer than two colours yields +Inf and (-1, -1).
func MinDeltaE(rgbs []RGB) (minimum float64, i, j int) {
	minimum, i, j = math.Inf(1), -1, -1
	for x := 0; x < len(rgbs); x++ {
		for y := x + 1; y < len(rgbs); y++ {
			if d := DeltaE(rgbs[x], rgbs[y]); d < minimum {
				minimum, i, j = d, x, y
			}
		}
	}
	return minimum, i, j
}
