package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/jmylchreest/scheming/internal/colour"
)

// SwatchOptions controls the swatch sheet layout.
type SwatchOptions struct {
	// CellWidth and CellHeight are the size of one swatch in pixels.
	CellWidth  int
	CellHeight int
	// Gap is the spacing between and around swatches.
	Gap int
	// Labels draws each colour's hex and rgb values on its swatch.
	Labels bool
}

// DefaultSwatchOptions returns a layout that fits the labels comfortably.
func DefaultSwatchOptions() SwatchOptions {
	return SwatchOptions{
		CellWidth:  140,
		CellHeight: 80,
		Gap:        8,
		Labels:     true,
	}
}

// SwatchGrid picks the column count for n swatches as the largest factor of
// n not above its square root, so the sheet is as close to square as the
// count allows without a ragged last row.
func SwatchGrid(n int) (rows, cols int) {
	if n <= 0 {
		return 0, 0
	}
	cols = 1
	for c := 1; c*c <= n; c++ {
		if n%c == 0 {
			cols = c
		}
	}
	return n / cols, cols
}

// RenderSwatch draws rgbs as a grid of labelled swatches.
func RenderSwatch(rgbs []colour.RGB, opts SwatchOptions) (*image.RGBA, error) {
	if len(rgbs) == 0 {
		return nil, fmt.Errorf("no colours to render")
	}
	if opts.CellWidth <= 0 || opts.CellHeight <= 0 || opts.Gap < 0 {
		return nil, fmt.Errorf("invalid swatch size %dx%d with gap %d", opts.CellWidth, opts.CellHeight, opts.Gap)
	}

	rows, cols := SwatchGrid(len(rgbs))
	width := cols*opts.CellWidth + (cols+1)*opts.Gap
	height := rows*opts.CellHeight + (rows+1)*opts.Gap

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for i, c := range rgbs {
		row, col := i/cols, i%cols
		x0 := opts.Gap + col*(opts.CellWidth+opts.Gap)
		y0 := opts.Gap + row*(opts.CellHeight+opts.Gap)
		cell := image.Rect(x0, y0, x0+opts.CellWidth, y0+opts.CellHeight)
		draw.Draw(img, cell, image.NewUniform(c.Color()), image.Point{}, draw.Src)

		if opts.Labels {
			drawLabel(img, cell, c)
		}
	}

	return img, nil
}

// drawLabel writes the hex and rgb values centred in the bottom of cell, in
// black or white depending on which reads better against the swatch.
func drawLabel(img *image.RGBA, cell image.Rectangle, c colour.RGB) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(colour.LabelColour(c).Color()),
		Face: face,
	}

	lineHeight := face.Metrics().Height.Ceil()
	lines := []string{c.Hex(), c.Tuple()}
	y := cell.Max.Y - 4 - (len(lines)-1)*lineHeight - face.Metrics().Descent.Ceil()
	for _, text := range lines {
		advance := d.MeasureString(text).Ceil()
		x := cell.Min.X + (cell.Dx()-advance)/2
		d.Dot = fixed.P(x, y)
		d.DrawString(text)
		y += lineHeight
	}
}

// WriteSwatch renders rgbs and encodes the sheet as PNG.
func WriteSwatch(w io.Writer, rgbs []colour.RGB, opts SwatchOptions) error {
	img, err := RenderSwatch(rgbs, opts)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode swatch PNG: %w", err)
	}
	return nil
}
