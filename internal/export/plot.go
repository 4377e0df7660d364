package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/scheming/internal/colour"
)

// PlotSpec describes the data file a gnuplot script should draw.
type PlotSpec struct {
	// DataFile is the path gnuplot reads. It must be uncompressed.
	DataFile string
	// Columns names every column in the file. The first is the x axis unless
	// there is only one, in which case it is plotted against the row index.
	Columns []string
	// Separator is the field separator, or 0 for whitespace.
	Separator rune
	Title     string
	// Terminal and Output, when both set, make the script write an image
	// instead of opening a window.
	Terminal string
	Output   string
}

// WritePlotScript writes a gnuplot script that draws each data series with
// the scheme's line styles, cycling through them if there are more series
// than colours.
func WritePlotScript(w io.Writer, spec PlotSpec, rgbs []colour.RGB) error {
	if len(rgbs) == 0 {
		return fmt.Errorf("no colours for plot styles")
	}
	if len(spec.Columns) == 0 {
		return fmt.Errorf("data file %s has no columns", spec.DataFile)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# gnuplot script for %s\n", spec.DataFile)
	if spec.Terminal != "" && spec.Output != "" {
		fmt.Fprintf(&b, "set terminal %s\n", spec.Terminal)
		fmt.Fprintf(&b, "set output %q\n", spec.Output)
	}
	if spec.Title != "" {
		fmt.Fprintf(&b, "set title %q\n", spec.Title)
	}
	if spec.Separator != 0 {
		sep := string(spec.Separator)
		if spec.Separator == '\t' {
			sep = "\\t"
		}
		fmt.Fprintf(&b, "set datafile separator \"%s\"\n", sep)
	}
	for _, line := range GnuplotLines(rgbs) {
		b.WriteString(line)
		b.WriteString(" lw 2\n")
	}
	b.WriteString("set key outside\n")

	series := plotSeries(spec, len(rgbs))
	b.WriteString("plot ")
	b.WriteString(strings.Join(series, ", \\\n     "))
	b.WriteString("\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write plot script: %w", err)
	}
	return nil
}

func plotSeries(spec PlotSpec, styles int) []string {
	if len(spec.Columns) == 1 {
		return []string{fmt.Sprintf("%q using 0:1 with lines ls 1 title %q", spec.DataFile, spec.Columns[0])}
	}

	series := make([]string, 0, len(spec.Columns)-1)
	for i := 1; i < len(spec.Columns); i++ {
		file := `""`
		if i == 1 {
			file = fmt.Sprintf("%q", spec.DataFile)
		}
		style := (i-1)%styles + 1
		series = append(series, fmt.Sprintf("%s using 1:%d with lines ls %d title %q",
			file, i+1, style, spec.Columns[i]))
	}
	return series
}
