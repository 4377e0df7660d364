// Package export serialises colour schemes for other programs.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/scheming/internal/colour"
)

// Format names an export representation.
type Format string

const (
	// FormatHex writes one "#rrggbb" per line.
	FormatHex Format = "hex"
	// FormatRGB writes one "(r, g, b)" per line.
	FormatRGB Format = "rgb"
	// FormatGnuplot writes one line style directive per colour.
	FormatGnuplot Format = "gnuplot"
	// FormatPython writes a Python list literal of quoted hex strings.
	FormatPython Format = "python"
	// FormatJSON writes a JSON document with every colour representation.
	FormatJSON Format = "json"
)

// Formats returns the supported formats in display order.
func Formats() []Format {
	return []Format{FormatHex, FormatRGB, FormatGnuplot, FormatPython, FormatJSON}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range Formats() {
		if f == valid {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (valid formats: %v)", s, Formats())
}

// HexLines returns each colour as "#rrggbb".
func HexLines(rgbs []colour.RGB) []string {
	lines := make([]string, len(rgbs))
	for i, c := range rgbs {
		lines[i] = c.Hex()
	}
	return lines
}

// RGBLines returns each colour as "(r, g, b)".
func RGBLines(rgbs []colour.RGB) []string {
	lines := make([]string, len(rgbs))
	for i, c := range rgbs {
		lines[i] = c.Tuple()
	}
	return lines
}

// GnuplotLines returns one "set style line" directive per colour. Gnuplot
// numbers line styles from 1.
func GnuplotLines(rgbs []colour.RGB) []string {
	lines := make([]string, len(rgbs))
	for i, c := range rgbs {
		lines[i] = GnuplotStyle(i+1, c)
	}
	return lines
}

// GnuplotStyle formats a single line style directive.
func GnuplotStyle(index int, c colour.RGB) string {
	return fmt.Sprintf("set style line %d lc %q", index, c.Hex())
}

// PythonEntries returns each colour as a quoted hex string, ready to be
// joined into a list literal.
func PythonEntries(rgbs []colour.RGB) []string {
	entries := make([]string, len(rgbs))
	for i, c := range rgbs {
		entries[i] = fmt.Sprintf("%q", c.Hex())
	}
	return entries
}

// PythonList returns the colours as a Python list literal.
func PythonList(rgbs []colour.RGB) string {
	return "[" + strings.Join(PythonEntries(rgbs), ", ") + "]"
}

// Lines returns the line-oriented representation of rgbs in format f.
// The Python format is a single line.
func Lines(f Format, rgbs []colour.RGB) ([]string, error) {
	switch f {
	case FormatHex:
		return HexLines(rgbs), nil
	case FormatRGB:
		return RGBLines(rgbs), nil
	case FormatGnuplot:
		return GnuplotLines(rgbs), nil
	case FormatPython:
		return []string{PythonList(rgbs)}, nil
	default:
		return nil, fmt.Errorf("format %q is not line oriented", f)
	}
}

// Write writes rgbs to w in a line-oriented format, one entry per line.
func Write(w io.Writer, f Format, rgbs []colour.RGB) error {
	lines, err := Lines(f, rgbs)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write %s export: %w", f, err)
		}
	}
	return nil
}
