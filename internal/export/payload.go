package export

import (
	"bytes"

	"github.com/jmylchreest/scheming/internal/colour"
	"github.com/jmylchreest/scheming/internal/gamut"
	"github.com/jmylchreest/scheming/pkg/plugin"
)

// Payload is everything an exporter may render.
type Payload struct {
	Colours []colour.Colour
	Limits  *gamut.Limits
	// Mode names the colour vision mode Simulated was produced under.
	Mode      string
	Simulated []colour.RGB
	Args      map[string]any
}

// RGB returns the payload's colours as sRGB.
func (p Payload) RGB() []colour.RGB {
	out := make([]colour.RGB, len(p.Colours))
	for i, c := range p.Colours {
		out[i] = c.RGB()
	}
	return out
}

// Document converts the payload to its JSON export.
func (p Payload) Document() Document {
	return NewDocument(p.Colours, p.Limits, p.Mode, p.Simulated)
}

// SchemeData converts the payload to the plugin wire type.
func (p Payload) SchemeData() plugin.SchemeData {
	data := plugin.SchemeData{
		Colours:    make([]plugin.SchemeColour, len(p.Colours)),
		Mode:       p.Mode,
		PluginArgs: p.Args,
	}
	for i, c := range p.Colours {
		rgb := c.RGB()
		lab := c.Lab()
		sc := plugin.SchemeColour{
			Index: i,
			Hex:   c.Hex(),
			RGB:   plugin.RGBColour{R: rgb.R, G: rgb.G, B: rgb.B},
			Lab:   [3]float64{lab.L, lab.A, lab.B},
		}
		if i < len(p.Simulated) {
			sc.Simulated = p.Simulated[i].Hex()
		}
		data.Colours[i] = sc
	}
	if p.Limits != nil {
		hue := p.Limits.HueDegrees()
		data.Limits = plugin.LimitsData{
			Hue:    [2]float64{hue.Low, hue.High},
			Chroma: [2]float64{p.Limits.Chroma.Low, p.Limits.Chroma.High},
			Light:  [2]float64{p.Limits.Light.Low, p.Limits.Light.High},
		}
	}
	return data
}

// Extension returns the file extension used when f is written to a file.
func (f Format) Extension() string {
	switch f {
	case FormatGnuplot:
		return "gp"
	case FormatPython:
		return "py"
	case FormatJSON:
		return "json"
	default:
		return "txt"
	}
}

// Render writes the payload in format f and returns the bytes.
func Render(f Format, p Payload) ([]byte, error) {
	var buf bytes.Buffer
	if f == FormatJSON {
		if err := WriteJSON(&buf, p.Document()); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	if err := Write(&buf, f, p.RGB()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
