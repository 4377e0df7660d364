package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jmylchreest/scheming/internal/colour"
	"github.com/jmylchreest/scheming/internal/gamut"
)

// Document is the JSON export of a scheme.
type Document struct {
	Limits  *LimitsJSON         `json:"limits,omitempty"`
	Mode    string              `json:"mode,omitempty"`
	Colours []colour.ColourJSON `json:"colours"`
	// Simulated holds the colours as seen under Mode, when one was applied.
	Simulated []string `json:"simulated,omitempty"`
}

// LimitsJSON reports limits in user units, hue in degrees.
type LimitsJSON struct {
	Hue    gamut.Interval `json:"hue_degrees"`
	Chroma gamut.Interval `json:"chroma"`
	Light  gamut.Interval `json:"light"`
	Bounds gamut.Box      `json:"lab_bounds"`
}

// NewDocument builds a Document. simulated may be nil.
func NewDocument(colours []colour.Colour, limits *gamut.Limits, mode string, simulated []colour.RGB) Document {
	doc := Document{
		Mode:    mode,
		Colours: make([]colour.ColourJSON, len(colours)),
	}
	for i, c := range colours {
		doc.Colours[i] = c.JSON()
	}
	if limits != nil {
		doc.Limits = &LimitsJSON{
			Hue:    limits.HueDegrees(),
			Chroma: limits.Chroma,
			Light:  limits.Light,
			Bounds: limits.Bounds(),
		}
	}
	if simulated != nil {
		doc.Simulated = HexLines(simulated)
	}
	return doc
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON export: %w", err)
	}
	return nil
}
