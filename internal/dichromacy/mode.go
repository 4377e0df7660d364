// Package dichromacy simulates how sRGB colours appear to viewers with
// colour-vision deficiencies.
package dichromacy

import (
	"fmt"
	"strings"
)

// Deficiency identifies the kind of colour-vision deficiency.
type Deficiency int

const (
	None Deficiency = iota
	Protan
	Deutan
	Tritan
	Achroma
)

func (d Deficiency) String() string {
	switch d {
	case None:
		return "none"
	case Protan:
		return "protan"
	case Deutan:
		return "deutan"
	case Tritan:
		return "tritan"
	case Achroma:
		return "achroma"
	default:
		return fmt.Sprintf("Deficiency(%d)", int(d))
	}
}

// Mode is a deficiency together with its severity. Anomalous modes blend the
// dichromatic simulation with the original colour.
type Mode struct {
	Deficiency Deficiency
	Anomalous  bool
}

// The named modes.
var (
	Normal        = Mode{Deficiency: None}
	Protanopia    = Mode{Deficiency: Protan}
	Protanomaly   = Mode{Deficiency: Protan, Anomalous: true}
	Deuteranopia  = Mode{Deficiency: Deutan}
	Deuteranomaly = Mode{Deficiency: Deutan, Anomalous: true}
	Tritanopia    = Mode{Deficiency: Tritan}
	Tritanomaly   = Mode{Deficiency: Tritan, Anomalous: true}
	Achromatopsia = Mode{Deficiency: Achroma}
	Achromatomaly = Mode{Deficiency: Achroma, Anomalous: true}
)

var modeNames = []struct {
	name string
	mode Mode
}{
	{"normal", Normal},
	{"protanopia", Protanopia},
	{"protanomaly", Protanomaly},
	{"deuteranopia", Deuteranopia},
	{"deuteranomaly", Deuteranomaly},
	{"tritanopia", Tritanopia},
	{"tritanomaly", Tritanomaly},
	{"achromatopsia", Achromatopsia},
	{"achromatomaly", Achromatomaly},
}

// Short names accepted by ParseMode for the full deficiencies.
var modeAliases = map[string]Mode{
	"none":    Normal,
	"protan":  Protanopia,
	"deutan":  Deuteranopia,
	"tritan":  Tritanopia,
	"achroma": Achromatopsia,
}

// String returns the mode's canonical name, e.g. "deuteranomaly".
func (m Mode) String() string {
	for _, n := range modeNames {
		if n.mode == m {
			return n.name
		}
	}
	// Anomalous "none" has no name of its own and behaves as normal.
	if m.Deficiency == None {
		return "normal"
	}
	return fmt.Sprintf("Mode(%s, anomalous=%t)", m.Deficiency, m.Anomalous)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMode parses a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, n := range modeNames {
		if n.name == key {
			return n.mode, nil
		}
	}
	if m, ok := modeAliases[key]; ok {
		return m, nil
	}
	return Mode{}, fmt.Errorf("unknown colour vision mode %q (valid: %s)", s, strings.Join(ModeNames(), ", "))
}

// Modes returns every named mode, starting with Normal.
func Modes() []Mode {
	out := make([]Mode, len(modeNames))
	for i, n := range modeNames {
		out[i] = n.mode
	}
	return out
}

// ModeNames returns the canonical mode names in the order of Modes.
func ModeNames() []string {
	out := make([]string, len(modeNames))
	for i, n := range modeNames {
		out[i] = n.name
	}
	return out
}
