package plugin

// SchemeData is the colour scheme sent to exporter plugins.
type SchemeData struct {
	Colours []SchemeColour `json:"colours"`
	// Mode is the colour vision mode Simulated values were produced under.
	Mode       string         `json:"mode,omitempty"`
	Limits     LimitsData     `json:"limits"`
	PluginArgs map[string]any `json:"plugin_args,omitempty"`
}

// SchemeColour represents one colour of a scheme for RPC transfer.
type SchemeColour struct {
	Index     int        `json:"index"`
	Hex       string     `json:"hex"`
	RGB       RGBColour  `json:"rgb"`
	Lab       [3]float64 `json:"lab"`
	Simulated string     `json:"simulated,omitempty"`
}

// RGBColour represents an RGB color.
type RGBColour struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// LimitsData carries the generation limits, hue in degrees.
type LimitsData struct {
	Hue    [2]float64 `json:"hue"`
	Chroma [2]float64 `json:"chroma"`
	Light  [2]float64 `json:"light"`
}
