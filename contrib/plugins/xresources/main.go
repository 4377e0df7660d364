// xresources - Scheming exporter plugin for X resources
//
// Writes a scheme as X resource colour definitions (color0, color1, ...)
// that can be merged with xrdb. It speaks the go-plugin protocol, so the host
// keeps one process for every export in a run.
//
// Build:
//   go build -o xresources .
//
// Usage:
//   scheming export --plugin ./xresources -n 16 -o ~/.config/xresources
//   scheming export --plugin ./xresources --plugin-args '{"prefix":"URxvt"}'
//
// License: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jmylchreest/scheming/pkg/plugin"
)

const defaultPrefix = "*"

// Exporter renders schemes as X resources.
type Exporter struct{}

// Export returns a single "scheme.Xresources" file.
func (Exporter) Export(_ context.Context, data plugin.SchemeData) (map[string][]byte, error) {
	if len(data.Colours) == 0 {
		return nil, fmt.Errorf("scheme has no colours")
	}

	prefix := defaultPrefix
	if v, ok := data.PluginArgs["prefix"]; ok {
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("prefix must be a non-empty string")
		}
		prefix = s
	}

	var b strings.Builder
	b.WriteString("! Generated by scheming\n")
	if data.Mode != "" {
		fmt.Fprintf(&b, "! Colours as seen with %s\n", data.Mode)
	}
	for _, c := range data.Colours {
		hex := c.Hex
		if data.Mode != "" && c.Simulated != "" {
			hex = c.Simulated
		}
		fmt.Fprintf(&b, "%s.color%d: %s\n", prefix, c.Index, hex)
	}
	return map[string][]byte{"scheme.Xresources": []byte(b.String())}, nil
}

// GetMetadata describes the plugin.
func (Exporter) GetMetadata() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:            "xresources",
		Version:         "0.1.0",
		ProtocolVersion: plugin.ProtocolVersion,
		Description:     "X resource colour definitions for xrdb",
		PluginProtocol:  string(plugin.PluginTypeGoPlugin),
		Extension:       "Xresources",
	}
}

// GetFlagHelp lists the plugin arguments.
func (Exporter) GetFlagHelp() []plugin.FlagHelp {
	return []plugin.FlagHelp{{
		Name:        "prefix",
		Type:        "string",
		Default:     defaultPrefix,
		Description: "resource class or instance the colours apply to",
	}}
}

func main() {
	// The host detects the protocol from --plugin-info before starting RPC.
	if len(os.Args) > 1 && os.Args[1] == "--plugin-info" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(Exporter{}.GetMetadata()); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding plugin info: %v\n", err)
			os.Exit(1)
		}
		return
	}

	plugin.Serve(Exporter{})
}
