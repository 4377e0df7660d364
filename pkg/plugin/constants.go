package plugin

import (
	"github.com/hashicorp/go-plugin"
)

const (
	// ProtocolVersion defines the current plugin API version.
	// Format: MAJOR.MINOR.PATCH.
	// - Increment MAJOR for breaking changes (incompatible API changes).
	// - Increment MINOR for backward-compatible additions.
	// - Increment PATCH for backward-compatible bug fixes.
	ProtocolVersion = "0.1.0"

	// ExporterPluginName is the key exporters are dispensed under.
	ExporterPluginName = "exporter"
)

// Handshake is the handshake configuration for go-plugin protocol.
// This ensures that plugins using go-plugin can only connect to compatible hosts.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  0, // Major version from ProtocolVersion
	MagicCookieKey:   "SCHEMING_PLUGIN",
	MagicCookieValue: "scheming_colour_scheme",
}

// PluginType defines the type of plugin communication protocol.
type PluginType string

const (
	// PluginTypeGoPlugin indicates the plugin uses HashiCorp go-plugin RPC protocol.
	PluginTypeGoPlugin PluginType = "go-plugin"

	// PluginTypeJSON indicates the plugin reads a scheme as JSON on stdin and
	// writes its export to stdout.
	PluginTypeJSON PluginType = "json-stdio"
)

// PluginMap returns the plugin set served and consumed by scheming.
func PluginMap(impl ExporterPlugin) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		ExporterPluginName: &ExporterPluginRPC{Impl: impl},
	}
}

// Serve runs impl as a go-plugin exporter. It is called from an external
// plugin's main and blocks until the host disconnects.
func Serve(impl ExporterPlugin) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins:         PluginMap(impl),
	})
}
