package plugin

import (
	"context"
)

// ExporterPlugin is the interface that exporter plugins must implement for go-plugin RPC.
type ExporterPlugin interface {
	// Export renders the scheme. The map is keyed by file name.
	Export(ctx context.Context, scheme SchemeData) (map[string][]byte, error)

	// GetMetadata returns plugin metadata.
	GetMetadata() PluginInfo

	// GetFlagHelp returns help information for plugin arguments.
	GetFlagHelp() []FlagHelp
}
