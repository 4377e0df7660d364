// Package executor runs exporter plugins regardless of their underlying
// protocol (go-plugin RPC or JSON-stdio).
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/scheming/internal/plugin/protocol"
	"github.com/jmylchreest/scheming/pkg/plugin"
)

// DefaultInfoTimeout bounds the --plugin-info query.
const DefaultInfoTimeout = 5 * time.Second

// PluginExecutor drives one exporter plugin binary.
type PluginExecutor struct {
	path         string
	info         plugin.PluginInfo
	protocolType plugin.PluginType
	logger       hclog.Logger
	runner       ProcessRunner
	infoTimeout  time.Duration

	client    *goplugin.Client
	rpcClient *plugin.ExporterPluginRPCClient
}

// Option configures a PluginExecutor.
type Option func(*PluginExecutor)

// WithLogger sets the logger handed to go-plugin and used for diagnostics.
func WithLogger(logger hclog.Logger) Option {
	return func(e *PluginExecutor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRunner replaces the process runner used for detection and JSON-stdio plugins.
func WithRunner(runner ProcessRunner) Option {
	return func(e *PluginExecutor) {
		if runner != nil {
			e.runner = runner
		}
	}
}

// WithInfoTimeout overrides DefaultInfoTimeout.
func WithInfoTimeout(d time.Duration) Option {
	return func(e *PluginExecutor) {
		if d > 0 {
			e.infoTimeout = d
		}
	}
}

// New queries the plugin for its metadata and protocol.
func New(ctx context.Context, pluginPath string, opts ...Option) (*PluginExecutor, error) {
	e := &PluginExecutor{
		path:        pluginPath,
		logger:      hclog.NewNullLogger(),
		runner:      NewRealProcessRunner(),
		infoTimeout: DefaultInfoTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("plugin").With("path", pluginPath)

	info, err := e.detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to detect plugin protocol: %w", err)
	}
	e.info = info

	switch info.PluginProtocol {
	case string(plugin.PluginTypeGoPlugin):
		e.protocolType = plugin.PluginTypeGoPlugin
	case string(plugin.PluginTypeJSON), "":
		// Empty defaults to json-stdio.
		e.protocolType = plugin.PluginTypeJSON
	default:
		return nil, fmt.Errorf("unknown plugin_protocol: %s", info.PluginProtocol)
	}

	if info.ProtocolVersion != "" {
		if err := protocol.Check(info.ProtocolVersion); err != nil {
			return nil, err
		}
	}

	e.logger.Debug("plugin detected", "name", info.Name, "version", info.Version, "protocol", e.protocolType)
	return e, nil
}

// Info returns the metadata reported by --plugin-info.
func (e *PluginExecutor) Info() plugin.PluginInfo {
	return e.info
}

// Protocol returns the detected communication protocol.
func (e *PluginExecutor) Protocol() plugin.PluginType {
	return e.protocolType
}

// Name returns the plugin name, falling back to the binary name.
func (e *PluginExecutor) Name() string {
	if e.info.Name != "" {
		return e.info.Name
	}
	return strings.TrimSuffix(filepath.Base(e.path), filepath.Ext(e.path))
}

// Export hands the scheme to the plugin and returns the files it produced.
func (e *PluginExecutor) Export(ctx context.Context, scheme plugin.SchemeData) (map[string][]byte, error) {
	if e.protocolType == plugin.PluginTypeGoPlugin {
		return e.exportGoPlugin(ctx, scheme)
	}
	return e.exportJSON(ctx, scheme)
}

// FlagHelp returns the plugin's argument help. JSON-stdio plugins carry none.
func (e *PluginExecutor) FlagHelp(ctx context.Context) ([]plugin.FlagHelp, error) {
	if e.protocolType != plugin.PluginTypeGoPlugin {
		return nil, nil
	}
	client, err := e.exporterClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.GetFlagHelp(), nil
}

// Close kills the plugin process if one is running.
func (e *PluginExecutor) Close() {
	if e.client != nil {
		e.client.Kill()
		e.client = nil
		e.rpcClient = nil
	}
}

func (e *PluginExecutor) detect(ctx context.Context) (plugin.PluginInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, e.infoTimeout)
	defer cancel()

	var info plugin.PluginInfo
	stdout, stderr, err := e.runner.Run(ctx, e.path, []string{"--plugin-info"}, nil)
	if err != nil {
		return info, fmt.Errorf("failed to query plugin: %w%s", err, stderrSuffix(stderr))
	}
	if err := json.Unmarshal(bytes.TrimSpace(stdout), &info); err != nil {
		return info, fmt.Errorf("failed to parse plugin info: %w", err)
	}
	return info, nil
}

func (e *PluginExecutor) exporterClient(_ context.Context) (*plugin.ExporterPluginRPCClient, error) {
	if e.rpcClient != nil {
		return e.rpcClient, nil
	}

	e.client = goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig:  plugin.Handshake,
		Plugins:          plugin.PluginMap(nil),
		Cmd:              exec.Command(e.path),
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
		Logger:           e.logger,
	})

	rpcClient, err := e.client.Client()
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to get RPC client: %w", err)
	}

	raw, err := rpcClient.Dispense(plugin.ExporterPluginName)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}

	client, ok := raw.(*plugin.ExporterPluginRPCClient)
	if !ok {
		e.Close()
		return nil, fmt.Errorf("unexpected plugin client type %T", raw)
	}
	e.rpcClient = client
	return client, nil
}

func (e *PluginExecutor) exportGoPlugin(ctx context.Context, scheme plugin.SchemeData) (map[string][]byte, error) {
	client, err := e.exporterClient(ctx)
	if err != nil {
		return nil, err
	}
	files, err := client.Export(ctx, scheme)
	if err != nil {
		return nil, fmt.Errorf("plugin %s export failed: %w", e.Name(), err)
	}
	return files, nil
}

func (e *PluginExecutor) exportJSON(ctx context.Context, scheme plugin.SchemeData) (map[string][]byte, error) {
	payload, err := json.Marshal(scheme)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scheme: %w", err)
	}

	stdout, stderr, err := e.runner.Run(ctx, e.path, nil, bytes.NewReader(payload))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(ctx.Err(), context.Canceled) {
			return nil, fmt.Errorf("plugin %s: %w", e.Name(), ctx.Err())
		}
		return nil, fmt.Errorf("plugin execution failed: %w%s", err, stderrSuffix(stderr))
	}
	if len(stderr) > 0 {
		e.logger.Debug("plugin stderr", "output", string(stderr))
	}

	files := make(map[string][]byte)
	if len(stdout) > 0 {
		files[e.outputName()] = stdout
	}
	return files, nil
}

// outputName names the single file a JSON-stdio plugin produces.
func (e *PluginExecutor) outputName() string {
	ext := strings.TrimPrefix(e.info.Extension, ".")
	if ext == "" {
		ext = "txt"
	}
	return e.Name() + "." + ext
}

func stderrSuffix(stderr []byte) string {
	s := strings.TrimSpace(string(stderr))
	if s == "" {
		return ""
	}
	return "\nStderr: " + s
}
