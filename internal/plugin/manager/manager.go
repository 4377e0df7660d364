// Package manager keeps the set of exporters available to the CLI: the
// built-in text formats plus any external plugins named in configuration.
package manager

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/scheming/internal/export"
	"github.com/jmylchreest/scheming/internal/plugin/executor"
	"github.com/jmylchreest/scheming/pkg/plugin"
)

// Exporter turns a scheme into one or more files.
type Exporter interface {
	Name() string
	Description() string
	Export(ctx context.Context, p export.Payload) (map[string][]byte, error)
}

// Config holds exporter configuration.
type Config struct {
	// Plugins maps an exporter name to a plugin executable.
	Plugins map[string]string

	// DisabledPlugins lists exporter names to hide. "all" hides every
	// external plugin. Built-in formats are never disabled.
	DisabledPlugins []string
}

// Builder provides a fluent interface for constructing a Manager.
type Builder struct {
	config Config
	useEnv bool
	logger hclog.Logger
	opts   []executor.Option
}

// NewBuilder creates a new Manager builder with default settings.
func NewBuilder() *Builder {
	return &Builder{logger: hclog.NewNullLogger()}
}

// WithConfig sets the configuration for the manager.
func (b *Builder) WithConfig(config Config) *Builder {
	b.config = config
	return b
}

// WithEnvConfig reads SCHEMING_PLUGINS ("name=path,...") and
// SCHEMING_DISABLED_PLUGINS ("name,...") at Build time. Env entries are
// merged over the explicit configuration.
func (b *Builder) WithEnvConfig() *Builder {
	b.useEnv = true
	return b
}

// WithLogger sets the logger handed to plugin executors.
func (b *Builder) WithLogger(logger hclog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// WithExecutorOptions passes extra options to every plugin executor.
func (b *Builder) WithExecutorOptions(opts ...executor.Option) *Builder {
	b.opts = append(b.opts, opts...)
	return b
}

// Build constructs the Manager. Plugins are not started until used.
func (b *Builder) Build() (*Manager, error) {
	config := Config{
		Plugins:         maps.Clone(b.config.Plugins),
		DisabledPlugins: slices.Clone(b.config.DisabledPlugins),
	}
	if config.Plugins == nil {
		config.Plugins = make(map[string]string)
	}

	if b.useEnv {
		if env := os.Getenv("SCHEMING_PLUGINS"); env != "" {
			plugins, err := ParsePluginMap(env)
			if err != nil {
				return nil, fmt.Errorf("SCHEMING_PLUGINS: %w", err)
			}
			maps.Copy(config.Plugins, plugins)
		}
		if disabled := os.Getenv("SCHEMING_DISABLED_PLUGINS"); disabled != "" {
			config.DisabledPlugins = append(config.DisabledPlugins, parsePluginList(disabled)...)
		}
	}

	m := &Manager{
		config:    config,
		exporters: make(map[string]Exporter),
		logger:    b.logger,
		opts:      b.opts,
	}
	for _, f := range export.Formats() {
		m.exporters[string(f)] = builtinExporter{format: f}
	}
	for name, path := range config.Plugins {
		if _, clash := m.exporters[name]; clash {
			return nil, fmt.Errorf("plugin %q shadows a built-in format", name)
		}
		m.exporters[name] = &ExternalExporter{name: name, path: path, logger: b.logger, opts: b.opts}
	}
	return m, nil
}

// Manager resolves exporter names.
type Manager struct {
	config    Config
	exporters map[string]Exporter
	logger    hclog.Logger
	opts      []executor.Option
}

// Get returns the named exporter if it exists and is enabled.
func (m *Manager) Get(name string) (Exporter, bool) {
	e, ok := m.exporters[name]
	if !ok {
		e, ok = m.exporters[strings.ToLower(name)]
	}
	if !ok || !m.IsEnabled(e) {
		return nil, false
	}
	return e, true
}

// IsEnabled reports whether e may be used.
func (m *Manager) IsEnabled(e Exporter) bool {
	if _, builtin := e.(builtinExporter); builtin {
		return true
	}
	for _, disabled := range m.config.DisabledPlugins {
		if disabled == "all" || disabled == e.Name() {
			return false
		}
	}
	return true
}

// List returns the names of all enabled exporters, sorted.
func (m *Manager) List() []string {
	names := make([]string, 0, len(m.exporters))
	for name, e := range m.exporters {
		if m.IsEnabled(e) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Register adds an external plugin at runtime, e.g. from a --plugin flag.
// The exporter is named after the binary unless name is set.
func (m *Manager) Register(name, path string) (Exporter, error) {
	if name == "" {
		name = pluginName(path)
	}
	if e, ok := m.exporters[name]; ok {
		if _, builtin := e.(builtinExporter); builtin {
			return nil, fmt.Errorf("plugin %q shadows a built-in format", name)
		}
	}
	e := &ExternalExporter{name: name, path: path, logger: m.logger, opts: m.opts}
	m.exporters[name] = e
	m.config.Plugins[name] = path
	return e, nil
}

type builtinExporter struct {
	format export.Format
}

func (b builtinExporter) Name() string { return string(b.format) }

func (b builtinExporter) Description() string {
	switch b.format {
	case export.FormatHex:
		return "one #rrggbb per line"
	case export.FormatRGB:
		return "one (r, g, b) per line"
	case export.FormatGnuplot:
		return "gnuplot line style directives"
	case export.FormatPython:
		return "Python list of hex strings"
	default:
		return "JSON document with every colour representation"
	}
}

func (b builtinExporter) Export(_ context.Context, p export.Payload) (map[string][]byte, error) {
	out, err := export.Render(b.format, p)
	if err != nil {
		return nil, err
	}
	return map[string][]byte{"scheme." + b.format.Extension(): out}, nil
}

// ExternalExporter wraps an external executable as an exporter. The
// process is started on each Export and stopped afterwards.
type ExternalExporter struct {
	name   string
	path   string
	logger hclog.Logger
	opts   []executor.Option
}

// Name returns the exporter name.
func (p *ExternalExporter) Name() string { return p.name }

// Path returns the plugin executable.
func (p *ExternalExporter) Path() string { return p.path }

// Description returns the path, since querying the plugin means running it.
func (p *ExternalExporter) Description() string {
	return "external plugin " + p.path
}

// Export runs the plugin on the payload.
func (p *ExternalExporter) Export(ctx context.Context, payload export.Payload) (map[string][]byte, error) {
	ex, err := p.start(ctx)
	if err != nil {
		return nil, err
	}
	defer ex.Close()

	files, err := ex.Export(ctx, payload.SchemeData())
	if err != nil {
		return nil, err
	}
	p.logger.Debug("plugin export complete", "plugin", p.name, "files", len(files))
	return files, nil
}

// FlagHelp asks the plugin which arguments it accepts.
func (p *ExternalExporter) FlagHelp(ctx context.Context) ([]plugin.FlagHelp, error) {
	ex, err := p.start(ctx)
	if err != nil {
		return nil, err
	}
	defer ex.Close()

	help, err := ex.FlagHelp(ctx)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", p.name, err)
	}
	return help, nil
}

func (p *ExternalExporter) start(ctx context.Context) (*executor.PluginExecutor, error) {
	opts := append([]executor.Option{executor.WithLogger(p.logger)}, p.opts...)
	ex, err := executor.New(ctx, p.path, opts...)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", p.name, err)
	}
	info := ex.Info()
	p.logger.Debug("starting plugin", "plugin", p.name, "protocol", ex.Protocol(),
		"version", info.Version, "protocol_version", info.ProtocolVersion)
	return ex, nil
}

// ParsePluginMap parses "name=path" pairs separated by commas.
func ParsePluginMap(s string) (map[string]string, error) {
	out := make(map[string]string)
	for _, part := range parsePluginList(s) {
		name, path, ok := strings.Cut(part, "=")
		name, path = strings.TrimSpace(name), strings.TrimSpace(path)
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("invalid plugin entry %q (want name=path)", part)
		}
		out[name] = path
	}
	return out, nil
}

// parsePluginList parses a comma-separated list of plugin names.
func parsePluginList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func pluginName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
