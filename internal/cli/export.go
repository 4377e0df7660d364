package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/scheming/internal/colour"
	"github.com/jmylchreest/scheming/internal/export"
	"github.com/jmylchreest/scheming/internal/plugin/manager"
	"github.com/jmylchreest/scheming/internal/security"
)

type exportOptions struct {
	scheme     schemeFlags
	format     string
	outputDir  string
	swatch     string
	plugin     string
	pluginArgs string
	list       bool
}

func newExportCmd(a *app) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a scheme through a format, swatch sheet or plugin",
		Long: `Generate a scheme and hand it to an exporter.

Exporters are the built-in formats plus any external plugins configured in the
config file, named in SCHEMING_PLUGINS ("name=path,...") or given with --plugin.
Without --output-dir the exported files are written to stdout.

Examples:
  scheming export --format python -n 8
  scheming export --swatch scheme.png --preset colourblind-friendly
  scheming export --plugin ./kitty-theme --plugin-args '{"opacity":0.9}' -o ~/.config/kitty
  scheming export --list
  scheming export --plugin ./kitty-theme --list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runExport(cmd, opts)
		},
	}

	opts.scheme.register(cmd.Flags())
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "exporter name (see --list)")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "directory to write exported files to")
	cmd.Flags().StringVar(&opts.swatch, "swatch", "", "also write a PNG swatch sheet to this file")
	cmd.Flags().StringVar(&opts.plugin, "plugin", "", "run this plugin executable as the exporter")
	cmd.Flags().StringVar(&opts.pluginArgs, "plugin-args", "", "JSON object passed to the plugin")
	cmd.Flags().BoolVar(&opts.list, "list", false, "list available exporters, or the arguments of --plugin, and exit")
	return cmd
}

func (a *app) runExport(cmd *cobra.Command, opts *exportOptions) error {
	if opts.list {
		if opts.plugin != "" {
			return a.writePluginHelp(cmd, opts.plugin)
		}
		return writeExporterList(cmd, a.exporters)
	}

	exporter, err := a.resolveExporter(opts)
	if err != nil {
		return err
	}

	var args map[string]any
	if opts.pluginArgs != "" {
		if err := json.Unmarshal([]byte(opts.pluginArgs), &args); err != nil {
			return fmt.Errorf("invalid --plugin-args: %w", err)
		}
	}

	g, err := a.build(cmd.Context(), cmd, &opts.scheme)
	if err != nil {
		return err
	}

	limits := g.scheme.Limits()
	payload := export.Payload{
		Colours: g.scheme.Colours(),
		Limits:  &limits,
		Args:    args,
	}
	if g.simulated {
		payload.Mode = g.mode.String()
		payload.Simulated, _ = g.scheme.Simulate(g.mode)
	}

	if exporter != nil {
		files, err := exporter.Export(cmd.Context(), payload)
		if err != nil {
			return fmt.Errorf("export with %s failed: %w", exporter.Name(), err)
		}
		if err := a.writeFiles(cmd, opts.outputDir, files); err != nil {
			return err
		}
	}

	if opts.swatch != "" {
		if err := writeSwatchFile(opts.swatch, g.scheme.RGB()); err != nil {
			return err
		}
		a.logger.Info("wrote swatch sheet", "path", opts.swatch)
	}
	return nil
}

// resolveExporter picks the exporter for this run. It returns nil when only
// a swatch sheet was requested.
func (a *app) resolveExporter(opts *exportOptions) (manager.Exporter, error) {
	if opts.plugin != "" {
		if opts.format != "" {
			return nil, fmt.Errorf("--plugin and --format are mutually exclusive")
		}
		if err := security.ValidatePluginPath(opts.plugin); err != nil {
			return nil, err
		}
		return a.exporters.Register("", opts.plugin)
	}

	name := opts.format
	if name == "" {
		if opts.swatch != "" {
			return nil, nil
		}
		name = a.cfg.Format
		if name == "" || name == formatTable {
			name = string(export.FormatHex)
		}
	}

	e, ok := a.exporters.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown or disabled exporter %q (available: %s)", name, strings.Join(a.exporters.List(), ", "))
	}
	return e, nil
}

// writeFiles writes exported files to dir, or concatenates them to stdout.
func (a *app) writeFiles(cmd *cobra.Command, dir string, files map[string][]byte) error {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)

	if dir == "" {
		for _, name := range names {
			if _, err := cmd.OutOrStdout().Write(files[name]); err != nil {
				return err
			}
		}
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, name := range names {
		// Plugins choose file names; keep them inside dir.
		if err := security.ValidateFilePath(name, dir); err != nil {
			return err
		}
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", name, err)
		}
		if err := os.WriteFile(path, files[name], 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		a.logger.Info("wrote file", "path", path, "bytes", len(files[name]))
	}
	return nil
}

func writeSwatchFile(path string, rgbs []colour.RGB) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create swatch file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return export.WriteSwatch(f, rgbs, export.DefaultSwatchOptions())
}

func writeExporterList(cmd *cobra.Command, m *manager.Manager) error {
	table := NewTable("Name", "Description")
	table.SetColumnMaxWidth(1, 60)
	for _, name := range m.List() {
		e, _ := m.Get(name)
		table.AddRow(name, e.Description())
	}
	_, err := table.WriteTo(cmd.OutOrStdout())
	return err
}

// writePluginHelp lists the arguments a plugin accepts in --plugin-args.
func (a *app) writePluginHelp(cmd *cobra.Command, path string) error {
	if err := security.ValidatePluginPath(path); err != nil {
		return err
	}
	e, err := a.exporters.Register("", path)
	if err != nil {
		return err
	}
	ext, ok := e.(*manager.ExternalExporter)
	if !ok {
		return fmt.Errorf("%s is not an external plugin", e.Name())
	}

	help, err := ext.FlagHelp(cmd.Context())
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if len(help) == 0 {
		_, err := fmt.Fprintf(w, "plugin %s takes no arguments\n", e.Name())
		return err
	}

	table := NewTable("Argument", "Type", "Default", "Required", "Description")
	table.SetColumnMaxWidth(4, 50)
	for _, h := range help {
		required := ""
		if h.Required {
			required = "yes"
		}
		table.AddRow(h.Name, h.Type, h.Default, required, h.Description)
	}
	_, err = table.WriteTo(w)
	return err
}
