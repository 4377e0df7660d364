// Package cli provides the command-line interface for scheming.
package cli

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/scheming/internal/colour"
	"github.com/jmylchreest/scheming/internal/config"
	"github.com/jmylchreest/scheming/internal/plugin/manager"
	"github.com/jmylchreest/scheming/internal/version"
)

// app is the state shared by every subcommand of one root command.
type app struct {
	verbose    bool
	quiet      bool
	noColour   bool
	configPath string

	logger    hclog.Logger
	cfg       config.Config
	exporters *manager.Manager
}

// NewRootCmd builds the scheming command tree.
func NewRootCmd() *cobra.Command {
	a := &app{logger: hclog.NewNullLogger(), cfg: config.Default()}

	cmd := &cobra.Command{
		Use:   "scheming",
		Short: "Generate perceptually distinct colour schemes",
		Long: `Scheming builds colour schemes whose colours are as far apart as possible
in CIELab, within limits on hue, chroma and lightness.

Points repel each other inside a cube that is then mapped onto the Lab
bounding box of the chosen limits, so every run spreads the colours evenly
over what the limits allow. Schemes can be checked against colour vision
deficiencies and exported for gnuplot, Python, terminals and plugins.`,
		Version:           version.Short(),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "suppress non-error output")
	cmd.PersistentFlags().BoolVar(&a.noColour, "no-colour", false, "never draw colour swatches (also set by NO_COLOR)")
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./"+config.FileName+" or the user config dir)")

	cmd.SetVersionTemplate(version.String() + "\n")

	cmd.AddCommand(
		newGenerateCmd(a),
		newSimulateCmd(a),
		newExportCmd(a),
		newPlotCmd(a),
		newPresetsCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// setup builds the logger, configuration and exporter registry before any
// subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.logger = newLogger(cmd.ErrOrStderr(), a.verbose, a.quiet)
	colour.DisableColourOutput = a.noColour

	cfg, used, err := config.NewBuilder().WithFile(a.configPath).WithEnvConfig().Build()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if used != "" {
		a.logger.Debug("loaded config file", "path", used)
	}
	a.cfg = cfg

	a.exporters, err = manager.NewBuilder().
		WithConfig(cfg.Manager()).
		WithEnvConfig().
		WithLogger(a.logger).
		Build()
	if err != nil {
		return fmt.Errorf("failed to configure exporters: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}
