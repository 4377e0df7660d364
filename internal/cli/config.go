package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/scheming/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	var (
		flags schemeFlags
		save  string
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or save the effective configuration",
		Long: `Print the configuration a run would use once the config file, SCHEMING_*
environment variables and any generation flags given here are layered over
the defaults.

Examples:
  scheming config
  scheming config --preset colourblind-friendly -n 6 --save ./scheming.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := flags.apply(cmd.Flags(), a.cfg)
			if _, err := cfg.Params(); err != nil {
				return err
			}

			if save != "" {
				if err := config.Save(save, cfg); err != nil {
					return err
				}
				a.logger.Info("saved config", "path", save)
				return nil
			}

			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&save, "save", "", "write the configuration to this file instead of stdout")
	return cmd
}
