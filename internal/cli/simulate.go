package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/scheming/internal/colour"
	"github.com/jmylchreest/scheming/internal/dichromacy"
)

func newSimulateCmd(a *app) *cobra.Command {
	var (
		preview bool
		plain   bool
	)

	cmd := &cobra.Command{
		Use:   "simulate MODE COLOUR...",
		Short: "Show colours as seen with a colour vision deficiency",
		Long: fmt.Sprintf(`Show how colours appear with a colour vision deficiency.

Colours are hex values such as "#ff8800" or "f80". Modes:
  %s

Use "all" as the mode to compare every mode at once.`, strings.Join(dichromacy.ModeNames(), ", ")),
		Example: `  scheming simulate deuteranopia '#ff0000' '#00aa00'
  scheming simulate all ff0000`,
		Args: cobra.MinimumNArgs(2),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return append(dichromacy.ModeNames(), "all"), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			modes, err := parseModes(args[0])
			if err != nil {
				return err
			}

			inputs := make([]colour.RGB, 0, len(args)-1)
			for _, s := range args[1:] {
				rgb, err := colour.ParseHex(s)
				if err != nil {
					return err
				}
				inputs = append(inputs, rgb)
			}

			if plain {
				return writeSimulatedPlain(cmd, a, inputs, modes)
			}
			preview = preview || colour.SupportsANSIColours()
			return writeSimulatedTable(cmd, a, inputs, modes, preview)
		},
	}

	cmd.Flags().BoolVar(&preview, "preview", false, "show colour swatches (auto on a terminal)")
	cmd.Flags().BoolVar(&plain, "plain", false, "print only simulated hex values, one per line")
	return cmd
}

func parseModes(s string) ([]dichromacy.Mode, error) {
	if strings.EqualFold(s, "all") {
		return dichromacy.Modes(), nil
	}
	m, err := dichromacy.ParseMode(s)
	if err != nil {
		return nil, err
	}
	return []dichromacy.Mode{m}, nil
}

// simulate projects one colour, falling back to the input when the
// projection is degenerate.
func simulate(a *app, rgb colour.RGB, mode dichromacy.Mode) colour.RGB {
	out, err := dichromacy.AsThough(rgb, mode)
	if err != nil {
		var perr *dichromacy.ProjectionError
		if errors.As(err, &perr) {
			a.logger.Warn("colour could not be simulated", "colour", rgb.Hex(), "mode", mode.String(), "error", perr.Err)
		}
		return rgb
	}
	return out
}

func writeSimulatedPlain(cmd *cobra.Command, a *app, inputs []colour.RGB, modes []dichromacy.Mode) error {
	w := cmd.OutOrStdout()
	for _, mode := range modes {
		for _, rgb := range inputs {
			if _, err := fmt.Fprintln(w, simulate(a, rgb, mode).Hex()); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSimulatedTable(cmd *cobra.Command, a *app, inputs []colour.RGB, modes []dichromacy.Mode, preview bool) error {
	headers := []string{"Colour"}
	for _, m := range modes {
		headers = append(headers, m.String())
	}
	table := NewTable(headers...)

	cell := func(c colour.RGB) string {
		if preview {
			return colour.FormatColourWithPreview(c, 4)
		}
		return c.Hex()
	}
	for _, rgb := range inputs {
		row := []string{cell(rgb)}
		for _, mode := range modes {
			row = append(row, cell(simulate(a, rgb, mode)))
		}
		table.AddRow(row...)
	}

	_, err := table.WriteTo(cmd.OutOrStdout())
	return err
}
