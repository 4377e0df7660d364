package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/scheming/internal/gamut"
)

func newPresetsCmd(a *app) *cobra.Command {
	var bounds bool

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the named limit presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			headers := []string{"Name", "Hue (°)", "Chroma", "Light"}
			if bounds {
				headers = append(headers, "a", "b")
			}
			table := NewTable(headers...)

			for _, p := range gamut.Presets() {
				row := []string{
					p.Name,
					fmt.Sprintf("%g:%g", p.Hue[0], p.Hue[1]),
					fmt.Sprintf("%g:%g", p.Chroma[0], p.Chroma[1]),
					fmt.Sprintf("%g:%g", p.Light[0], p.Light[1]),
				}
				if bounds {
					limits, err := p.Limits()
					if err != nil {
						return fmt.Errorf("preset %s: %w", p.Name, err)
					}
					box := limits.Bounds()
					row = append(row,
						fmt.Sprintf("%.1f:%.1f", box.AMin, box.AMax),
						fmt.Sprintf("%.1f:%.1f", box.BMin, box.BMax))
				}
				table.AddRow(row...)
			}

			a.logger.Debug("listing presets", "default", gamut.DefaultPreset)
			_, err := table.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().BoolVar(&bounds, "bounds", false, "also show the Lab a/b bounding box of each preset")
	return cmd
}
