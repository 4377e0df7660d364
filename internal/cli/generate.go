package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/scheming/internal/colour"
	"github.com/jmylchreest/scheming/internal/export"
)

const formatTable = "table"

type generateOptions struct {
	scheme  schemeFlags
	format  string
	output  string
	preview bool
}

func newGenerateCmd(a *app) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a colour scheme",
		Long: `Generate a colour scheme of perceptually distinct colours.

Examples:
  # Ten colours over the whole gamut
  scheming generate

  # Five warm, fairly saturated colours, reproducibly
  scheming generate -n 5 --hue 0:90 --chroma 40:80 --seed 7

  # Colours that stay distinct for most colour vision deficiencies
  scheming generate --preset colourblind-friendly --simulate deuteranopia --preview

  # gnuplot line styles
  scheming generate -n 6 --format gnuplot -o styles.gp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runGenerate(cmd, opts)
		},
	}

	opts.scheme.register(cmd.Flags())
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: table, "+formatList())
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "show colour swatches in the table (auto on a terminal)")
	return cmd
}

func formatList() string {
	names := make([]string, 0, len(export.Formats()))
	for _, f := range export.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

func (a *app) runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	g, err := a.build(cmd.Context(), cmd, &opts.scheme)
	if err != nil {
		return err
	}

	format := opts.format
	if format == "" {
		format = g.cfg.Format
	}
	if format == "" {
		format = formatTable
	}

	w := cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	var simulated []colour.RGB
	if g.simulated {
		// Unprojectable colours come back unchanged and are logged by Simulate.
		simulated, _ = g.scheme.Simulate(g.mode)
	}

	if format == formatTable {
		preview := opts.preview || (opts.output == "" && colour.SupportsANSIColours())
		return writeSchemeTable(w, g, simulated, preview)
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	if g.simulated && f != export.FormatJSON {
		// Line formats carry the colours as they would be seen.
		err = export.Write(w, f, simulated)
	} else {
		err = writeRendered(w, f, g, simulated)
	}
	if err != nil {
		return err
	}

	if opts.output != "" {
		a.logger.Info("wrote scheme", "path", opts.output, "format", f)
	}
	return nil
}

func writeRendered(w io.Writer, f export.Format, g *generated, simulated []colour.RGB) error {
	limits := g.scheme.Limits()
	out, err := export.Render(f, export.Payload{
		Colours:   g.scheme.Colours(),
		Limits:    &limits,
		Mode:      modeName(g),
		Simulated: simulated,
	})
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("failed to write %s output: %w", f, err)
	}
	return nil
}

func modeName(g *generated) string {
	if !g.simulated {
		return ""
	}
	return g.mode.String()
}

// writeSchemeTable prints one row per colour with every representation.
func writeSchemeTable(w io.Writer, g *generated, simulated []colour.RGB, preview bool) error {
	headers := []string{"#"}
	if preview {
		headers = append(headers, "Swatch")
	}
	headers = append(headers, "Hex", "RGB", "L", "a", "b")
	if simulated != nil {
		headers = append(headers, g.mode.String())
	}

	table := NewTable(headers...)
	for i, c := range g.scheme.Colours() {
		row := []string{fmt.Sprint(i + 1)}
		if preview {
			row = append(row, colour.ColourPreviewWithText(c.RGB(), fmt.Sprint(i+1), 6))
		}
		lab := c.Lab()
		row = append(row,
			c.Hex(),
			c.RGB().Tuple(),
			fmt.Sprintf("%.2f", lab.L),
			fmt.Sprintf("%.2f", lab.A),
			fmt.Sprintf("%.2f", lab.B),
		)
		if simulated != nil {
			sim := simulated[i].Hex()
			if preview {
				sim = colour.FormatColourWithPreview(simulated[i], 6)
			}
			row = append(row, sim)
		}
		table.AddRow(row...)
	}

	if _, err := table.WriteTo(w); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s, minimum ΔE00 %.2f\n", g.scheme.Limits(), g.scheme.MinDeltaE())
	return err
}
