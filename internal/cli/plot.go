package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/scheming/internal/compression"
	"github.com/jmylchreest/scheming/internal/dataset"
	"github.com/jmylchreest/scheming/internal/export"
)

type plotOptions struct {
	scheme    schemeFlags
	output    string
	dataOut   string
	separator string
	title     string
	terminal  string
	image     string
}

func newPlotCmd(a *app) *cobra.Command {
	opts := &plotOptions{}

	cmd := &cobra.Command{
		Use:   "plot DATAFILE",
		Short: "Write a gnuplot script that draws a data file with a new scheme",
		Long: `Read a numeric data file and write a gnuplot script that draws every series
with its own colour from a freshly generated scheme.

The first column is the x axis unless the file has only one column. CSV, TSV
and whitespace separated files are supported, optionally compressed with gzip,
bzip2 or xz. Compressed files are decompressed next to the script because
gnuplot cannot read them.

By default the scheme has one colour per series; use -n to choose another
count, in which case styles repeat.

Examples:
  scheming plot results.csv -o results.gp && gnuplot -p results.gp
  scheming plot runs.tsv.xz --terminal pngcairo --image runs.png -o runs.gp`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPlot(cmd, args[0], opts)
		},
	}

	opts.scheme.register(cmd.Flags())
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the script to this file instead of stdout")
	cmd.Flags().StringVar(&opts.dataOut, "data-out", "", "where to decompress a compressed data file (default: beside the input)")
	cmd.Flags().StringVar(&opts.separator, "separator", "", `field separator: ",", "tab" or "space" (default: from the file extension)`)
	cmd.Flags().StringVar(&opts.title, "title", "", "plot title")
	cmd.Flags().StringVar(&opts.terminal, "terminal", "", "gnuplot terminal for image output, e.g. pngcairo")
	cmd.Flags().StringVar(&opts.image, "image", "", "image file written by --terminal")
	cmd.MarkFlagsRequiredTogether("terminal", "image")
	return cmd
}

func parseSeparator(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "tab", `\t`:
		return '\t', nil
	case "space", "whitespace", " ":
		return dataset.Whitespace, nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("separator must be a single character, tab or space, got %q", s)
	}
	return r[0], nil
}

func (a *app) runPlot(cmd *cobra.Command, path string, opts *plotOptions) error {
	loader := &dataset.Loader{Logger: a.logger.Named("dataset")}
	if opts.separator != "" {
		sep, err := parseSeparator(opts.separator)
		if err != nil {
			return err
		}
		loader.Separator = &sep
	}

	data, err := loader.Load(path)
	if err != nil {
		return err
	}

	dataFile, sep := path, data.Separator
	if data.Compression != compression.None {
		dataFile = opts.dataOut
		if dataFile == "" {
			dataFile = plainDataPath(path)
		}
		sep = '\t'
		if err := writeDataFile(dataFile, data); err != nil {
			return err
		}
		a.logger.Info("decompressed data for gnuplot", "path", dataFile)
	}

	if !cmd.Flags().Changed("colours") {
		series := max(len(data.Columns)-1, 1)
		if err := cmd.Flags().Set("colours", fmt.Sprint(series)); err != nil {
			return err
		}
	}

	g, err := a.build(cmd.Context(), cmd, &opts.scheme)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("failed to create script file: %w", err)
		}
		defer f.Close()
		w = f
	}

	rgbs := g.scheme.RGB()
	if g.simulated {
		rgbs, _ = g.scheme.Simulate(g.mode)
	}

	spec := export.PlotSpec{
		DataFile:  dataFile,
		Columns:   data.Columns,
		Separator: sep,
		Title:     opts.title,
		Terminal:  opts.terminal,
		Output:    opts.image,
	}
	if err := export.WritePlotScript(w, spec, rgbs); err != nil {
		return err
	}
	if opts.output != "" {
		a.logger.Info("wrote gnuplot script", "path", opts.output, "series", len(data.Columns)-1)
	}
	return nil
}

// plainDataPath names the decompressed copy of a compressed data file.
func plainDataPath(path string) string {
	base := compression.TrimExt(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".plot.tsv"
}

func writeDataFile(path string, data *dataset.Dataset) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create data file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return data.Write(f, '\t')
}
