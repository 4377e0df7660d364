package cli

import (
	"io"

	"github.com/hashicorp/go-hclog"
)

// newLogger returns the single logger handed to every package.
func newLogger(w io.Writer, verbose, quiet bool) hclog.Logger {
	level := hclog.Info
	switch {
	case quiet:
		level = hclog.Error
	case verbose:
		level = hclog.Debug
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:        "scheming",
		Level:       level,
		Output:      w,
		DisableTime: !verbose,
	})
}
