// Scheming - perceptually distinct colour scheme generator
//
// Scheming spreads colours as far apart as possible in CIELab within limits
// on hue, chroma and lightness, and exports them for plots and terminals.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/jmylchreest/scheming/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
