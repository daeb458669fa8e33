// Package main provides the vidscribe CLI entry point.
// vidscribe is the command-line client for the vidscribe video analysis service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vidscribe/vidscribe-cli/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cmd.NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
