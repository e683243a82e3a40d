package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spencerj41/droidmark-cli/cmd"
	"github.com/spencerj41/droidmark-cli/internal/observability"
)

func main() {
	// Interrupt signals cancel the context so in-flight episodes finish
	// scoring what they have and runs shut down cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	observability.Sync()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
