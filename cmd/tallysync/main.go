package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/tallysync/backend/internal/interfaces/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(cli.DefaultEnv()).ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrTransportFailure) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
