package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/reusedev/autowriter-client/internal/modules/logs"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		logs.Logger.Error().Err(err).Msg("autowriter failed")
		cancel()
		os.Exit(1)
	}
}
