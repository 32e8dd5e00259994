package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/accel_ball/internal/app"
	"github.com/relabs-tech/accel_ball/internal/logging"
)

func main() {
	logger := logging.Must("info", "")
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunMockConsole(ctx, logger); err != nil {
		logger.Errorf("fatal: %v", err)
		os.Exit(1)
	}
}
