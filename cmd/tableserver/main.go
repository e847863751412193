package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tablecli/internal/app"
)

func main() {
	application, err := app.NewApplication()
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		application.Logger.Error("application exited with error", "error", err)
		os.Exit(1)
	}
}
