package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tonedial/calltone-backend/internal/app"
	"github.com/tonedial/calltone-backend/internal/observability"
)

func main() {
	ctx := context.Background()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	shutdownTracing, err := observability.InitTracing(ctx, a.Log, app.ServiceName)
	if err != nil {
		a.Log.Fatal("Failed to init tracing", "error", err)
	}
	defer func() {
		if err := shutdownTracing(ctx); err != nil {
			a.Log.Warn("Tracer shutdown failed", "error", err)
		}
	}()

	if err := a.Seed(ctx); err != nil {
		a.Log.Fatal("Failed to seed call tone pool", "error", err)
	}

	a.Log.Info("Starting server", "port", a.Cfg.Port)
	if err := a.Run(); err != nil {
		a.Log.Fatal("Server exited", "error", err)
	}
}
