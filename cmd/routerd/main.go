package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/your-org/docrouter/internal/app"
	"github.com/your-org/docrouter/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()
	a, err := app.Build(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "routerd failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = a.Close(context.Background()) }()

	if err := app.StartServer(ctx, cfg.Addr, a.Handler()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "routerd failed: %v\n", err)
		os.Exit(1)
	}
}
