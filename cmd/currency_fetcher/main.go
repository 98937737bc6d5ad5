package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/langowen/cotizaya/deploy/config"
	fetcherApp "github.com/langowen/cotizaya/internal/currency_fetcher/app"
)

func main() {
	cfg := config.NewConfig()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := fetcherApp.NewFetcherApp(cfg)

	if err := app.Start(ctx); err != nil {
		log.Fatalln("Fetcher stopped with error", "error", err)
	}

	slog.Info("fetcher stopped")
}
