package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/langowen/cotizaya/deploy/config"
	apiApp "github.com/langowen/cotizaya/internal/api_service/app"
)

func main() {
	cfg := config.NewConfig()

	ctx, cancel := context.WithCancel(context.Background())

	app := apiApp.NewApiApp(cfg)
	serverDone := app.Start(ctx)

	done := make(chan os.Signal, 1)

	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-done
	slog.Info("Gracefully shutting down")

	cancel()
	slog.Info("stopping server")

	<-serverDone
	slog.Info("server stopped")
}
