package apiApp

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/langowen/cotizaya/deploy/config"
	"github.com/langowen/cotizaya/internal/api_service/adapter/storage/postgres"
	"github.com/langowen/cotizaya/internal/api_service/adapter/storage/redis"
	"github.com/langowen/cotizaya/internal/api_service/ports/http/public"
	"github.com/langowen/cotizaya/internal/api_service/service"

	redisPack "github.com/redis/go-redis/v9"
)

type ApiApp struct {
	cfg *config.Config
}

func NewApiApp(cfg *config.Config) *ApiApp {
	return &ApiApp{cfg: cfg}
}

// Start brings the API up and returns a channel closed once the server and
// its storages have shut down after ctx is canceled.
func (a *ApiApp) Start(ctx context.Context) <-chan struct{} {
	a.initLogger()
	slog.Info("Logger initialized")

	slog.With("http", a.cfg.HTTPServer).Info("starting server")

	pgStorage := a.initDatabase(ctx)
	slog.Info("Storage initialized")

	rdStorage := a.initRedis(ctx)
	slog.Info("Redis client initialized")

	apiService := a.initService(pgStorage, rdStorage)
	slog.Info("Service initialized")

	serverDone := public.StartServer(ctx, apiService, a.cfg)
	slog.Info("server started", "port", a.cfg.HTTPServer.Port)

	done := make(chan struct{})
	go func() {
		<-serverDone

		pgStorage.Close()
		if err := rdStorage.Close(); err != nil {
			slog.Error("Failed to close redis", "error", err)
		}

		close(done)
	}()

	return done
}

func (a *ApiApp) initLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: false,
	}))
	slog.SetDefault(logger)
}

func (a *ApiApp) initDatabase(ctx context.Context) *postgres.Storage {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		a.cfg.Storage.Host,
		a.cfg.Storage.Port,
		a.cfg.Storage.User,
		a.cfg.Storage.Password,
		a.cfg.Storage.DBName,
		a.cfg.Storage.SSLMode,
		a.cfg.Storage.Schema,
	)

	pgStorage, err := postgres.InitStorage(ctx, dsn)
	if err != nil {
		log.Fatalln("Failed to initialize PostgresSQL storage", "error", err)
	}

	return pgStorage
}

func (a *ApiApp) initRedis(ctx context.Context) *redis.Storage {
	options := &redisPack.Options{
		Addr:     a.cfg.Redis.Host,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	}

	rdStorage, err := redis.InitStorage(ctx, options)
	if err != nil {
		log.Fatalln("Failed to initialize Redis storage", "error", err)
	}

	return rdStorage
}

func (a *ApiApp) initService(storage *postgres.Storage, redis *redis.Storage) *service.Service {
	apiService, err := service.NewService(storage, redis, a.cfg)
	if err != nil {
		log.Fatalln("Failed to initialize service", "error", err)
	}

	return apiService
}
