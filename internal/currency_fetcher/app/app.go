package fetcherApp

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/langowen/cotizaya/deploy/config"
	"github.com/langowen/cotizaya/internal/currency_fetcher/adapter/api_client/coin_gecko"
	"github.com/langowen/cotizaya/internal/currency_fetcher/adapter/api_client/dolar_api"
	"github.com/langowen/cotizaya/internal/currency_fetcher/adapter/api_client/feed"
	"github.com/langowen/cotizaya/internal/currency_fetcher/adapter/storage/postgres"
	"github.com/langowen/cotizaya/internal/currency_fetcher/adapter/storage/redis"
	"github.com/langowen/cotizaya/internal/currency_fetcher/fetcher"
	"github.com/langowen/cotizaya/internal/currency_fetcher/news"
	"github.com/pkg/errors"

	redisPack "github.com/redis/go-redis/v9"
)

type FetcherApp struct {
	cfg *config.Config
}

func NewFetcherApp(cfg *config.Config) *FetcherApp {
	return &FetcherApp{cfg: cfg}
}

// Start runs the refresh loop until ctx is canceled.
func (a *FetcherApp) Start(ctx context.Context) error {
	a.initLogger()
	slog.Info("Logger initialized")

	slog.With("fetcher", a.cfg.Fetcher, "news_feeds", a.cfg.News.Feeds).Info("starting application")

	pgStorage := a.initDatabase(ctx)
	defer pgStorage.Close()
	slog.Info("Storage initialized")

	rdStorage := a.initRedis(ctx)
	defer rdStorage.Close()
	slog.Info("Redis client initialized")

	rates := a.initRates()
	crypto := a.initCrypto()
	newsAgg := a.initNews()
	slog.Info("HTTP clients initialized")

	fetch := fetcher.NewFetcher(rates, crypto, newsAgg, pgStorage, rdStorage, a.cfg)

	if err := fetch.StartFetcher(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Failed to fetcher", "error", err)
		return err
	}

	return nil
}

func (a *FetcherApp) initLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: false,
	}))
	slog.SetDefault(logger)
}

func (a *FetcherApp) initDatabase(ctx context.Context) *postgres.Storage {
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

func (a *FetcherApp) initRedis(ctx context.Context) *redis.Storage {
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

func (a *FetcherApp) initRates() *fetcher.RateAggregator {
	client := dolar_api.NewHTTPClient(a.cfg.Fetcher.Timeout)

	return fetcher.NewRateAggregator(
		client,
		fetcher.DirectSources(a.cfg.Fetcher),
		fetcher.CrossSources(a.cfg.Fetcher),
		fetcher.StaticDefaults(),
	)
}

func (a *FetcherApp) initCrypto() *fetcher.CryptoCache {
	client := coin_gecko.NewHTTPClient(a.cfg.Fetcher.CryptoURL, a.cfg.Fetcher.Timeout)

	return fetcher.NewCryptoCache(client, a.cfg.Fetcher.CryptoCache)
}

func (a *FetcherApp) initNews() *news.Aggregator {
	cfg := a.cfg.News

	client := feed.NewHTTPClient(
		feed.Direct(cfg.DirectWait),
		feed.Proxy(cfg.ProxyURL, cfg.ProxyWait),
		feed.Reader(cfg.ReaderURL, cfg.ReaderWait),
	)

	local := news.NewLocalIndex(cfg.LocalIndex, a.cfg.Fetcher.Timeout)

	return news.NewAggregator(local, client, cfg.FeedSources(), cfg.CacheTTL, cfg.ItemsPerFeed)
}
