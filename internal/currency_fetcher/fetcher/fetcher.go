package fetcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/langowen/cotizaya/deploy/config"
	"github.com/langowen/cotizaya/internal/delta"
	"github.com/langowen/cotizaya/internal/entities"
	"github.com/langowen/cotizaya/internal/metrics"
	"github.com/pkg/errors"
)

type Fetcher struct {
	rates   *RateAggregator
	crypto  *CryptoCache
	news    NewsSource
	storage Storage
	redis   RedisStorage
	config  *config.Config
	now     func() time.Time

	// mu serializes refresh cycles; previous is only touched while it is held.
	mu       sync.Mutex
	previous *entities.RateSnapshot
}

func NewFetcher(rates *RateAggregator, crypto *CryptoCache, news NewsSource, storage Storage, redis RedisStorage, cfg *config.Config) *Fetcher {
	return &Fetcher{
		rates:   rates,
		crypto:  crypto,
		news:    news,
		storage: storage,
		redis:   redis,
		config:  cfg,
		now:     time.Now,
	}
}

func (f *Fetcher) StartFetcher(ctx context.Context) error {
	const op = "fetcher.StartFetcher"

	ticker := time.NewTicker(f.config.Fetcher.TimeTickers)
	defer ticker.Stop()

	go f.listenRefresh(ctx)

	f.refreshAndLog(ctx, "startup")

	for {
		select {
		case <-ticker.C:
			f.refreshAndLog(ctx, "timer")

		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), op)
		}
	}
}

func (f *Fetcher) listenRefresh(ctx context.Context) {
	const op = "fetcher.listenRefresh"

	for {
		select {
		case <-ctx.Done():
			slog.Info("refresh listener stopped", "op", op)
			return
		default:
		}

		requester, err := f.redis.ListenRefresh(ctx)
		if err != nil {
			if errors.Is(err, entities.ErrRedisCanceled) {
				return
			}
			slog.Error(op, "error", err)

			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		f.refreshAndLog(ctx, requester)
	}
}

func (f *Fetcher) refreshAndLog(ctx context.Context, trigger string) {
	board, err := f.Refresh(ctx)
	if err != nil {
		if errors.Is(err, entities.ErrRefreshInFlight) {
			slog.Debug("refresh dropped, one is already running", "trigger", trigger)
			return
		}
		slog.Error("refresh failed", "trigger", trigger, "error", err)
		return
	}

	slog.Info("rates refreshed", "trigger", trigger, "fallback", board.Snapshot.Fallback)
}

// Refresh runs one cycle: fetch, format against the previous snapshot,
// persist and announce. A call made while another cycle is running is dropped
// with ErrRefreshInFlight. Storage failures are logged; the board is still
// returned.
func (f *Fetcher) Refresh(ctx context.Context) (*entities.Board, error) {
	const op = "fetcher.Refresh"

	if !f.mu.TryLock() {
		metrics.RefreshDropped.Inc()
		return nil, errors.Wrap(entities.ErrRefreshInFlight, op)
	}
	defer f.mu.Unlock()

	start := f.now()

	snapshot := f.rates.Refresh(ctx)
	snapshot.Crypto = f.cryptoPrices(ctx)
	snapshot.FetchedAt = f.now().UTC()

	board := delta.BuildBoard(snapshot, f.previous)
	f.previous = snapshot

	if err := f.storage.SaveSnapshot(ctx, snapshot); err != nil {
		slog.Error("failed to save snapshot history", "op", op, "error", err)
	}

	if err := f.redis.SaveBoard(ctx, &board); err != nil {
		slog.Error("failed to save board", "op", op, "error", err)
	}

	if f.news != nil {
		// The whole merged list is stored; News.Limit only applies on read.
		items := f.news.Refresh(ctx, 0)
		metrics.NewsItems.Set(float64(len(items)))

		if err := f.redis.SaveNews(ctx, items, newsTTL(f.config)); err != nil {
			slog.Error("failed to save news", "op", op, "error", err)
		}
	}

	if err := f.redis.PublishUpd(ctx, snapshot.FetchedAt); err != nil {
		slog.Error("failed to publish update", "op", op, "error", err)
	}

	metrics.RefreshCounter.Inc()
	metrics.RefreshLatency.Observe(f.now().Sub(start).Seconds())

	return &board, nil
}

// cryptoPrices keeps the previous cycle's prices when the price API fails.
func (f *Fetcher) cryptoPrices(ctx context.Context) map[string]entities.CryptoPrice {
	const op = "fetcher.cryptoPrices"

	if f.crypto == nil {
		return nil
	}

	prices, err := f.crypto.Prices(ctx)
	if err != nil {
		metrics.SourceFailures.WithLabelValues("crypto").Inc()
		slog.Warn("crypto prices unavailable, keeping previous", "op", op, "error", err)
		if f.previous != nil {
			return f.previous.Crypto
		}
		return nil
	}

	return prices
}

// newsTTL keeps a stored list alive for a few refresh intervals.
func newsTTL(cfg *config.Config) time.Duration {
	ttl := 3 * cfg.Fetcher.TimeTickers
	if cfg.News.CacheTTL > ttl {
		ttl = cfg.News.CacheTTL
	}
	return ttl
}
