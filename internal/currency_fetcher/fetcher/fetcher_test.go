package fetcher

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/langowen/cotizaya/deploy/config"
	"github.com/langowen/cotizaya/internal/entities"
	"github.com/pkg/errors"
)

type fakeCrypto struct {
	mu     sync.Mutex
	prices map[string]entities.CryptoPrice
	err    error
	calls  int
}

func (f *fakeCrypto) FetchPrices(ctx context.Context, ids []string) (map[string]entities.CryptoPrice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.prices, nil
}

type fakeStorage struct {
	saved []*entities.RateSnapshot
	err   error
}

func (f *fakeStorage) SaveSnapshot(ctx context.Context, snapshot *entities.RateSnapshot) error {
	f.saved = append(f.saved, snapshot)
	return f.err
}

type fakeRedis struct {
	boards    []*entities.Board
	news      [][]entities.NewsItem
	published int
}

func (f *fakeRedis) SaveBoard(ctx context.Context, board *entities.Board) error {
	f.boards = append(f.boards, board)
	return nil
}

func (f *fakeRedis) SaveNews(ctx context.Context, items []entities.NewsItem, ttl time.Duration) error {
	f.news = append(f.news, items)
	return nil
}

func (f *fakeRedis) PublishUpd(ctx context.Context, fetchedAt time.Time) error {
	f.published++
	return nil
}

func (f *fakeRedis) ListenRefresh(ctx context.Context) (string, error) {
	<-ctx.Done()
	return "", entities.ErrRedisCanceled
}

type fakeNews struct{ items []entities.NewsItem }

func (f *fakeNews) Refresh(ctx context.Context, limit int) []entities.NewsItem {
	if limit > 0 && len(f.items) > limit {
		return f.items[:limit]
	}
	return f.items
}

func newTestFetcher(quotes *fakeQuotes, crypto *fakeCrypto) (*Fetcher, *fakeStorage, *fakeRedis) {
	direct, cross := testSources()
	cfg := &config.Config{
		Fetcher: config.Fetcher{TimeTickers: time.Minute},
		News:    config.News{Limit: 8, CacheTTL: 5 * time.Minute},
	}
	storage, redis := &fakeStorage{}, &fakeRedis{}
	cache := NewCryptoCache(crypto, 0)

	f := NewFetcher(
		NewRateAggregator(quotes, direct, cross, StaticDefaults()),
		cache,
		&fakeNews{items: []entities.NewsItem{{Title: "a", Link: "/a/"}}},
		storage,
		redis,
		cfg,
	)
	return f, storage, redis
}

func TestFetcher_RefreshUsesPreviousSnapshotAsBaseline(t *testing.T) {
	quotes := &fakeQuotes{quotes: allQuotes()}
	crypto := &fakeCrypto{prices: map[string]entities.CryptoPrice{
		entities.Bitcoin: {ARS: ptr(100), USD: ptr(100)},
	}}
	f, storage, redis := newTestFetcher(quotes, crypto)

	first, err := f.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range first.Rows {
		if r.Sell.Trend != entities.TrendNone {
			t.Errorf("first cycle row %s trend = %q; want none", r.Currency, r.Sell.Trend)
		}
	}

	updated := allQuotes()
	updated["http://ar/dolares/blue"] = quote(1200, 1375)
	quotes.mu.Lock()
	quotes.quotes = updated
	quotes.mu.Unlock()

	second, err := f.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	blue, _ := second.Row(entities.UsdBlue)
	if blue.Sell.Trend != entities.TrendUp || blue.Sell.Percent == nil || math.Abs(*blue.Sell.Percent-10) > 1e-9 {
		t.Errorf("blue sell = %+v; want up 10%%", blue.Sell)
	}
	oficial, _ := second.Row(entities.UsdOficial)
	if oficial.Sell.Trend != entities.TrendFlat {
		t.Errorf("oficial sell trend = %q; want flat", oficial.Sell.Trend)
	}

	if len(storage.saved) != 2 || len(redis.boards) != 2 || len(redis.news) != 2 || redis.published != 2 {
		t.Errorf("saved/boards/news/published = %d/%d/%d/%d; want 2 each",
			len(storage.saved), len(redis.boards), len(redis.news), redis.published)
	}
}

func TestFetcher_RefreshStoresWholeNewsList(t *testing.T) {
	f, _, redis := newTestFetcher(&fakeQuotes{quotes: allQuotes()}, &fakeCrypto{})

	items := make([]entities.NewsItem, 20)
	for i := range items {
		items[i] = entities.NewsItem{Title: fmt.Sprintf("n%d", i), Link: fmt.Sprintf("/n/%d", i)}
	}
	f.news = &fakeNews{items: items}

	if _, err := f.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(redis.news) != 1 || len(redis.news[0]) != len(items) {
		t.Errorf("stored %v lists; want one list of %d items", len(redis.news), len(items))
	}
}

func TestFetcher_RefreshDroppedWhileInFlight(t *testing.T) {
	f, _, redis := newTestFetcher(&fakeQuotes{quotes: allQuotes()}, &fakeCrypto{})

	f.mu.Lock()
	_, err := f.Refresh(context.Background())
	f.mu.Unlock()

	if !errors.Is(err, entities.ErrRefreshInFlight) {
		t.Fatalf("err = %v; want ErrRefreshInFlight", err)
	}
	if len(redis.boards) != 0 {
		t.Errorf("dropped refresh stored %d boards", len(redis.boards))
	}
}

func TestFetcher_CryptoFailureKeepsPreviousPrices(t *testing.T) {
	crypto := &fakeCrypto{prices: map[string]entities.CryptoPrice{
		entities.Bitcoin: {ARS: ptr(100), USD: ptr(70)},
	}}
	f, _, _ := newTestFetcher(&fakeQuotes{quotes: allQuotes()}, crypto)

	if _, err := f.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	crypto.mu.Lock()
	crypto.err = errors.Wrap(entities.ErrNetwork, "down")
	crypto.mu.Unlock()

	board, err := f.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	btc, ok := board.Snapshot.Coin(entities.Bitcoin)
	if !ok || btc.USD == nil || *btc.USD != 70 {
		t.Errorf("bitcoin = %+v; want previous prices kept", btc)
	}
}

func TestFetcher_StorageFailureIsNotFatal(t *testing.T) {
	f, storage, redis := newTestFetcher(&fakeQuotes{}, &fakeCrypto{})
	storage.err = errors.New("db down")

	board, err := f.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if board == nil || len(redis.boards) != 1 {
		t.Error("board should still be stored when history fails")
	}
}

func TestCryptoCache_ServesWithinTTL(t *testing.T) {
	crypto := &fakeCrypto{prices: map[string]entities.CryptoPrice{entities.Bitcoin: {USD: ptr(1)}}}
	cache := NewCryptoCache(crypto, time.Minute)

	now := time.Unix(1700000000, 0)
	cache.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if _, err := cache.Prices(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if crypto.calls != 1 {
		t.Errorf("calls = %d; want 1 within ttl", crypto.calls)
	}

	now = now.Add(time.Minute)
	if _, err := cache.Prices(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if crypto.calls != 2 {
		t.Errorf("calls = %d; want 2 after ttl", crypto.calls)
	}
}
