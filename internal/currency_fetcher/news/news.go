// Package news merges the curated headline index with optional remote feeds.
package news

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/langowen/cotizaya/deploy/config"
	"github.com/langowen/cotizaya/internal/entities"
	"github.com/langowen/cotizaya/internal/metrics"
	"github.com/marstr/collection/v2"
	"github.com/mmcdole/gofeed"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type FeedClient interface {
	FetchText(ctx context.Context, url string) (string, error)
}

type LocalSource interface {
	Load(ctx context.Context) ([]entities.NewsItem, error)
}

type cachedFeed struct {
	items     []entities.NewsItem
	fetchedAt time.Time
}

type Aggregator struct {
	local   LocalSource
	client  FeedClient
	feeds   []config.FeedSource
	ttl     time.Duration
	perFeed int
	now     func() time.Time

	mu    sync.Mutex
	cache *collection.LRUCache[string, cachedFeed]
}

func NewAggregator(local LocalSource, client FeedClient, feeds []config.FeedSource, ttl time.Duration, perFeed int) *Aggregator {
	capacity := uint(len(feeds))
	if capacity == 0 {
		capacity = 1
	}

	return &Aggregator{
		local:   local,
		client:  client,
		feeds:   feeds,
		ttl:     ttl,
		perFeed: perFeed,
		now:     time.Now,
		cache:   collection.NewLRUCache[string, cachedFeed](capacity),
	}
}

// Refresh returns at most limit headlines (all when limit <= 0): curated items
// first, then remote ones, deduplicated by link and sorted newest first. The
// curated index is re-read on every call; a feed fetched within the freshness
// window is served from cache. Failures only shrink the result.
func (a *Aggregator) Refresh(ctx context.Context, limit int) []entities.NewsItem {
	const op = "news.Aggregator.Refresh"

	var all []entities.NewsItem

	if a.local != nil {
		local, err := a.local.Load(ctx)
		if err != nil {
			slog.Warn("local news index unavailable", "op", op, "error", err)
		}
		all = append(all, local...)
	}

	for _, items := range a.remote(ctx) {
		all = append(all, items...)
	}

	merged := DedupAndSort(all)
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}

	return merged
}

// remote returns each feed's items in configuration order.
func (a *Aggregator) remote(ctx context.Context) [][]entities.NewsItem {
	const op = "news.Aggregator.remote"

	if a.client == nil || len(a.feeds) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	results := make([][]entities.NewsItem, len(a.feeds))

	var g errgroup.Group
	var fetched sync.Map

	for i, feed := range a.feeds {
		if entry, ok := a.cache.Get(feed.URL); ok && now.Sub(entry.fetchedAt) < a.ttl {
			results[i] = entry.items
			continue
		}

		g.Go(func() error {
			items, err := a.fetchFeed(ctx, feed)
			if err != nil {
				metrics.FeedFailures.WithLabelValues(feed.Name).Inc()
				slog.Warn("news feed failed", "op", op, "feed", feed.Name, "error", err)
			}
			results[i] = items
			fetched.Store(feed.URL, items)
			return nil
		})
	}
	_ = g.Wait()

	// Failed feeds are cached empty too, so they are retried after the window.
	fetched.Range(func(key, value any) bool {
		items, _ := value.([]entities.NewsItem)
		a.cache.Put(key.(string), cachedFeed{items: items, fetchedAt: now})
		return true
	})

	return results
}

func (a *Aggregator) fetchFeed(ctx context.Context, feed config.FeedSource) ([]entities.NewsItem, error) {
	const op = "news.Aggregator.fetchFeed"

	body, err := a.client.FetchText(ctx, feed.URL)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	items, err := ParseFeed(body, feed.Name, a.perFeed, a.now())
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return items, nil
}

// ParseFeed reads an RSS 2.0 or Atom document. Items missing a title or link
// are skipped; an item without a date is stamped with now. For Atom the update
// time wins over the publication time.
func ParseFeed(body, source string, max int, now time.Time) ([]entities.NewsItem, error) {
	const op = "news.ParseFeed"

	feed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, errors.Wrapf(entities.ErrParse, "%s: %v", op, err)
	}

	raw := feed.Items
	if max > 0 && len(raw) > max {
		raw = raw[:max]
	}

	items := make([]entities.NewsItem, 0, len(raw))
	for _, it := range raw {
		title := strings.TrimSpace(it.Title)
		link := strings.TrimSpace(it.Link)
		if link == "" && len(it.Links) > 0 {
			link = strings.TrimSpace(it.Links[0])
		}
		if title == "" || link == "" {
			continue
		}

		items = append(items, entities.NewsItem{
			Title:       title,
			Link:        link,
			Source:      source,
			PublishedAt: itemTime(it, feed.FeedType, now),
		})
	}

	return items, nil
}

func itemTime(it *gofeed.Item, feedType string, now time.Time) time.Time {
	first, second := it.PublishedParsed, it.UpdatedParsed
	if feedType == "atom" {
		first, second = second, first
	}
	switch {
	case first != nil:
		return *first
	case second != nil:
		return *second
	default:
		return now
	}
}

// DedupAndSort keeps the first item per link and orders the rest newest first.
// Items with equal timestamps keep their relative order.
func DedupAndSort(items []entities.NewsItem) []entities.NewsItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]entities.NewsItem, 0, len(items))

	for _, it := range items {
		if it.Link == "" {
			continue
		}
		if _, dup := seen[it.Link]; dup {
			continue
		}
		seen[it.Link] = struct{}{}
		out = append(out, it)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})

	return out
}
