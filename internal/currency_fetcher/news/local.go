package news

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/langowen/cotizaya/internal/entities"
	"github.com/pkg/errors"
)

const defaultSource = "CotizaYa"

// LocalIndex reads the curated headline list from a file or an http(s) URL.
type LocalIndex struct {
	location string
	client   *http.Client
	timeout  time.Duration
	now      func() time.Time
}

func NewLocalIndex(location string, timeout time.Duration) *LocalIndex {
	return &LocalIndex{
		location: location,
		client:   &http.Client{},
		timeout:  timeout,
		now:      time.Now,
	}
}

type localItem struct {
	Title  string `json:"title"`
	Link   string `json:"link"`
	URL    string `json:"url"`
	Source string `json:"source"`
	Date   string `json:"date"`
}

// Load returns the curated items. Entries without a title or link are dropped.
// A missing date counts as now; an unparseable one is left zero so the item
// sorts after everything dated.
func (l *LocalIndex) Load(ctx context.Context) ([]entities.NewsItem, error) {
	const op = "news.LocalIndex.Load"

	if l.location == "" {
		return nil, nil
	}

	data, err := l.read(ctx)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	var raw []localItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(entities.ErrParse, "%s: %v", op, err)
	}

	now := l.now()
	items := make([]entities.NewsItem, 0, len(raw))
	for _, r := range raw {
		link := strings.TrimSpace(r.Link)
		if link == "" {
			link = strings.TrimSpace(r.URL)
		}
		title := strings.TrimSpace(r.Title)
		if title == "" || link == "" {
			continue
		}

		source := strings.TrimSpace(r.Source)
		if source == "" {
			source = defaultSource
		}

		var published time.Time
		if strings.TrimSpace(r.Date) == "" {
			published = now
		} else if t, ok := ParseDate(r.Date); ok {
			published = t
		}

		items = append(items, entities.NewsItem{
			Title:       title,
			Link:        link,
			Source:      source,
			PublishedAt: published,
		})
	}

	return items, nil
}

func (l *LocalIndex) read(ctx context.Context) ([]byte, error) {
	if !strings.HasPrefix(l.location, "http://") && !strings.HasPrefix(l.location, "https://") {
		return os.ReadFile(l.location)
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.location, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(entities.ErrNetwork, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(entities.ErrNetwork, "bad status: %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
}

// ParseDate accepts the date shapes seen in curated indexes and feeds.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
