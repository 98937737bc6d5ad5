package feed

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/langowen/cotizaya/internal/entities"
	"github.com/langowen/cotizaya/internal/metrics"
	"github.com/pkg/errors"
)

// Strategy is one way of reaching a feed: the target URL is rewritten and
// fetched within Timeout.
type Strategy struct {
	Name    string
	Timeout time.Duration
	Rewrite func(target string) string
}

func Direct(timeout time.Duration) Strategy {
	return Strategy{
		Name:    "direct",
		Timeout: timeout,
		Rewrite: func(target string) string { return target },
	}
}

// Proxy passes the escaped target as a query value, e.g. "https://api.allorigins.win/raw?url=".
func Proxy(prefix string, timeout time.Duration) Strategy {
	return Strategy{
		Name:    "proxy",
		Timeout: timeout,
		Rewrite: func(target string) string { return prefix + url.QueryEscape(target) },
	}
}

var schemeRe = regexp.MustCompile(`^https?://`)

// Reader appends the scheme-less target, e.g. "https://r.jina.ai/http://".
func Reader(prefix string, timeout time.Duration) Strategy {
	return Strategy{
		Name:    "reader",
		Timeout: timeout,
		Rewrite: func(target string) string { return prefix + schemeRe.ReplaceAllString(target, "") },
	}
}

// HTTPClient tries its strategies in order and returns the first body fetched.
type HTTPClient struct {
	client     *http.Client
	strategies []Strategy
}

func NewHTTPClient(strategies ...Strategy) *HTTPClient {
	return &HTTPClient{
		client:     &http.Client{},
		strategies: strategies,
	}
}

func (c *HTTPClient) FetchText(ctx context.Context, target string) (string, error) {
	const op = "feed.FetchText"

	lastErr := errors.Wrapf(entities.ErrNetwork, "%s: no strategies configured", op)

	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return "", errors.Wrap(err, op)
		}

		body, err := c.fetch(ctx, s, s.Rewrite(target))
		if err == nil {
			return body, nil
		}

		metrics.FeedStrategyFailures.WithLabelValues(s.Name).Inc()
		slog.Debug("feed strategy failed", "op", op, "strategy", s.Name, "url", target, "error", err)
		lastErr = errors.Wrapf(err, "%s: %s", op, s.Name)
	}

	return "", lastErr
}

func (c *HTTPClient) fetch(ctx context.Context, s Strategy, target string) (string, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.Wrap(entities.ErrNetwork, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Wrapf(entities.ErrNetwork, "bad status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(entities.ErrNetwork, err.Error())
	}

	return string(body), nil
}
