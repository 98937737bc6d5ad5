package coin_gecko

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/langowen/cotizaya/internal/entities"
	"github.com/langowen/cotizaya/internal/numeric"
	"github.com/pkg/errors"
)

type HTTPClient struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{},
		baseURL: baseURL,
		timeout: timeout,
	}
}

type price struct {
	ARS numeric.Flexible `json:"ars"`
	USD numeric.Flexible `json:"usd"`
}

// FetchPrices asks simple/price for the given coin ids against ARS and USD.
func (c *HTTPClient) FetchPrices(ctx context.Context, ids []string) (map[string]entities.CryptoPrice, error) {
	const op = "coin_gecko.FetchPrices"

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	q := u.Query()
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "ars,usd")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(entities.ErrNetwork, "%s: %v", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(entities.ErrNetwork, "%s: bad status: %s", op, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(entities.ErrNetwork, "%s: read body: %v", op, err)
	}

	var result map[string]price
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errors.Wrapf(entities.ErrParse, "%s: %v", op, err)
	}

	prices := make(map[string]entities.CryptoPrice, len(result))
	for id, p := range result {
		prices[id] = entities.CryptoPrice{ARS: p.ARS.Positive(), USD: p.USD.Positive()}
	}

	if len(prices) == 0 {
		return nil, errors.Wrapf(entities.ErrMissingData, "%s: empty response", op)
	}

	return prices, nil
}
