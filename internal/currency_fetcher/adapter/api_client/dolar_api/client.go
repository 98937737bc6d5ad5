package dolar_api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/langowen/cotizaya/internal/entities"
	"github.com/langowen/cotizaya/internal/numeric"
	"github.com/pkg/errors"
)

// quote is the subset of a dolarapi.com quotation we read. Buy/sell come as
// "compra"/"venta"; country endpoints may add a single fixed rate "fix".
type quote struct {
	Compra numeric.Flexible `json:"compra"`
	Venta  numeric.Flexible `json:"venta"`
	Fix    numeric.Flexible `json:"fix"`
}

// sourceQuote keeps only finite, positive values.
func (q quote) sourceQuote() *entities.SourceQuote {
	return &entities.SourceQuote{
		RateQuote: entities.RateQuote{
			Buy:  q.Compra.Positive(),
			Sell: q.Venta.Positive(),
		},
		Fix: q.Fix.Positive(),
	}
}

type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

func NewHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{},
		timeout: timeout,
	}
}

func (c *HTTPClient) FetchQuote(ctx context.Context, url string) (*entities.SourceQuote, error) {
	const op = "dolar_api.FetchQuote"

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

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

	var q quote
	if err := json.Unmarshal(body, &q); err != nil {
		return nil, errors.Wrapf(entities.ErrParse, "%s: %v", op, err)
	}

	return q.sourceQuote(), nil
}
