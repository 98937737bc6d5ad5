package fetcher

import (
	"context"
	"log/slog"
	"strings"

	"github.com/langowen/cotizaya/deploy/config"
	"github.com/langowen/cotizaya/internal/entities"
	"github.com/langowen/cotizaya/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// Source is one quote endpoint. For cross sources the endpoint publishes how
// many units of the foreign currency one USD buys.
type Source struct {
	Currency entities.Currency
	URL      string
}

// CrossBase is the direct quote whose sell side prices one USD in ARS.
const CrossBase = entities.UsdOficial

func DirectSources(cfg config.Fetcher) []Source {
	base := strings.TrimRight(cfg.DolarURL, "/")
	return []Source{
		{Currency: entities.UsdOficial, URL: base + "/dolares/oficial"},
		{Currency: entities.UsdBlue, URL: base + "/dolares/blue"},
		{Currency: entities.UsdMep, URL: base + "/dolares/bolsa"},
		{Currency: entities.Eur, URL: base + "/cotizaciones/eur"},
		{Currency: entities.Brl, URL: base + "/cotizaciones/brl"},
		{Currency: entities.Uyu, URL: base + "/cotizaciones/uyu"},
	}
}

func CrossSources(cfg config.Fetcher) []Source {
	return []Source{
		{Currency: entities.MxnArs, URL: strings.TrimRight(cfg.MexicoURL, "/") + "/cotizaciones/usd"},
		{Currency: entities.PygArs, URL: strings.TrimRight(cfg.ParaguayURL, "/") + "/cotizaciones/usd"},
	}
}

type RateAggregator struct {
	client   QuoteClient
	direct   []Source
	cross    []Source
	defaults Defaults
}

func NewRateAggregator(client QuoteClient, direct, cross []Source, defaults Defaults) *RateAggregator {
	return &RateAggregator{
		client:   client,
		direct:   direct,
		cross:    cross,
		defaults: defaults,
	}
}

// Refresh requests every source concurrently and waits for all of them. A
// failing source never affects its siblings; whatever could not be fetched or
// derived is taken from the static defaults. The returned snapshot has no
// crypto prices and no timestamp; the caller completes it.
func (a *RateAggregator) Refresh(ctx context.Context) *entities.RateSnapshot {
	sources := make([]Source, 0, len(a.direct)+len(a.cross))
	sources = append(sources, a.direct...)
	sources = append(sources, a.cross...)

	quotes := a.fetchAll(ctx, sources)
	directQuotes, crossQuotes := quotes[:len(a.direct)], quotes[len(a.direct):]

	snapshot := &entities.RateSnapshot{
		Quotes: make(map[entities.Currency]entities.RateQuote, len(a.direct)),
		Cross:  make(map[entities.Currency]float64, len(a.cross)),
	}

	for i, src := range a.direct {
		if q := directQuotes[i]; q != nil && !q.Empty() {
			snapshot.Quotes[src.Currency] = q.RateQuote
		}
	}

	var usdInArs *float64
	if q, ok := snapshot.Quotes[CrossBase]; ok {
		usdInArs = q.Sell
	}

	for i, src := range a.cross {
		var usdInForeign *float64
		if q := crossQuotes[i]; q != nil {
			usdInForeign = q.FixOrSell()
		}
		if v, ok := CrossRate(usdInArs, usdInForeign); ok {
			snapshot.Cross[src.Currency] = v
		}
	}

	a.applyDefaults(snapshot)

	return snapshot
}

// CrossRate is ARS per one foreign unit, given ARS per USD and foreign units
// per USD. It is defined only when both are present and positive.
func CrossRate(usdInArs, usdInForeign *float64) (float64, bool) {
	if usdInArs == nil || usdInForeign == nil || *usdInArs <= 0 || *usdInForeign <= 0 {
		return 0, false
	}
	return *usdInArs / *usdInForeign, true
}

func (a *RateAggregator) fetchAll(ctx context.Context, sources []Source) []*entities.SourceQuote {
	const op = "fetcher.fetchAll"

	results := make([]*entities.SourceQuote, len(sources))

	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			q, err := a.client.FetchQuote(ctx, src.URL)
			if err != nil {
				metrics.SourceFailures.WithLabelValues(string(src.Currency)).Inc()
				slog.Warn("quote source failed", "op", op, "currency", src.Currency, "url", src.URL, "error", err)
				return nil
			}
			results[i] = q
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (a *RateAggregator) applyDefaults(snapshot *entities.RateSnapshot) {
	for _, src := range a.direct {
		if _, ok := snapshot.Quotes[src.Currency]; ok {
			continue
		}
		if def, ok := a.defaults.Quotes[src.Currency]; ok {
			snapshot.Quotes[src.Currency] = def
			snapshot.Fallback = append(snapshot.Fallback, src.Currency)
			metrics.FallbackUsed.WithLabelValues(string(src.Currency)).Inc()
		}
	}

	for _, src := range a.cross {
		if _, ok := snapshot.Cross[src.Currency]; ok {
			continue
		}
		if def, ok := a.defaults.Cross[src.Currency]; ok {
			snapshot.Cross[src.Currency] = def
			snapshot.Fallback = append(snapshot.Fallback, src.Currency)
			metrics.FallbackUsed.WithLabelValues(string(src.Currency)).Inc()
		}
	}
}
