package fetcher

import (
	"context"

	"github.com/langowen/cotizaya/internal/entities"
)

type QuoteClient interface {
	FetchQuote(ctx context.Context, url string) (*entities.SourceQuote, error)
}

type CryptoClient interface {
	FetchPrices(ctx context.Context, ids []string) (map[string]entities.CryptoPrice, error)
}

type NewsSource interface {
	Refresh(ctx context.Context, limit int) []entities.NewsItem
}
