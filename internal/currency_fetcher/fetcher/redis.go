package fetcher

import (
	"context"
	"time"

	"github.com/langowen/cotizaya/internal/entities"
)

type RedisStorage interface {
	SaveBoard(ctx context.Context, board *entities.Board) error
	SaveNews(ctx context.Context, items []entities.NewsItem, ttl time.Duration) error
	PublishUpd(ctx context.Context, fetchedAt time.Time) error
	ListenRefresh(ctx context.Context) (string, error)
}
