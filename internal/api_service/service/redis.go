package service

import (
	"context"
	"time"

	"github.com/langowen/cotizaya/internal/entities"
)

type RedisStorage interface {
	GetBoard(ctx context.Context) (*entities.Board, error)
	GetNews(ctx context.Context) ([]entities.NewsItem, error)

	GetBalances(ctx context.Context) (entities.Balance, error)
	SaveBalances(ctx context.Context, balance entities.Balance) error
	DeleteBalances(ctx context.Context) error

	GetBrief(ctx context.Context, date string) (*entities.Brief, error)
	SaveBrief(ctx context.Context, date string, brief *entities.Brief, ttl time.Duration) error

	GetTheme(ctx context.Context) (string, error)
	SaveTheme(ctx context.Context, theme string) error

	PublishRefresh(ctx context.Context, requester string) error
}
