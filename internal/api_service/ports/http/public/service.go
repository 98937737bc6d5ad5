package public

import (
	"context"

	"github.com/langowen/cotizaya/internal/api_service/service"
	"github.com/langowen/cotizaya/internal/entities"
)

type Service interface {
	FetchBoard(ctx context.Context) (*entities.Board, error)
	FetchRate(ctx context.Context, currency string) (*entities.RateView, error)
	History(ctx context.Context, currency string, date string, option string) (*entities.HistoryPoint, error)
	RequestRefresh(ctx context.Context, requester string) error

	News(ctx context.Context, limit int) ([]entities.NewsItem, error)
	Convert(ctx context.Context, amount, currency, direction string) (*entities.Conversion, error)

	Balances(ctx context.Context) (entities.Balance, error)
	SaveBalances(ctx context.Context, input service.BalanceInput) (entities.Balance, error)
	ResetBalances(ctx context.Context) error
	BalanceTotal(ctx context.Context) (*entities.BalanceTotal, error)

	Brief(ctx context.Context) (*entities.Brief, error)
	Theme(ctx context.Context) (string, error)
	SetTheme(ctx context.Context, theme string) error
}
