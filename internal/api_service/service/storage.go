package service

import (
	"context"
	"time"

	"github.com/langowen/cotizaya/internal/entities"
)

type Storage interface {
	History(ctx context.Context, currency entities.Currency, date time.Time, agg AggFunc) (*entities.HistoryPoint, error)
}
