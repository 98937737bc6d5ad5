package fetcher

import (
	"context"

	"github.com/langowen/cotizaya/internal/entities"
)

type Storage interface {
	SaveSnapshot(ctx context.Context, snapshot *entities.RateSnapshot) error
}
