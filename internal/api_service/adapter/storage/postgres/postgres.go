package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/langowen/cotizaya/internal/api_service/service"
	"github.com/langowen/cotizaya/internal/entities"
	"github.com/pkg/errors"
)

type Storage struct {
	db *pgxpool.Pool
}

func NewStorage(pool *pgxpool.Pool) *Storage {
	return &Storage{
		db: pool,
	}
}

func InitStorage(ctx context.Context, dsn string) (*Storage, error) {
	const op = "storage.postgres.InitStorage"

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 10 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, op)
	}

	return NewStorage(pool), nil
}

// History returns one point for currency on the calendar day of date. Max and
// min pick the stored row with the extreme sell value, latest first on ties;
// avg averages both sides and stamps the point with the day's last timestamp.
func (s *Storage) History(ctx context.Context, currency entities.Currency, date time.Time, agg service.AggFunc) (*entities.HistoryPoint, error) {
	const op = "storage.postgres.History"

	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	var query string
	switch agg {
	case service.Max:
		query = `
			WITH MaxQuote AS (
				SELECT MAX(sell) AS sell
				FROM rate_quotes
				WHERE currency = $1 AND timestamp >= $2 AND timestamp < $3
			)
			SELECT rq.buy, rq.sell, rq.timestamp
			FROM rate_quotes rq
			JOIN MaxQuote mq ON rq.sell = mq.sell
			WHERE rq.currency = $1 AND rq.timestamp >= $2 AND rq.timestamp < $3
			ORDER BY rq.timestamp DESC
			LIMIT 1
		`
	case service.Min:
		query = `
			WITH MinQuote AS (
				SELECT MIN(sell) AS sell
				FROM rate_quotes
				WHERE currency = $1 AND timestamp >= $2 AND timestamp < $3
			)
			SELECT rq.buy, rq.sell, rq.timestamp
			FROM rate_quotes rq
			JOIN MinQuote mq ON rq.sell = mq.sell
			WHERE rq.currency = $1 AND rq.timestamp >= $2 AND rq.timestamp < $3
			ORDER BY rq.timestamp DESC
			LIMIT 1
		`
	case service.Avg:
		query = `
			SELECT AVG(buy), AVG(sell), MAX(timestamp)
			FROM rate_quotes
			WHERE currency = $1 AND timestamp >= $2 AND timestamp < $3
		`
	default:
		query = `
			SELECT buy, sell, timestamp
			FROM rate_quotes
			WHERE currency = $1 AND timestamp >= $2 AND timestamp < $3
			ORDER BY timestamp DESC
			LIMIT 1
		`
	}

	var (
		buy, sell *float64
		timestamp *time.Time
	)

	err := s.db.QueryRow(ctx, query, string(currency), startOfDay, endOfDay).Scan(&buy, &sell, &timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(entities.ErrNotFound, "%s: no %s quotes on %s", op, currency, startOfDay.Format(time.DateOnly))
		}
		return nil, errors.Wrap(err, op)
	}

	// AVG over no rows yields a single row of NULLs.
	if timestamp == nil {
		return nil, errors.Wrapf(entities.ErrNotFound, "%s: no %s quotes on %s", op, currency, startOfDay.Format(time.DateOnly))
	}

	return &entities.HistoryPoint{
		Currency:  currency,
		Buy:       buy,
		Sell:      sell,
		Timestamp: *timestamp,
	}, nil
}

func (s *Storage) Close() {
	s.db.Close()
}
