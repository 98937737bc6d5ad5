package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
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
	const op = "storage.postgres.New"

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

	storageBD := NewStorage(pool)

	if err = storageBD.initSchema(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, op)
	}

	return storageBD, nil
}

func (s *Storage) initSchema(ctx context.Context) error {
	const op = "storage.postgres.initSchema"

	statements := []string{
		`CREATE TABLE IF NOT EXISTS rate_quotes (
			id         BIGSERIAL PRIMARY KEY,
			currency   TEXT        NOT NULL,
			buy        DOUBLE PRECISION,
			sell       DOUBLE PRECISION,
			fallback   BOOLEAN     NOT NULL DEFAULT FALSE,
			timestamp  TIMESTAMPTZ NOT NULL,
			UNIQUE (currency, timestamp)
		)`,
		`CREATE INDEX IF NOT EXISTS rate_quotes_currency_ts_idx ON rate_quotes (currency, timestamp DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return errors.Wrap(err, op)
		}
	}

	return nil
}

// SaveSnapshot appends one row per quote and per cross rate. Cross rates are
// stored with the value on the sell side.
func (s *Storage) SaveSnapshot(ctx context.Context, snapshot *entities.RateSnapshot) error {
	const op = "storage.postgres.SaveSnapshot"

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, op)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	const insert = `
		INSERT INTO rate_quotes (currency, buy, sell, fallback, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (currency, timestamp)
		DO UPDATE SET buy = EXCLUDED.buy, sell = EXCLUDED.sell, fallback = EXCLUDED.fallback
	`

	for _, currency := range entities.DirectCurrencies {
		quote, ok := snapshot.Quote(currency)
		if !ok || quote.Empty() {
			continue
		}

		_, err = tx.Exec(ctx, insert, string(currency), quote.Buy, quote.Sell, snapshot.UsedFallback(currency), snapshot.FetchedAt)
		if err != nil {
			return errors.Wrap(err, op)
		}
	}

	for _, currency := range entities.CrossCurrencies {
		value := snapshot.CrossRate(currency)
		if value == nil {
			continue
		}

		_, err = tx.Exec(ctx, insert, string(currency), nil, value, snapshot.UsedFallback(currency), snapshot.FetchedAt)
		if err != nil {
			return errors.Wrap(err, op)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func (s *Storage) Close() {
	s.db.Close()
}
