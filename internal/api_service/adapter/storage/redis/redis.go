package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/langowen/cotizaya/internal/entities"
	"github.com/langowen/cotizaya/internal/numeric"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	KeyBoard    = "rates:latest"
	KeyNews     = "news:latest"
	KeyBalances = "balances"
	KeyTheme    = "preferences:theme"

	briefPrefix = "brief:"

	ChannelRefresh = "refresh_requested"
)

type Storage struct {
	rdb *redis.Client
}

func NewStorage(client *redis.Client) *Storage {
	return &Storage{
		rdb: client,
	}
}

func InitStorage(ctx context.Context, options *redis.Options) (*Storage, error) {
	const op = "storage.redis.InitStorage"

	redisClient := redis.NewClient(options)

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		return nil, errors.Wrap(err, op)
	}

	storage := NewStorage(redisClient)

	return storage, nil
}

// GetBoard returns the board stored by the last refresh cycle.
func (s *Storage) GetBoard(ctx context.Context) (*entities.Board, error) {
	const op = "storage.redis.GetBoard"

	var board entities.Board
	if err := s.getJSON(ctx, KeyBoard, &board); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errors.Wrap(entities.ErrNoSnapshot, op)
		}
		return nil, errors.Wrap(err, op)
	}

	return &board, nil
}

// GetNews returns the stored headline list; an absent list is empty.
func (s *Storage) GetNews(ctx context.Context) ([]entities.NewsItem, error) {
	const op = "storage.redis.GetNews"

	var items []entities.NewsItem
	if err := s.getJSON(ctx, KeyNews, &items); err != nil {
		if errors.Is(err, redis.Nil) {
			return []entities.NewsItem{}, nil
		}
		return nil, errors.Wrap(err, op)
	}

	return items, nil
}

// storedBalance tolerates hand-edited or legacy values: each field may be a
// number, a localized string or null.
type storedBalance struct {
	ARS  numeric.Flexible `json:"ars"`
	USD  numeric.Flexible `json:"usd"`
	USDT numeric.Flexible `json:"usdt"`
	BTC  numeric.Flexible `json:"btc"`
}

// GetBalances never fails on stored data: absent, unreadable or negative
// fields read as zero. Only transport errors are returned.
func (s *Storage) GetBalances(ctx context.Context) (entities.Balance, error) {
	const op = "storage.redis.GetBalances"

	var stored storedBalance
	if err := s.getJSON(ctx, KeyBalances, &stored); err != nil {
		if errors.Is(err, redis.Nil) {
			return entities.Balance{}, nil
		}
		if errors.Is(err, entities.ErrParse) {
			slog.Warn("Stored balances are unreadable, using zeros", "error", err)
			return entities.Balance{}, nil
		}
		return entities.Balance{}, errors.Wrap(err, op)
	}

	return entities.Balance{
		ARS:  stored.ARS.OrZero(),
		USD:  stored.USD.OrZero(),
		USDT: stored.USDT.OrZero(),
		BTC:  stored.BTC.OrZero(),
	}, nil
}

func (s *Storage) SaveBalances(ctx context.Context, balance entities.Balance) error {
	const op = "storage.redis.SaveBalances"

	if err := s.setJSON(ctx, KeyBalances, balance, 0); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func (s *Storage) DeleteBalances(ctx context.Context) error {
	const op = "storage.redis.DeleteBalances"

	if err := s.rdb.Del(ctx, KeyBalances).Err(); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

// GetBrief returns the summary cached for date (YYYY-MM-DD).
func (s *Storage) GetBrief(ctx context.Context, date string) (*entities.Brief, error) {
	const op = "storage.redis.GetBrief"

	var brief entities.Brief
	if err := s.getJSON(ctx, briefPrefix+date, &brief); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errors.Wrap(entities.ErrNotFound, op)
		}
		return nil, errors.Wrap(err, op)
	}

	return &brief, nil
}

func (s *Storage) SaveBrief(ctx context.Context, date string, brief *entities.Brief, ttl time.Duration) error {
	const op = "storage.redis.SaveBrief"

	if err := s.setJSON(ctx, briefPrefix+date, brief, ttl); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func (s *Storage) GetTheme(ctx context.Context) (string, error) {
	const op = "storage.redis.GetTheme"

	theme, err := s.rdb.Get(ctx, KeyTheme).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errors.Wrap(entities.ErrNotFound, op)
		}
		return "", errors.Wrap(err, op)
	}

	return theme, nil
}

func (s *Storage) SaveTheme(ctx context.Context, theme string) error {
	const op = "storage.redis.SaveTheme"

	if err := s.rdb.Set(ctx, KeyTheme, theme, 0).Err(); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

// PublishRefresh asks the fetcher for an immediate cycle.
func (s *Storage) PublishRefresh(ctx context.Context, requester string) error {
	const op = "storage.redis.PublishRefresh"

	if err := s.rdb.Publish(ctx, ChannelRefresh, requester).Err(); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func (s *Storage) Close() error {
	return s.rdb.Close()
}

func (s *Storage) getJSON(ctx context.Context, key string, dst any) error {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return errors.Wrapf(entities.ErrParse, "%s: %v", key, err)
	}

	return nil
}

func (s *Storage) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.rdb.Set(ctx, key, data, ttl).Err()
}
