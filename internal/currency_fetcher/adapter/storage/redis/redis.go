package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/langowen/cotizaya/internal/entities"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	KeyBoard = "rates:latest"
	KeyNews  = "news:latest"

	ChannelUpdated = "rates_updated"
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

func (s *Storage) SaveBoard(ctx context.Context, board *entities.Board) error {
	const op = "storage.redis.SaveBoard"

	data, err := json.Marshal(board)
	if err != nil {
		return errors.Wrap(err, op)
	}

	if err := s.rdb.Set(ctx, KeyBoard, data, 0).Err(); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

// SaveNews stores the merged list; ttl bounds how long a stale list survives a
// stopped fetcher.
func (s *Storage) SaveNews(ctx context.Context, items []entities.NewsItem, ttl time.Duration) error {
	const op = "storage.redis.SaveNews"

	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, op)
	}

	if err := s.rdb.Set(ctx, KeyNews, data, ttl).Err(); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

// ListenRefresh blocks until the next refresh request arrives. The payload
// names who asked for it.
//
// Each call opens its own subscription and closes it on return, so requests
// published between two calls (while the caller runs a refresh) are not
// delivered. That is the same outcome as a request made during a cycle,
// which the fetcher drops anyway; the next tick picks up fresh data.
func (s *Storage) ListenRefresh(ctx context.Context) (string, error) {
	const op = "storage.redis.ListenRefresh"

	pubsub := s.rdb.Subscribe(ctx, ChannelRefresh)
	defer pubsub.Close()

	msg, err := pubsub.ReceiveMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.Wrap(entities.ErrRedisCanceled, op)
		}
		return "", errors.Wrap(err, op)
	}

	slog.Debug("Received message", "channel", msg.Channel, "payload", msg.Payload)

	return msg.Payload, nil
}

func (s *Storage) PublishUpd(ctx context.Context, fetchedAt time.Time) error {
	const op = "storage.redis.PublishUpd"

	if err := s.rdb.Publish(ctx, ChannelUpdated, fetchedAt.UTC().Format(time.RFC3339)).Err(); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func (s *Storage) Close() error {
	return s.rdb.Close()
}
