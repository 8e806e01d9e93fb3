package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

// WindowStore is the shared, TTL-bounded counter store behind the abuse
// heuristics' rolling windows and the leaderboard cache. Counters are
// best-effort: they may under-count during store unavailability, which is
// acceptable because heuristics are soft signals, never the sole gate on a
// user-visible guarantee.
type WindowStore interface {
	// Incr increments key and returns the new count. The window TTL is set
	// when the key is first created, so the count covers a rolling window
	// anchored at the first event.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	// Count returns the current count for key, 0 when absent or expired.
	Count(ctx context.Context, key string) (int64, error)
	// GetBytes returns a cached payload and whether it was present.
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	// SetBytes stores a payload with a TTL.
	SetBytes(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Close() error
}

type redisWindowStore struct {
	log *logger.Logger
	rdb *goredis.Client
}

// NewWindowStore connects to REDIS_ADDR and verifies the connection.
func NewWindowStore(log *logger.Logger) (WindowStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    os.Getenv("REDIS_PASSWORD"),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisWindowStore{
		log: log.With("client", "RedisWindowStore"),
		rdb: rdb,
	}, nil
}

func (s *redisWindowStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("window incr %q: %w", key, err)
	}
	return incr.Val(), nil
}

func (s *redisWindowStore) Count(ctx context.Context, key string) (int64, error) {
	n, err := s.rdb.Get(ctx, key).Int64()
	if err == goredis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("window count %q: %w", key, err)
	}
	return n, nil
}

func (s *redisWindowStore) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return raw, true, nil
}

func (s *redisWindowStore) SetBytes(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *redisWindowStore) Close() error {
	return s.rdb.Close()
}
