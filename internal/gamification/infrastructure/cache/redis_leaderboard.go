// Package cache provides a Redis-backed read-through cache for the
// leaderboard, protected by a circuit breaker so an unavailable Redis
// degrades to direct repository reads.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/taskforge/taskforge/internal/gamification/application/queries"
)

// DefaultTTL bounds how stale a cached leaderboard can get.
const DefaultTTL = 30 * time.Second

var errCacheMiss = errors.New("leaderboard cache miss")

// RedisLeaderboard decorates a LeaderboardReader with a Redis cache.
// Rankings are cached per limit under taskforge:leaderboard:{limit}.
type RedisLeaderboard struct {
	inner   queries.LeaderboardReader
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[[]queries.LeaderboardEntryDTO]
	ttl     time.Duration
	logger  *slog.Logger
}

// NewRedisLeaderboard creates a cached leaderboard reader. A zero ttl
// falls back to DefaultTTL.
func NewRedisLeaderboard(inner queries.LeaderboardReader, client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisLeaderboard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:    "leaderboard-cache",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A miss is a normal outcome, only transport errors trip the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errCacheMiss)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &RedisLeaderboard{
		inner:   inner,
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[[]queries.LeaderboardEntryDTO](settings),
		ttl:     ttl,
		logger:  logger,
	}
}

// Top returns the cached leaderboard when available, otherwise reads
// from the underlying source and refreshes the cache. Cache failures
// never fail the read.
func (l *RedisLeaderboard) Top(ctx context.Context, limit int) ([]queries.LeaderboardEntryDTO, error) {
	key := cacheKey(limit)

	entries, err := l.breaker.Execute(func() ([]queries.LeaderboardEntryDTO, error) {
		return l.fromCache(ctx, key)
	})
	if err == nil {
		return entries, nil
	}
	if !errors.Is(err, errCacheMiss) && !errors.Is(err, gobreaker.ErrOpenState) {
		l.logger.Warn("leaderboard cache read failed", "key", key, "error", err)
	}

	entries, err = l.inner.Top(ctx, limit)
	if err != nil {
		return nil, err
	}

	l.store(ctx, key, entries)
	return entries, nil
}

func (l *RedisLeaderboard) fromCache(ctx context.Context, key string) ([]queries.LeaderboardEntryDTO, error) {
	data, err := l.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, errCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var entries []queries.LeaderboardEntryDTO
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (l *RedisLeaderboard) store(ctx context.Context, key string, entries []queries.LeaderboardEntryDTO) {
	data, err := json.Marshal(entries)
	if err != nil {
		l.logger.Warn("leaderboard cache encode failed", "key", key, "error", err)
		return
	}
	if err := l.client.Set(ctx, key, data, l.ttl).Err(); err != nil {
		l.logger.Warn("leaderboard cache write failed", "key", key, "error", err)
	}
}

func cacheKey(limit int) string {
	return fmt.Sprintf("taskforge:leaderboard:%d", limit)
}
