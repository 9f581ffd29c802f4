package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisLimiterPrefix = "myflix:ratelimit"

// redisLimiterStore is a fixed window counter shared by every instance that
// points at the same Redis. It satisfies echo's RateLimiterStore.
type redisLimiterStore struct {
	client *redis.Client
	logger *slog.Logger
	limit  int64
	window time.Duration
}

// newRedisLimiterStore allows rps requests per second on average, counted
// over windows of the given length.
func newRedisLimiterStore(client *redis.Client, logger *slog.Logger, rps float64, window time.Duration) *redisLimiterStore {
	limit := int64(math.Ceil(rps * window.Seconds()))
	if limit < 1 {
		limit = 1
	}
	return &redisLimiterStore{
		client: client,
		logger: logger,
		limit:  limit,
		window: window,
	}
}

// Allow fails open: when Redis is unreachable the request is let through
// and the error is logged. EXPIRE NX runs on every hit so a window whose
// first EXPIRE was lost still gets a TTL on the next request.
func (s *redisLimiterStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	key := fmt.Sprintf("%s:%s", redisLimiterPrefix, identifier)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		s.logger.Error("rate limiter store unavailable", slog.String("err", err.Error()))
		return true, nil
	}

	if err := s.client.ExpireNX(ctx, key, s.window).Err(); err != nil {
		s.logger.Error("rate limiter expire failed", slog.String("key", key), slog.String("err", err.Error()))
	}

	return count <= s.limit, nil
}
