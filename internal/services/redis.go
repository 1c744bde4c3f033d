package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Pinger is anything whose connectivity can be health-checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RedisService owns the Redis connection used for session events.
type RedisService struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Pinger = (*RedisService)(nil)

// NewRedisService parses a redis:// URL and creates a client. It does not
// dial; use Ping or WaitForConnection for that.
func NewRedisService(redisURL string, logger *slog.Logger) (*RedisService, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &RedisService{
		client: redis.NewClient(opt),
		logger: logger,
	}, nil
}

func (r *RedisService) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	r.logger.Debug("Redis ping successful", "result", cmd.Val())
	return nil
}

func (r *RedisService) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}

	r.logger.Info("Redis connection closed")
	return nil
}

// Client returns the underlying Redis client for direct operations
func (r *RedisService) Client() *redis.Client {
	return r.client
}

// WaitForConnection pings until Redis answers, the context ends, or
// maxRetries attempts fail.
func (r *RedisService) WaitForConnection(ctx context.Context, maxRetries int, retryDelay time.Duration) error {
	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}
