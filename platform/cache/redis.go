// Package cache provides the shared Redis client.
// This is part of the platform layer and contains no business logic.
package cache

import (
	"context"
	"fmt"

	"avalia_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses REDIS_URL, connects and pings.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// PingAdapter exposes a Redis client as a health checker.
type PingAdapter struct {
	client *redis.Client
}

// NewPingAdapter wraps client.
func NewPingAdapter(client *redis.Client) *PingAdapter {
	return &PingAdapter{client: client}
}

// Ping checks Redis reachability.
func (a *PingAdapter) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}
