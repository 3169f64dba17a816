package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"avalia_backend/internal/valuation/domain"

	"github.com/redis/go-redis/v9"
)

const maxAppendAttempts = 5

// RedisRepo stores each list as one JSON string value.
type RedisRepo struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed repository.
func NewRedis(client *redis.Client) *RedisRepo {
	return &RedisRepo{client: client}
}

func (r *RedisRepo) List(ctx context.Context, email string) ([]domain.Report, error) {
	raw, err := r.client.Get(ctx, StorageKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.Report{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get report list: %w", err)
	}
	return decodeList(raw)
}

// Append rewrites the list inside a WATCH transaction and retries when a
// concurrent writer touched the key first.
func (r *RedisRepo) Append(ctx context.Context, email string, report domain.Report) error {
	key := StorageKey(email)

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("get report list: %w", err)
		}
		list, err := decodeList(raw)
		if err != nil {
			return err
		}
		data, err := encodeList(prepend(list, report))
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxAppendAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("append report: %w", err)
		}
		return nil
	}
	return fmt.Errorf("append report: %w", redis.TxFailedErr)
}

func encodeList(list []domain.Report) ([]byte, error) {
	data, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("encode report list: %w", err)
	}
	return data, nil
}

var _ Repository = (*RedisRepo)(nil)
