// Package cache provides shared stores for fetched price tables.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"riskToleranceBot/internal/finance"
)

// RedisStore keeps price tables as JSON values under a key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to addr and checks the server answers.
func NewRedisStore(ctx context.Context, addr, password string, db int, prefix string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &RedisStore{client: rdb, prefix: prefix}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (*finance.PriceTable, bool, error) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var t finance.PriceTable
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, false, fmt.Errorf("decode cached prices: %w", err)
	}
	return &t, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, table *finance.PriceTable, ttl time.Duration) error {
	b, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("encode prices: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+key, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
