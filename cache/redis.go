package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"investimmo-bot/models"
)

const keyPrefix = "investimmo:"

// RedisOptions configures NewRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// Redis is a Cache shared between processes.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to Redis and checks the connection.
func NewRedis(opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}

	return &Redis{client: client}, nil
}

func (r *Redis) GetReference(ctx context.Context, key string) (*models.MarketReference, bool, error) {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis: get %s: %w", key, err)
	}

	var ref models.MarketReference
	if err := json.Unmarshal(data, &ref); err != nil {
		return nil, false, fmt.Errorf("redis: decode %s: %w", key, err)
	}
	return &ref, true, nil
}

func (r *Redis) SetReference(ctx context.Context, key string, ref *models.MarketReference, ttl time.Duration) error {
	if ref == nil || ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(ref)
	if err != nil {
		return fmt.Errorf("redis: encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
