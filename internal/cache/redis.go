package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

// Redis stores results as JSON strings.
type Redis struct {
	client *redis.Client
}

// RedisOptions is the connection subset exposed through configuration.
type RedisOptions struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

func NewRedis(opts RedisOptions) *Redis {
	return &Redis{client: redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})}
}

// Ping checks connectivity, used at startup.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Get(ctx context.Context, key string) (*models.PipelineResult, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached result: %w", err)
	}
	var res models.PipelineResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return &res, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, res *models.PipelineResult, ttl time.Duration) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
