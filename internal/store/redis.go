package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/tharushika0418/Vescueye-Deploy/internal/config"
	"github.com/tharushika0418/Vescueye-Deploy/internal/domain"
)

// latestKey 最新遥测数据在 Redis 中的键
const latestKey = "iot:flap:latest"

// NewRedisClient 创建Redis客户端
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisLatest Redis 实现的最新值缓存
// 多实例部署或进程重启后仍可读到最新值时使用（CACHE_BACKEND=redis）
type RedisLatest struct {
	c *redis.Client
}

// NewRedisLatest 创建 Redis 最新值缓存
func NewRedisLatest(c *redis.Client) *RedisLatest {
	return &RedisLatest{c: c}
}

var _ LatestStore = (*RedisLatest)(nil)

func (r *RedisLatest) Set(ctx context.Context, data *domain.FlapData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal latest value: %w", err)
	}
	// 不设 TTL：最新值在下一条数据到达前一直有效
	return r.c.Set(ctx, latestKey, string(raw), 0).Err()
}

func (r *RedisLatest) Get(ctx context.Context) (*domain.FlapData, error) {
	raw, err := r.c.Get(ctx, latestKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var data domain.FlapData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal latest value: %w", err)
	}
	return &data, nil
}
