// Package redis 提供 Redis 缓存、限流与用量统计实现
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"linkedin-post-ai-api/internal/config"
)

var tracer = otel.Tracer("redis")

const connectTimeout = 5 * time.Second

// Client Redis 客户端。所有键都会加上 key_prefix 命名空间
type Client struct {
	rdb    *redis.Client
	prefix string
}

// NewClient 创建 Redis 客户端，配置了 url 时优先使用
func NewClient(cfg *config.RedisConfig) (*Client, error) {
	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis %s: %w", opts.Addr, err)
	}

	return &Client{rdb: rdb, prefix: normalizePrefix(cfg.KeyPrefix)}, nil
}

func options(cfg *config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	if u := strings.TrimSpace(cfg.URL); u != "" {
		parsed, err := redis.ParseURL(u)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	return opts, nil
}

// NewClientFromRedis 包装已有的 go-redis 客户端
func NewClientFromRedis(rdb *redis.Client, keyPrefix string) *Client {
	return &Client{rdb: rdb, prefix: normalizePrefix(keyPrefix)}
}

func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), ":")
	if p == "" {
		return ""
	}
	return p + ":"
}

// Key 为业务键加上命名空间
func (c *Client) Key(key string) string {
	return c.prefix + key
}

// Redis 获取底层 Redis 客户端，供 Stream 生产者与消费者使用
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}

// HealthCheck 健康检查
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "redis.HealthCheck")
	defer span.End()

	if err := c.rdb.Ping(ctx).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// IsNil 检查是否为 redis.Nil 错误
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
