package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "linkedin-post-ai-api/pkg/errors"
	"linkedin-post-ai-api/pkg/logger"
	"linkedin-post-ai-api/pkg/metrics"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// Enabled 是否启用限流
	Enabled bool
	// Limit 窗口内允许的请求数
	Limit int
	// Window 窗口长度
	Window time.Duration
	// Scope 限流维度，例如 generation
	Scope string
}

// RateLimiter 限流器接口
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimitKeyFunc 构建用户限流键
type RateLimitKeyFunc func(userID, scope string) string

// RateLimit 按用户的滑动窗口限流，需在 Auth 之后使用
func RateLimit(cfg RateLimitConfig, limiter RateLimiter, keyFn RateLimitKeyFunc) gin.HandlerFunc {
	if !cfg.Enabled || limiter == nil || cfg.Limit <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Scope == "" {
		cfg.Scope = "default"
	}
	if keyFn == nil {
		keyFn = func(userID, scope string) string { return "ratelimit:" + userID + ":" + scope }
	}

	return func(c *gin.Context) {
		userID := GetUserIDFromGin(c)
		if userID == "" {
			userID = "anonymous"
		}

		allowed, err := limiter.Allow(c.Request.Context(), keyFn(userID, cfg.Scope), cfg.Limit, cfg.Window)
		if err != nil {
			// 限流器故障时放行，避免影响业务
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "error", err)
			c.Next()
			return
		}

		if !allowed {
			metrics.RateLimitRejected.WithLabelValues(c.FullPath()).Inc()
			c.Header("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
			abortAppError(c, apperrors.ErrTooManyRequests.WithDetail("rate limit exceeded"))
			return
		}

		c.Next()
	}
}
