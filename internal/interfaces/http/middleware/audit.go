package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"linkedin-post-ai-api/pkg/logger"
)

// AuditConfig 访问日志配置
type AuditConfig struct {
	// Enabled 是否启用
	Enabled bool
	// SkipPaths 跳过记录的路径前缀
	SkipPaths []string
}

// Audit 访问日志中间件，5xx 记为 error，4xx 记为 warn
func Audit(cfg AuditConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		for _, p := range cfg.SkipPaths {
			if strings.HasPrefix(c.Request.URL.Path, p) {
				c.Next()
				return
			}
		}

		start := time.Now()
		c.Next()

		fields := []any{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
			"body_size", c.Writer.Size(),
		}

		ctx := c.Request.Context()
		switch status := c.Writer.Status(); {
		case status >= 500:
			var err error
			if last := c.Errors.Last(); last != nil {
				err = last
			}
			logger.Error(ctx, "api request", err, fields...)
		case status >= 400:
			logger.Warn(ctx, "api request", fields...)
		default:
			logger.Info(ctx, "api request", fields...)
		}
	}
}

// DefaultAuditSkipPaths 默认跳过记录的路径
var DefaultAuditSkipPaths = DefaultSkipPaths
