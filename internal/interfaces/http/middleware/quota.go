package middleware

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"linkedin-post-ai-api/internal/application/quota"
	apperrors "linkedin-post-ai-api/pkg/errors"
	"linkedin-post-ai-api/pkg/logger"
)

const (
	quotaLimitHeader = "X-Token-Quota-Limit"
	quotaUsedHeader  = "X-Token-Quota-Used"
)

// QuotaChecker 每日 Token 配额检查
type QuotaChecker interface {
	CheckDailyTokens(ctx context.Context, userID string) (used int64, max int64, err error)
}

// TokenQuota 生成类接口的每日 Token 配额检查，需在 Auth 之后使用
func TokenQuota(checker QuotaChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if checker == nil {
			c.Next()
			return
		}

		used, max, err := checker.CheckDailyTokens(c.Request.Context(), GetUserIDFromGin(c))
		var exceeded quota.TokenQuotaExceededError
		switch {
		case errors.As(err, &exceeded):
			abortAppError(c, apperrors.ErrTooManyRequests.WithDetail("daily token quota exhausted"))
			return
		case err != nil:
			// 用量存储故障时放行
			logger.Warn(c.Request.Context(), "token quota check failed", "error", err)
		case max > 0:
			c.Header(quotaLimitHeader, strconv.FormatInt(max, 10))
			c.Header(quotaUsedHeader, strconv.FormatInt(used, 10))
		}
		c.Next()
	}
}
