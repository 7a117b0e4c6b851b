// Package quota 提供用户用量统计与配额能力
package quota

import (
	"context"
	"fmt"
	"time"

	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/repository"
	"linkedin-post-ai-api/internal/domain/service"
)

// TokenQuotaExceededError 表示用户 Token 日配额已耗尽
type TokenQuotaExceededError struct {
	UserID string
	Max    int64
	Used   int64
}

func (e TokenQuotaExceededError) Error() string {
	return fmt.Sprintf("token quota exceeded: user=%s used=%d max=%d", e.UserID, e.Used, e.Max)
}

// TokenQuotaChecker 用于检查用户 Token 日配额
type TokenQuotaChecker struct {
	store  UsageStore
	events repository.LLMUsageEventRepository
	limit  int64
	now    func() time.Time
}

// NewTokenQuotaChecker limit <= 0 时不做限制
func NewTokenQuotaChecker(store UsageStore, limit int64) *TokenQuotaChecker {
	return &TokenQuotaChecker{
		store: store,
		limit: limit,
		now:   time.Now,
	}
}

// Today 返回用户当日用量
func (c *TokenQuotaChecker) Today(ctx context.Context, userID string) (service.LLMUsage, error) {
	return c.store.Get(ctx, userID, c.now().UTC())
}

// WithEventLog 开启按环节的用量明细查询
func (c *TokenQuotaChecker) WithEventLog(events repository.LLMUsageEventRepository) *TokenQuotaChecker {
	c.events = events
	return c
}

// Breakdown 返回当日按环节聚合的用量，未开启明细时返回 nil
func (c *TokenQuotaChecker) Breakdown(ctx context.Context, userID string) ([]entity.WorkflowUsage, error) {
	if c == nil || c.events == nil {
		return nil, nil
	}
	y, m, d := c.now().UTC().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return c.events.SummarizeByWorkflow(ctx, userID, start, start.AddDate(0, 0, 1))
}

// Limit 返回日配额，0 表示不限制
func (c *TokenQuotaChecker) Limit() int64 {
	if c == nil || c.limit < 0 {
		return 0
	}
	return c.limit
}

// CheckDailyTokens 检查用户是否还有当日 Token 配额。
// 返回：used/max（便于客户端展示），以及是否超过配额的 error。
func (c *TokenQuotaChecker) CheckDailyTokens(ctx context.Context, userID string) (used int64, max int64, err error) {
	if c == nil || c.limit <= 0 || c.store == nil {
		return 0, 0, nil
	}

	usage, err := c.Today(ctx, userID)
	if err != nil {
		return 0, c.limit, err
	}
	used = usage.TotalTokens()
	if used >= c.limit {
		return used, c.limit, TokenQuotaExceededError{
			UserID: userID,
			Max:    c.limit,
			Used:   used,
		}
	}
	return used, c.limit, nil
}
