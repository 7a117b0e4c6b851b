package repository

import (
	"context"
	"time"

	"linkedin-post-ai-api/internal/domain/entity"
)

// LLMUsageEventRepository 模型调用明细仓储
type LLMUsageEventRepository interface {
	Create(ctx context.Context, event *entity.LLMUsageEvent) error
	// SummarizeByWorkflow 按环节聚合 [start, end) 区间内的调用，按 Token 总量倒序
	SummarizeByWorkflow(ctx context.Context, userID string, start, end time.Time) ([]entity.WorkflowUsage, error)
}
