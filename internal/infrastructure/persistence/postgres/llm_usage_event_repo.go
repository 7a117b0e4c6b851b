package postgres

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/repository"
)

// LLMUsageEventRepository 模型调用明细，只追加
type LLMUsageEventRepository struct {
	client *Client
}

var _ repository.LLMUsageEventRepository = (*LLMUsageEventRepository)(nil)

func NewLLMUsageEventRepository(client *Client) *LLMUsageEventRepository {
	return &LLMUsageEventRepository{client: client}
}

func (r *LLMUsageEventRepository) Create(ctx context.Context, event *entity.LLMUsageEvent) error {
	ctx, span := tracer.Start(ctx, "postgres.LLMUsageEventRepository.Create")
	span.SetAttributes(attribute.String("llm.workflow", event.Workflow), attribute.Int("llm.tokens", event.TotalTokens()))
	defer span.End()

	if err := getDB(ctx, r.client.db).Create(event).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to record llm usage event: %w", err)
	}
	return nil
}

func (r *LLMUsageEventRepository) SummarizeByWorkflow(ctx context.Context, userID string, start, end time.Time) ([]entity.WorkflowUsage, error) {
	ctx, span := tracer.Start(ctx, "postgres.LLMUsageEventRepository.SummarizeByWorkflow")
	defer span.End()

	var rows []entity.WorkflowUsage
	err := getDB(ctx, r.client.db).Model(&entity.LLMUsageEvent{}).
		Select(`workflow,
			COUNT(*) AS calls,
			COALESCE(SUM(tokens_prompt), 0) AS prompt_tokens,
			COALESCE(SUM(tokens_completion), 0) AS completion_tokens,
			COALESCE(AVG(duration_ms), 0)::bigint AS avg_duration_ms`).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start, end).
		Group("workflow").
		Order("SUM(tokens_prompt + tokens_completion) DESC").
		Scan(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to summarize llm usage: %w", err)
	}
	return rows, nil
}
