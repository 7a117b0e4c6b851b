package quota

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/repository"
	"linkedin-post-ai-api/internal/domain/service"
)

// UsageStore 按用户按天累计用量的存储
type UsageStore interface {
	Add(ctx context.Context, userID string, day time.Time, promptTokens, completionTokens int) error
	Get(ctx context.Context, userID string, day time.Time) (service.LLMUsage, error)
}

// LLMUsageRecorder 将每次 LLM 调用计入用户当日用量，并可选写入调用明细
type LLMUsageRecorder struct {
	store  UsageStore
	events repository.LLMUsageEventRepository
	now    func() time.Time
}

func NewLLMUsageRecorder(store UsageStore) *LLMUsageRecorder {
	return &LLMUsageRecorder{
		store: store,
		now:   time.Now,
	}
}

// WithEventLog 开启调用明细落库
func (r *LLMUsageRecorder) WithEventLog(events repository.LLMUsageEventRepository) *LLMUsageRecorder {
	r.events = events
	return r
}

func (r *LLMUsageRecorder) Record(ctx context.Context, in service.LLMUsageInput) error {
	if r == nil || r.store == nil {
		return nil
	}

	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil
	}
	if in.PromptTokens < 0 || in.CompletionTokens < 0 {
		return fmt.Errorf("invalid token usage")
	}

	errAdd := r.store.Add(ctx, userID, r.now().UTC(), in.PromptTokens, in.CompletionTokens)
	if r.events == nil {
		return errAdd
	}

	errEvent := r.events.Create(ctx, &entity.LLMUsageEvent{
		UserID:           userID,
		Workflow:         in.Workflow,
		Provider:         in.Provider,
		Model:            in.Model,
		TokensPrompt:     in.PromptTokens,
		TokensCompletion: in.CompletionTokens,
		DurationMs:       in.DurationMs,
	})
	return errors.Join(errAdd, errEvent)
}

var _ service.LLMUsageRecorder = (*LLMUsageRecorder)(nil)
