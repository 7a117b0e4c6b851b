package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"linkedin-post-ai-api/internal/domain/service"
)

const (
	usageDayLayout = "20060102"
	usageRetention = 8 * 24 * time.Hour

	usageFieldCalls      = "calls"
	usageFieldPrompt     = "prompt_tokens"
	usageFieldCompletion = "completion_tokens"
)

// UsageStore 按用户按天累计 LLM 调用量（Redis Hash）
type UsageStore struct {
	client *Client
}

// NewUsageStore 创建用量存储
func NewUsageStore(client *Client) *UsageStore {
	return &UsageStore{client: client}
}

func (s *UsageStore) key(userID string, day time.Time) string {
	return s.client.Key(fmt.Sprintf("usage:%s:%s", userID, day.UTC().Format(usageDayLayout)))
}

// Add 累加一次调用
func (s *UsageStore) Add(ctx context.Context, userID string, day time.Time, promptTokens, completionTokens int) error {
	ctx, span := tracer.Start(ctx, "usage.Add")
	defer span.End()

	key := s.key(userID, day)
	span.SetAttributes(attribute.String("usage.key", key))

	pipe := s.client.rdb.TxPipeline()
	pipe.HIncrBy(ctx, key, usageFieldCalls, 1)
	pipe.HIncrBy(ctx, key, usageFieldPrompt, int64(promptTokens))
	pipe.HIncrBy(ctx, key, usageFieldCompletion, int64(completionTokens))
	pipe.Expire(ctx, key, usageRetention)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to add usage: %w", err)
	}
	return nil
}

// Get 读取某日用量，无记录时返回零值
func (s *UsageStore) Get(ctx context.Context, userID string, day time.Time) (service.LLMUsage, error) {
	ctx, span := tracer.Start(ctx, "usage.Get")
	defer span.End()

	out := service.LLMUsage{Day: day.UTC().Format(time.DateOnly)}
	vals, err := s.client.rdb.HGetAll(ctx, s.key(userID, day)).Result()
	if err != nil {
		span.RecordError(err)
		return out, fmt.Errorf("failed to get usage: %w", err)
	}
	out.Calls = parseInt64(vals[usageFieldCalls])
	out.PromptTokens = parseInt64(vals[usageFieldPrompt])
	out.CompletionTokens = parseInt64(vals[usageFieldCompletion])
	return out, nil
}

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
