package post

import (
	"context"
	"fmt"
	"strings"
	"time"

	"linkedin-post-ai-api/internal/domain/service"
	"linkedin-post-ai-api/internal/workflow/prompt"
	"linkedin-post-ai-api/pkg/logger"
)

// GenerateHooks 为主题生成 3-5 条候选开头
func (g *Generator) GenerateHooks(ctx context.Context, topic string, profile Profile) ([]string, error) {
	const stage = service.WorkflowHooks
	start := time.Now()

	topic = strings.TrimSpace(topic)
	if topic == "" {
		observeStage(stage, start, outcomeFailed)
		return nil, fmt.Errorf("%w: topic is required", ErrInvalidInput)
	}

	raw, err := g.complete(ctx, stage, prompt.PromptHooksV1, map[string]any{
		"min_hooks":     MinHooks,
		"max_hooks":     MaxHooks,
		"topic":         topic,
		"profile_block": profile.PromptBlock(),
	}, g.cfg.Temperatures.Hooks)
	if err != nil {
		observeStage(stage, start, outcomeFailed)
		return nil, err
	}

	hooks, err := parseHooks(raw)
	if err != nil {
		observeStage(stage, start, outcomeFailed)
		logger.Warn(logger.WithStage(ctx, stage), "hooks response rejected", "error", err.Error())
		return nil, err
	}

	observeStage(stage, start, outcomeSuccess)
	return hooks, nil
}
