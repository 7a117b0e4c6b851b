// Package post 实现帖子生成流程：开头、框架推荐、分段生成、润色与单段重写
package post

import (
	"context"
	"fmt"
	"strings"
	"time"

	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/service"
	"linkedin-post-ai-api/internal/workflow/port"
	"linkedin-post-ai-api/internal/workflow/prompt"
	"linkedin-post-ai-api/pkg/logger"
	"linkedin-post-ai-api/pkg/metrics"
)

// 阶段结果，用作指标标签
const (
	outcomeSuccess  = "success"
	outcomeFailed   = "failed"
	outcomeDegraded = "degraded"
	outcomeFallback = "fallback"
)

// Generator 帖子生成器。只持有只读配置，可被并发请求共享。
type Generator struct {
	client  port.CompletionClient
	prompts *prompt.Registry
	cfg     GenerationConfig
}

// NewGenerator 创建生成器
func NewGenerator(client port.CompletionClient, prompts *prompt.Registry, cfg GenerationConfig) *Generator {
	if prompts == nil {
		prompts = prompt.NewRegistry()
	}
	return &Generator{
		client:  client,
		prompts: prompts,
		cfg:     cfg,
	}
}

// complete 渲染模板并发起一次补全
func (g *Generator) complete(ctx context.Context, stage string, id prompt.PromptID, vars map[string]any, temperature float64) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("%w: completion client not configured", ErrProviderUnavailable)
	}
	rendered, err := g.prompts.Render(ctx, id, vars)
	if err != nil {
		return "", fmt.Errorf("render %s prompt: %w", stage, err)
	}

	out, err := g.client.Complete(service.WithWorkflow(ctx, stage), port.CompletionRequest{
		SystemPrompt: rendered.System,
		UserPrompt:   rendered.User,
		Model:        g.cfg.ModelFor(stage),
		Temperature:  temperature,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}

func observeStage(stage string, start time.Time, outcome string) {
	metrics.GenerationStageTotal.WithLabelValues(stage, outcome).Inc()
	metrics.GenerationStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// degrade 记录润色阶段的降级
func degrade(ctx context.Context, stage string, start time.Time, reason string, err error) {
	observeStage(stage, start, outcomeDegraded)
	args := []any{"reason", reason}
	if err != nil {
		args = append(args, "error", err.Error())
	}
	logger.Warn(logger.WithStage(ctx, stage), "refinement skipped, keeping previous text", args...)
}

func frameworkBlock(f *entity.Framework) string {
	if f == nil || !f.Valid() {
		return ""
	}
	return fmt.Sprintf("\nStructure the post with the \"%s\" framework: %s\n", f.String(), f.Instruction())
}

// sectionsBlock 以带标签的纯文本列出全部分段，供单段重写参考上下文
func sectionsBlock(s entity.PostSections) string {
	var b strings.Builder
	for i, k := range entity.SectionKeys() {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%s]\n%s", k, strings.TrimSpace(s.Get(k)))
	}
	return b.String()
}
