package post

import (
	"context"
	"fmt"
	"strings"
	"time"

	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/service"
	"linkedin-post-ai-api/internal/workflow/node"
	"linkedin-post-ai-api/internal/workflow/prompt"
	"linkedin-post-ai-api/pkg/logger"
)

// RecommendFramework 为开头与主题挑选叙事框架。
// 结果一定是目录成员，任何失败都回退到默认框架，不返回错误。
func (g *Generator) RecommendFramework(ctx context.Context, hook, topic string) entity.Framework {
	const stage = service.WorkflowRecommend
	start := time.Now()
	fallback := entity.FrameworkOrDefault(string(g.cfg.DefaultFramework))
	lctx := logger.WithStage(ctx, stage)

	hook, topic = strings.TrimSpace(hook), strings.TrimSpace(topic)
	if hook == "" || topic == "" {
		observeStage(stage, start, outcomeFallback)
		logger.Warn(lctx, "framework recommendation skipped, using default", "reason", "empty input", "framework", fallback.String())
		return fallback
	}

	raw, err := g.complete(ctx, stage, prompt.PromptFrameworkRecommendV1, map[string]any{
		"framework_catalog": frameworkCatalogBlock(),
		"hook":              hook,
		"topic":             topic,
	}, g.cfg.Temperatures.Recommend)
	if err != nil {
		observeStage(stage, start, outcomeFallback)
		logger.Warn(lctx, "framework recommendation failed, using default", "error", err.Error(), "framework", fallback.String())
		return fallback
	}

	label := node.CleanLabel(raw)
	f, ok := entity.ParseFramework(label)
	if !ok {
		observeStage(stage, start, outcomeFallback)
		logger.Warn(lctx, "model picked a framework outside the catalog, using default",
			"answer", node.TruncateByRunes(label, 120),
			"framework", fallback.String(),
		)
		return fallback
	}

	observeStage(stage, start, outcomeSuccess)
	return f
}

func frameworkCatalogBlock() string {
	var b strings.Builder
	for _, f := range entity.Frameworks() {
		fmt.Fprintf(&b, "- %s: %s\n", f.String(), f.Instruction())
	}
	return strings.TrimRight(b.String(), "\n")
}
