package post

import (
	"context"
	"fmt"
	"strings"
	"time"

	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/service"
	"linkedin-post-ai-api/internal/workflow/prompt"
	"linkedin-post-ai-api/pkg/logger"
)

// GenerateSections 根据开头、主题和可选框架生成五个分段与配图建议（design_idea），结果未经润色
func (g *Generator) GenerateSections(ctx context.Context, gc GenerationContext) (entity.PostSections, string, error) {
	const stage = service.WorkflowSections
	start := time.Now()

	if err := gc.validate(); err != nil {
		observeStage(stage, start, outcomeFailed)
		return entity.PostSections{}, "", err
	}

	raw, err := g.complete(ctx, stage, prompt.PromptSectionsV1, map[string]any{
		"section_guidance": g.allSectionGuidance(),
		"max_post_chars":   g.cfg.MaxPostChars,
		"framework_block":  frameworkBlock(gc.Framework),
		"hook":             gc.Hook,
		"topic":            gc.Topic,
		"profile_block":    gc.Profile.PromptBlock(),
	}, g.cfg.Temperatures.Sections)
	if err != nil {
		observeStage(stage, start, outcomeFailed)
		return entity.PostSections{}, "", err
	}

	sections, idea, err := parseSections(raw)
	if err != nil {
		observeStage(stage, start, outcomeFailed)
		logger.Warn(logger.WithStage(ctx, stage), "sections response rejected", "error", err.Error())
		return entity.PostSections{}, "", err
	}

	observeStage(stage, start, outcomeSuccess)
	return sections, idea, nil
}

func (g *Generator) allSectionGuidance() string {
	var b strings.Builder
	for _, k := range entity.SectionKeys() {
		fmt.Fprintf(&b, "- %s: %s\n", k, g.cfg.SectionGuidance(k))
	}
	return strings.TrimRight(b.String(), "\n")
}
