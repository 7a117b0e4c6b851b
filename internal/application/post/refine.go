package post

import (
	"context"
	"encoding/json"
	"time"

	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/service"
	"linkedin-post-ai-api/internal/workflow/prompt"
)

// RefineVoice 语气润色：更口语、更像作者本人。失败时原样返回输入。
func (g *Generator) RefineVoice(ctx context.Context, sections entity.PostSections, hook, topic string) entity.PostSections {
	return g.refine(ctx, service.WorkflowRefineVoice, prompt.PromptRefineVoiceV1, g.cfg.Temperatures.Voice, sections, hook, topic)
}

// RefineLogic 逻辑润色：理顺分段之间的衔接。失败时原样返回输入。
func (g *Generator) RefineLogic(ctx context.Context, sections entity.PostSections, hook, topic string) entity.PostSections {
	return g.refine(ctx, service.WorkflowRefineLogic, prompt.PromptRefineLogicV1, g.cfg.Temperatures.Logic, sections, hook, topic)
}

func (g *Generator) refine(ctx context.Context, stage string, id prompt.PromptID, temperature float64, sections entity.PostSections, hook, topic string) entity.PostSections {
	start := time.Now()

	gc := NewGenerationContext(topic, hook, nil, nil)
	if err := gc.validate(); err != nil {
		degrade(ctx, stage, start, "invalid input", err)
		return sections
	}
	if err := sections.Validate(); err != nil {
		degrade(ctx, stage, start, "incomplete input", err)
		return sections
	}

	payload, err := json.Marshal(sections.Trimmed())
	if err != nil {
		degrade(ctx, stage, start, "encode sections", err)
		return sections
	}

	raw, err := g.complete(ctx, stage, id, map[string]any{
		"hook":          gc.Hook,
		"topic":         gc.Topic,
		"sections_json": string(payload),
	}, temperature)
	if err != nil {
		degrade(ctx, stage, start, "completion failed", err)
		return sections
	}

	refined, err := parseRefinedSections(raw)
	if err != nil {
		degrade(ctx, stage, start, "unusable response", err)
		return sections
	}

	observeStage(stage, start, outcomeSuccess)
	return refined
}
