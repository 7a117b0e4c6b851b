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

// RegenerateSection 重写一个分段并做一次合并润色，返回新的分段文本。
// 分段键非法时不会发起任何补全调用；润色失败时返回重写后的原始文本。
func (g *Generator) RegenerateSection(ctx context.Context, sectionKey, hook, topic string, current entity.PostSections, framework *entity.Framework) (string, error) {
	const stage = service.WorkflowRegenerateSection
	start := time.Now()

	key, ok := entity.ParseSectionKey(strings.TrimSpace(sectionKey))
	if !ok {
		observeStage(stage, start, outcomeFailed)
		return "", fmt.Errorf("%w: %q", ErrInvalidSectionKey, sectionKey)
	}
	gc := NewGenerationContext(topic, hook, framework, nil)
	if err := gc.validate(); err != nil {
		observeStage(stage, start, outcomeFailed)
		return "", err
	}
	if err := current.Validate(); err != nil {
		observeStage(stage, start, outcomeFailed)
		return "", fmt.Errorf("%w: %w", ErrIncompleteGeneration, err)
	}

	current = current.Trimmed()
	block := sectionsBlock(current)
	lctx := logger.WithStage(ctx, stage)

	raw, err := g.complete(ctx, stage, prompt.PromptRegenerateSectionV1, map[string]any{
		"section_key":      string(key),
		"section_guidance": g.cfg.SectionGuidance(key),
		"framework_block":  frameworkBlock(gc.Framework),
		"hook":             gc.Hook,
		"topic":            gc.Topic,
		"sections_block":   block,
		"current_text":     current.Get(key),
	}, g.cfg.Temperatures.Regenerate)
	if err != nil {
		observeStage(stage, start, outcomeFailed)
		return "", err
	}
	text := node.CleanPlainText(raw)
	if text == "" {
		observeStage(stage, start, outcomeFailed)
		return "", ErrEmptyCompletion
	}
	observeStage(stage, start, outcomeSuccess)

	polished := g.polishSection(ctx, key, text, current, gc)
	if polished == current.Get(key) {
		logger.Warn(lctx, "regenerated section is identical to the current text", "section", string(key))
	}
	return polished, nil
}

// polishSection 对重写结果做一次合并润色（语气与衔接）。
// 失败或润色结果退回到当前分段时返回重写后的原文。
func (g *Generator) polishSection(ctx context.Context, key entity.SectionKey, text string, current entity.PostSections, gc GenerationContext) string {
	const stage = service.WorkflowPolishSection
	start := time.Now()

	raw, err := g.complete(ctx, stage, prompt.PromptPolishSectionV1, map[string]any{
		"section_key":    string(key),
		"hook":           gc.Hook,
		"topic":          gc.Topic,
		"sections_block": sectionsBlock(current.With(key, text)),
		"raw_text":       text,
	}, g.cfg.Temperatures.Polish)
	if err != nil {
		degrade(ctx, stage, start, "completion failed", err)
		return text
	}
	polished := node.CleanPlainText(raw)
	if polished == "" {
		degrade(ctx, stage, start, "empty response", nil)
		return text
	}
	if polished == current.Get(key) && text != polished {
		degrade(ctx, stage, start, "polish reverted to current text", nil)
		return text
	}
	observeStage(stage, start, outcomeSuccess)
	return polished
}
