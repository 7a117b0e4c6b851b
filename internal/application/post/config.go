package post

import (
	"strings"

	"linkedin-post-ai-api/internal/config"
	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/service"
)

// 候选开头数量范围
const (
	MinHooks = 3
	MaxHooks = 5
)

// Temperatures 各阶段采样温度
type Temperatures struct {
	Hooks      float64
	Recommend  float64
	Sections   float64
	Voice      float64
	Logic      float64
	Regenerate float64
	Polish     float64
}

// GenerationConfig 生成流程的只读配置，启动时构建一次后在请求间共享
type GenerationConfig struct {
	// Model 默认模型，为空时由提供商配置决定
	Model            string
	Temperatures     Temperatures
	DefaultFramework entity.Framework
	MaxPostChars     int

	stageModels     map[string]string
	sectionGuidance map[entity.SectionKey]string
}

var defaultSectionGuidance = map[entity.SectionKey]string{
	entity.SectionIntro:            "1-2 sentences. Pick up right where the hook ends and make the reader want the next line.",
	entity.SectionMainInsight:      "2-3 sentences. The core idea of the post, stated plainly and with conviction.",
	entity.SectionSupportingDetail: "2-3 sentences. Evidence for the insight: a specific example, number or short story.",
	entity.SectionShiftTakeaway:    "1-2 sentences. The reframe: what the reader should now think or do differently.",
	entity.SectionCTA:              "1 sentence. A direct question or invitation that prompts comments.",
}

// DefaultGenerationConfig 返回内置默认配置
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperatures: Temperatures{
			Hooks:      0.9,
			Recommend:  0.2,
			Sections:   0.7,
			Voice:      0.6,
			Logic:      0.3,
			Regenerate: 0.8,
			Polish:     0.5,
		},
		DefaultFramework: entity.DefaultFramework,
		MaxPostChars:     1300,
		sectionGuidance:  cloneGuidance(defaultSectionGuidance),
	}
}

// NewGenerationConfig 基于应用配置构建生成配置，未配置项使用默认值
func NewGenerationConfig(c config.GenerationConfig) GenerationConfig {
	out := DefaultGenerationConfig()
	out.Model = strings.TrimSpace(c.DefaultModel)
	out.DefaultFramework = entity.FrameworkOrDefault(c.DefaultFramework)
	if c.MaxPostChars > 0 {
		out.MaxPostChars = c.MaxPostChars
	}

	t := c.Temperatures
	setIfPositive(&out.Temperatures.Hooks, t.Hooks)
	setIfPositive(&out.Temperatures.Recommend, t.Recommend)
	setIfPositive(&out.Temperatures.Sections, t.Sections)
	setIfPositive(&out.Temperatures.Voice, t.Voice)
	setIfPositive(&out.Temperatures.Logic, t.Logic)
	setIfPositive(&out.Temperatures.Regenerate, t.Regenerate)
	setIfPositive(&out.Temperatures.Polish, t.Polish)

	for k, v := range c.SectionGuidance {
		if key, ok := entity.ParseSectionKey(strings.TrimSpace(k)); ok && strings.TrimSpace(v) != "" {
			out.sectionGuidance[key] = strings.TrimSpace(v)
		}
	}

	if len(c.Models) > 0 {
		out.stageModels = make(map[string]string, len(c.Models))
		for stage, m := range c.Models {
			if m = strings.TrimSpace(m); m != "" {
				out.stageModels[stageAlias(stage)] = m
			}
		}
	}
	return out
}

// ModelFor 返回阶段使用的模型
func (c GenerationConfig) ModelFor(stage string) string {
	if m, ok := c.stageModels[stage]; ok {
		return m
	}
	return c.Model
}

// SectionGuidance 返回分段写作要求
func (c GenerationConfig) SectionGuidance(key entity.SectionKey) string {
	if g, ok := c.sectionGuidance[key]; ok {
		return g
	}
	return defaultSectionGuidance[key]
}

// stageAlias 允许配置中使用短名（hooks/sections/...）
func stageAlias(stage string) string {
	switch strings.ToLower(strings.TrimSpace(stage)) {
	case "hooks":
		return service.WorkflowHooks
	case "recommend", "framework":
		return service.WorkflowRecommend
	case "sections":
		return service.WorkflowSections
	case "voice":
		return service.WorkflowRefineVoice
	case "logic":
		return service.WorkflowRefineLogic
	case "regenerate":
		return service.WorkflowRegenerateSection
	case "polish":
		return service.WorkflowPolishSection
	default:
		return strings.TrimSpace(stage)
	}
}

func setIfPositive(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

func cloneGuidance(in map[entity.SectionKey]string) map[entity.SectionKey]string {
	out := make(map[entity.SectionKey]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
