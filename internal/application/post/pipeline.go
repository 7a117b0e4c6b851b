package post

import (
	"context"
	"fmt"
	"strings"

	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/pkg/logger"
)

// Stages 流水线依赖的生成阶段，*Generator 实现该接口
type Stages interface {
	RecommendFramework(ctx context.Context, hook, topic string) entity.Framework
	GenerateSections(ctx context.Context, gc GenerationContext) (entity.PostSections, string, error)
	RefineVoice(ctx context.Context, sections entity.PostSections, hook, topic string) entity.PostSections
	RefineLogic(ctx context.Context, sections entity.PostSections, hook, topic string) entity.PostSections
}

var _ Stages = (*Generator)(nil)

// GeneratePostInput 整篇生成请求
type GeneratePostInput struct {
	Topic string
	Hook  string
	// Framework 显式指定的框架，必须是目录成员
	Framework string
	// AutoFramework 未显式指定时是否调用推荐
	AutoFramework bool
	Profile       Profile
	// SkipRefine 快速预览，跳过润色阶段
	SkipRefine bool
}

// GeneratedPost 整篇生成结果
type GeneratedPost struct {
	Sections   entity.PostSections
	DesignIdea string
	Framework  *entity.Framework
	Refined    bool
}

// Pipeline 串联框架推荐、分段生成与两轮润色
type Pipeline struct {
	stages Stages
}

// NewPipeline 创建流水线
func NewPipeline(stages Stages) *Pipeline {
	return &Pipeline{stages: stages}
}

// GeneratePost 生成整篇帖子。分段生成失败会返回错误，润色阶段只会降级不会失败。
func (p *Pipeline) GeneratePost(ctx context.Context, in GeneratePostInput) (*GeneratedPost, error) {
	var framework *entity.Framework
	switch label := strings.TrimSpace(in.Framework); {
	case label != "":
		f, ok := entity.ParseFramework(label)
		if !ok {
			return nil, fmt.Errorf("%w: unknown framework %q", ErrInvalidInput, label)
		}
		framework = &f
	case in.AutoFramework:
		f := p.stages.RecommendFramework(ctx, in.Hook, in.Topic)
		framework = &f
	}

	gc := NewGenerationContext(in.Topic, in.Hook, framework, in.Profile)
	sections, idea, err := p.stages.GenerateSections(ctx, gc)
	if err != nil {
		return nil, err
	}

	out := &GeneratedPost{
		Sections:   sections,
		DesignIdea: idea,
		Framework:  gc.Framework,
	}
	if in.SkipRefine {
		return out, nil
	}

	// 先语气后逻辑：逻辑润色检查的是语气润色后的措辞
	voiced := p.stages.RefineVoice(ctx, sections, gc.Hook, gc.Topic)
	out.Sections = p.stages.RefineLogic(ctx, voiced, gc.Hook, gc.Topic)
	out.Refined = out.Sections != sections
	if !out.Refined {
		logger.Debug(ctx, "refinement left sections unchanged")
	}
	return out, nil
}
