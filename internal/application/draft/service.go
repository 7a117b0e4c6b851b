// Package draft 管理帖子草稿：生成、编辑、单段重写与预览
package draft

import (
	"context"
	"errors"
	"strings"

	"linkedin-post-ai-api/internal/application/post"
	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/repository"
	apperrors "linkedin-post-ai-api/pkg/errors"
	"linkedin-post-ai-api/pkg/logger"
	"linkedin-post-ai-api/pkg/metrics"
)

// 输入长度限制
const (
	maxTopicLen   = 500
	maxHookLen    = 500
	maxSectionLen = 1500
)

// Generator 草稿服务依赖的生成能力，*post.Generator 实现该接口
type Generator interface {
	GenerateHooks(ctx context.Context, topic string, profile post.Profile) ([]string, error)
	RecommendFramework(ctx context.Context, hook, topic string) entity.Framework
	RegenerateSection(ctx context.Context, sectionKey, hook, topic string, current entity.PostSections, framework *entity.Framework) (string, error)
}

// PostGenerator 整篇生成，*post.Pipeline 实现该接口
type PostGenerator interface {
	GeneratePost(ctx context.Context, in post.GeneratePostInput) (*post.GeneratedPost, error)
}

// ProfileSource 提供生成时的用户画像
type ProfileSource interface {
	Profile(ctx context.Context, userID string) (post.Profile, error)
}

// GenerateInput 生成草稿请求
type GenerateInput struct {
	Topic         string
	Hook          string
	HookOptions   []string
	Framework     string
	AutoFramework bool
	// Preview 为 true 时跳过润色阶段
	Preview bool
}

// UpdateInput 编辑草稿请求，nil 字段保持不变
type UpdateInput struct {
	Hook     *string
	Sections map[string]string
}

// Service 草稿服务
type Service struct {
	generator Generator
	pipeline  PostGenerator
	posts     repository.PostRepository
	profiles  ProfileSource
}

// NewService 创建草稿服务
func NewService(generator Generator, pipeline PostGenerator, posts repository.PostRepository, profiles ProfileSource) *Service {
	return &Service{
		generator: generator,
		pipeline:  pipeline,
		posts:     posts,
		profiles:  profiles,
	}
}

// SuggestHooks 生成候选开头
func (s *Service) SuggestHooks(ctx context.Context, userID, topic string) ([]string, error) {
	topic = strings.TrimSpace(topic)
	if err := checkLen("topic", topic, maxTopicLen); err != nil {
		return nil, err
	}
	hooks, err := s.generator.GenerateHooks(ctx, topic, s.profile(ctx, userID))
	if err != nil {
		return nil, MapGenerationError(err)
	}
	return hooks, nil
}

// RecommendFramework 推荐框架，从不失败
func (s *Service) RecommendFramework(ctx context.Context, hook, topic string) entity.Framework {
	return s.generator.RecommendFramework(ctx, strings.TrimSpace(hook), strings.TrimSpace(topic))
}

// Generate 生成整篇帖子并保存为草稿
func (s *Service) Generate(ctx context.Context, userID string, in GenerateInput) (*entity.Post, error) {
	topic, hook := strings.TrimSpace(in.Topic), strings.TrimSpace(in.Hook)
	if err := checkLen("topic", topic, maxTopicLen); err != nil {
		return nil, err
	}
	if err := checkLen("hook", hook, maxHookLen); err != nil {
		return nil, err
	}

	generated, err := s.pipeline.GeneratePost(ctx, post.GeneratePostInput{
		Topic:         topic,
		Hook:          hook,
		Framework:     in.Framework,
		AutoFramework: in.AutoFramework,
		Profile:       s.profile(ctx, userID),
		SkipRefine:    in.Preview,
	})
	if err != nil {
		return nil, MapGenerationError(err)
	}

	p := entity.NewPost(userID, topic, hook)
	p.HookOptions = trimOptions(in.HookOptions)
	if generated.Framework != nil {
		p.Framework = generated.Framework.String()
	}
	p.Sections = generated.Sections
	p.DesignIdea = generated.DesignIdea
	p.Refined = generated.Refined

	if err := s.posts.Create(ctx, p); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to save draft")
	}
	metrics.PostTextLength.Observe(float64(len([]rune(post.ComposePostText(p.Hook, p.Sections)))))
	logger.Info(ctx, "draft generated", "post_id", p.ID, "framework", p.Framework, "refined", p.Refined)
	return p, nil
}

// Get 获取用户的草稿
func (s *Service) Get(ctx context.Context, userID, postID string) (*entity.Post, error) {
	p, err := s.posts.GetForUser(ctx, userID, postID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load post")
	}
	if p == nil {
		return nil, apperrors.ErrPostNotFound
	}
	return p, nil
}

// List 分页列出用户的帖子
func (s *Service) List(ctx context.Context, userID string, status entity.PostStatus, pagination repository.Pagination) (*repository.PagedResult[*entity.Post], error) {
	var filter *repository.PostFilter
	if status != "" {
		filter = &repository.PostFilter{Status: status}
	}
	result, err := s.posts.ListByUser(ctx, userID, filter, pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list posts")
	}
	return result, nil
}

// Update 编辑开头或分段，编辑后五个分段必须仍然完整
func (s *Service) Update(ctx context.Context, userID, postID string, in UpdateInput) (*entity.Post, error) {
	p, err := s.editable(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if in.Hook != nil {
		hook := strings.TrimSpace(*in.Hook)
		if err := checkLen("hook", hook, maxHookLen); err != nil {
			return nil, err
		}
		p.Hook = hook
	}

	sections := p.Sections
	for k, v := range in.Sections {
		key, ok := entity.ParseSectionKey(k)
		if !ok {
			return nil, apperrors.ErrInvalidSectionKey.WithDetail(k)
		}
		v = strings.TrimSpace(v)
		if len([]rune(v)) > maxSectionLen {
			return nil, apperrors.ErrInvalidParam.WithDetail(k + " is too long")
		}
		sections = sections.With(key, v)
	}
	if err := sections.Validate(); err != nil {
		return nil, apperrors.ErrPostIncomplete.WithDetail(err.Error())
	}
	if sections != p.Sections {
		p.SetSections(sections, p.DesignIdea, false)
	}

	if err := s.posts.Update(ctx, p); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update post")
	}
	return p, nil
}

// Delete 删除草稿
func (s *Service) Delete(ctx context.Context, userID, postID string) error {
	if _, err := s.Get(ctx, userID, postID); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, userID, postID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to delete post")
	}
	return nil
}

// RegenerateSection 重写单个分段并写回草稿
func (s *Service) RegenerateSection(ctx context.Context, userID, postID, sectionKey string) (*entity.Post, error) {
	key, ok := entity.ParseSectionKey(sectionKey)
	if !ok {
		return nil, apperrors.ErrInvalidSectionKey.WithDetail(sectionKey)
	}

	p, err := s.editable(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	var framework *entity.Framework
	if f, ok := entity.ParseFramework(p.Framework); ok {
		framework = &f
	}

	text, err := s.generator.RegenerateSection(ctx, string(key), p.Hook, p.Topic, p.Sections, framework)
	if err != nil {
		return nil, MapGenerationError(err)
	}

	p.ReplaceSection(key, text)
	if err := s.posts.Update(ctx, p); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update post")
	}
	return p, nil
}

// Preview 返回最终发布文本
func (s *Service) Preview(ctx context.Context, userID, postID string) (string, error) {
	p, err := s.Get(ctx, userID, postID)
	if err != nil {
		return "", err
	}
	return post.ComposePostText(p.Hook, p.Sections), nil
}

func (s *Service) editable(ctx context.Context, userID, postID string) (*entity.Post, error) {
	p, err := s.Get(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if !p.IsEditable() {
		return nil, apperrors.ErrPostAlreadyPublished.WithDetail("status: " + string(p.Status))
	}
	return p, nil
}

// profile 画像加载失败不阻断生成
func (s *Service) profile(ctx context.Context, userID string) post.Profile {
	if s.profiles == nil || userID == "" {
		return nil
	}
	p, err := s.profiles.Profile(ctx, userID)
	if err != nil {
		logger.Warn(ctx, "failed to load profile, generating without it", "error", err)
		return nil
	}
	return p
}

// MapGenerationError 将生成流程的错误映射为应用错误码
func MapGenerationError(err error) error {
	switch {
	case err == nil:
		return nil
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.Wrap(err, apperrors.CodeServiceUnavailable, "generation timed out")
	case errors.Is(err, post.ErrInvalidInput):
		return apperrors.Wrap(err, apperrors.CodeInvalidParam, err.Error())
	case errors.Is(err, post.ErrInvalidSectionKey):
		return apperrors.Wrap(err, apperrors.CodeInvalidSectionKey, "invalid section key")
	case errors.Is(err, post.ErrProviderUnavailable):
		return apperrors.Wrap(err, apperrors.CodeProviderUnavailable, "text generation provider unavailable")
	case errors.Is(err, post.ErrMalformedGenerationOutput), errors.Is(err, post.ErrEmptyCompletion):
		return apperrors.Wrap(err, apperrors.CodeMalformedOutput, "model returned malformed output")
	case errors.Is(err, post.ErrIncompleteGeneration):
		return apperrors.Wrap(err, apperrors.CodeIncompleteGeneration, "model returned incomplete sections")
	default:
		return apperrors.Wrap(err, apperrors.CodeGenerationFailed, "post generation failed, please try again")
	}
}

func checkLen(field, v string, max int) error {
	if v == "" {
		return apperrors.ErrInvalidParam.WithDetail(field + " is required")
	}
	if len([]rune(v)) > max {
		return apperrors.ErrInvalidParam.WithDetail(field + " is too long")
	}
	return nil
}

func trimOptions(in []string) []string {
	var out []string
	for _, h := range in {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}
