package dto

import (
	"time"

	"linkedin-post-ai-api/internal/application/draft"
	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/repository"
)

// GenerateHooksRequest 生成候选开头请求
type GenerateHooksRequest struct {
	Topic string `json:"topic" binding:"required"`
}

// HooksResponse 候选开头响应
type HooksResponse struct {
	Hooks []string `json:"hooks"`
}

// FrameworkRequest 框架推荐请求
type FrameworkRequest struct {
	Hook  string `json:"hook" binding:"required"`
	Topic string `json:"topic"`
}

// FrameworkResponse 框架推荐响应
type FrameworkResponse struct {
	Framework   string `json:"framework"`
	Instruction string `json:"instruction"`
}

// FrameworkListResponse 框架目录响应
type FrameworkListResponse struct {
	Items   []*FrameworkResponse `json:"items"`
	Default string               `json:"default"`
}

// GeneratePostRequest 生成整篇帖子请求
type GeneratePostRequest struct {
	Topic         string   `json:"topic" binding:"required"`
	Hook          string   `json:"hook" binding:"required"`
	HookOptions   []string `json:"hook_options,omitempty" binding:"max=5"`
	Framework     string   `json:"framework,omitempty"`
	AutoFramework bool     `json:"auto_framework"`
	// Preview 未传时由 features.refine_by_default 决定
	Preview *bool `json:"preview,omitempty"`
}

// ToInput 转换为应用层输入
func (r *GeneratePostRequest) ToInput(refineByDefault bool) draft.GenerateInput {
	preview := !refineByDefault
	if r.Preview != nil {
		preview = *r.Preview
	}
	return draft.GenerateInput{
		Topic:         r.Topic,
		Hook:          r.Hook,
		HookOptions:   r.HookOptions,
		Framework:     r.Framework,
		AutoFramework: r.AutoFramework,
		Preview:       preview,
	}
}

// UpdatePostRequest 编辑草稿请求
type UpdatePostRequest struct {
	Hook     *string           `json:"hook"`
	Sections map[string]string `json:"sections"`
}

// PostResponse 帖子响应
type PostResponse struct {
	ID             string              `json:"id"`
	Topic          string              `json:"topic"`
	Hook           string              `json:"hook"`
	HookOptions    []string            `json:"hook_options,omitempty"`
	Framework      string              `json:"framework,omitempty"`
	Sections       entity.PostSections `json:"sections"`
	DesignIdea     string              `json:"design_idea,omitempty"`
	Refined        bool                `json:"refined"`
	Status         entity.PostStatus   `json:"status"`
	LinkedInPostID string              `json:"linkedin_post_id,omitempty"`
	PublishError   string              `json:"publish_error,omitempty"`
	PublishedAt    *time.Time          `json:"published_at,omitempty"`
	Version        int                 `json:"version"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// PostListResponse 帖子列表响应
type PostListResponse struct {
	Items []*PostResponse `json:"items"`
}

// PreviewResponse 发布文本预览
type PreviewResponse struct {
	PostText string `json:"post_text"`
	Length   int    `json:"length"`
}

// PublishResponse 发布结果
type PublishResponse struct {
	Post   *PostResponse `json:"post"`
	Mode   string        `json:"mode"`
	Queued bool          `json:"queued"`
}

// ToPostResponse 实体转换为响应
func ToPostResponse(p *entity.Post) *PostResponse {
	if p == nil {
		return nil
	}
	return &PostResponse{
		ID:             p.ID,
		Topic:          p.Topic,
		Hook:           p.Hook,
		HookOptions:    p.HookOptions,
		Framework:      p.Framework,
		Sections:       p.Sections,
		DesignIdea:     p.DesignIdea,
		Refined:        p.Refined,
		Status:         p.Status,
		LinkedInPostID: p.LinkedInPostID,
		PublishError:   p.PublishError,
		PublishedAt:    p.PublishedAt,
		Version:        p.Version,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// ToPostListResponse 分页结果转换为响应
func ToPostListResponse(result *repository.PagedResult[*entity.Post]) (*PostListResponse, *PageMeta) {
	items := make([]*PostResponse, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, ToPostResponse(p))
	}
	meta := NewPageMeta(result.Page, result.PageSize, int(result.Total))
	meta.HasNext = result.HasNext()
	return &PostListResponse{Items: items}, meta
}

// ToFrameworkResponse 框架转换为响应
func ToFrameworkResponse(f entity.Framework) *FrameworkResponse {
	return &FrameworkResponse{
		Framework:   f.String(),
		Instruction: f.Instruction(),
	}
}
