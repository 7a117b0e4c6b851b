// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/lib/pq"
)

// PostStatus 帖子状态
type PostStatus string

const (
	PostStatusDraft      PostStatus = "draft"
	PostStatusPublishing PostStatus = "publishing"
	PostStatusPublished  PostStatus = "published"
	PostStatusFailed     PostStatus = "failed"
)

// Post 帖子草稿实体
type Post struct {
	ID             string         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID         string         `json:"user_id" gorm:"type:uuid;index;not null"`
	Topic          string         `json:"topic" gorm:"type:text;not null"`
	Hook           string         `json:"hook" gorm:"type:text;not null"`
	HookOptions    pq.StringArray `json:"hook_options,omitempty" gorm:"type:text[]"`
	Framework      string         `json:"framework,omitempty" gorm:"type:varchar(64)"`
	Sections       PostSections   `json:"sections" gorm:"type:jsonb;serializer:json"`
	DesignIdea     string         `json:"design_idea,omitempty" gorm:"type:text"`
	Refined        bool           `json:"refined" gorm:"default:false"`
	Status         PostStatus     `json:"status" gorm:"type:varchar(20);index;default:'draft'"`
	LinkedInPostID string         `json:"linkedin_post_id,omitempty" gorm:"column:linkedin_post_id;type:varchar(255)"`
	PublishError   string         `json:"publish_error,omitempty" gorm:"type:text"`
	PublishAttempt int            `json:"publish_attempt" gorm:"default:0"`
	PublishedAt    *time.Time     `json:"published_at,omitempty"`
	Version        int            `json:"version" gorm:"default:1"`
	CreatedAt      time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Post) TableName() string {
	return "posts"
}

// NewPost 创建新草稿
func NewPost(userID, topic, hook string) *Post {
	now := time.Now()
	return &Post{
		UserID:    userID,
		Topic:     topic,
		Hook:      hook,
		Status:    PostStatusDraft,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsEditable 已发布或发布中的帖子不可再修改
func (p *Post) IsEditable() bool {
	return p.Status == PostStatusDraft || p.Status == PostStatusFailed
}

// CanPublish 仅完整的可编辑草稿允许发布
func (p *Post) CanPublish() bool {
	return p.IsEditable() && p.Sections.IsComplete()
}

// SetSections 写入分段
func (p *Post) SetSections(sections PostSections, designIdea string, refined bool) {
	p.Sections = sections
	p.DesignIdea = designIdea
	p.Refined = refined
	p.touch()
}

// ReplaceSection 替换单个分段
func (p *Post) ReplaceSection(key SectionKey, text string) {
	p.Sections = p.Sections.With(key, text)
	p.touch()
}

// MarkPublishing 标记为发布中
func (p *Post) MarkPublishing() {
	p.Status = PostStatusPublishing
	p.PublishAttempt++
	p.PublishError = ""
	p.UpdatedAt = time.Now()
}

// MarkPublished 标记为已发布
func (p *Post) MarkPublished(linkedInPostID string) {
	now := time.Now()
	p.Status = PostStatusPublished
	p.LinkedInPostID = linkedInPostID
	p.PublishError = ""
	p.PublishedAt = &now
	p.UpdatedAt = now
}

// MarkFailed 标记发布失败，草稿可重试
func (p *Post) MarkFailed(reason string) {
	p.Status = PostStatusFailed
	p.PublishError = reason
	p.UpdatedAt = time.Now()
}

func (p *Post) touch() {
	p.Version++
	p.UpdatedAt = time.Now()
}
