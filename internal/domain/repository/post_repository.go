// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"linkedin-post-ai-api/internal/domain/entity"
)

// PostFilter 帖子过滤条件
type PostFilter struct {
	Status entity.PostStatus
}

// PostRepository 帖子仓储接口
type PostRepository interface {
	// Create 创建帖子
	Create(ctx context.Context, post *entity.Post) error

	// GetByID 根据 ID 获取帖子，不存在时返回 nil
	GetByID(ctx context.Context, id string) (*entity.Post, error)

	// GetForUser 获取属于指定用户的帖子，不存在或不属于该用户时返回 nil
	GetForUser(ctx context.Context, userID, id string) (*entity.Post, error)

	// Update 更新帖子
	Update(ctx context.Context, post *entity.Post) error

	// Delete 删除用户的帖子
	Delete(ctx context.Context, userID, id string) error

	// ListByUser 获取用户帖子列表（按更新时间倒序）
	ListByUser(ctx context.Context, userID string, filter *PostFilter, pagination Pagination) (*PagedResult[*entity.Post], error)

	// TransitionStatus 仅当当前状态属于 from 时切换到 to，返回是否切换成功
	TransitionStatus(ctx context.Context, id string, from []entity.PostStatus, to entity.PostStatus) (bool, error)
}
