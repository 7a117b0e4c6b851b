// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/repository"
)

// PostRepository 帖子仓储实现
type PostRepository struct {
	client *Client
}

var _ repository.PostRepository = (*PostRepository)(nil)

// NewPostRepository 创建帖子仓储
func NewPostRepository(client *Client) *PostRepository {
	return &PostRepository{client: client}
}

// Create 创建帖子
func (r *PostRepository) Create(ctx context.Context, post *entity.Post) error {
	ctx, span := tracer.Start(ctx, "postgres.PostRepository.Create")
	defer span.End()

	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	db := getDB(ctx, r.client.db)
	if err := db.Create(post).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取帖子
func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	ctx, span := tracer.Start(ctx, "postgres.PostRepository.GetByID")
	defer span.End()

	post, err := findOne[entity.Post](getDB(ctx, r.client.db), "id = ?", id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// GetForUser 获取属于用户的帖子
func (r *PostRepository) GetForUser(ctx context.Context, userID, id string) (*entity.Post, error) {
	ctx, span := tracer.Start(ctx, "postgres.PostRepository.GetForUser")
	defer span.End()

	post, err := findOne[entity.Post](getDB(ctx, r.client.db), "id = ? AND user_id = ?", id, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// Update 更新帖子
func (r *PostRepository) Update(ctx context.Context, post *entity.Post) error {
	ctx, span := tracer.Start(ctx, "postgres.PostRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(post).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

// Delete 删除用户的帖子
func (r *PostRepository) Delete(ctx context.Context, userID, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.PostRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Where("id = ? AND user_id = ?", id, userID).Delete(&entity.Post{}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

// ListByUser 获取用户帖子列表
func (r *PostRepository) ListByUser(ctx context.Context, userID string, filter *repository.PostFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Post], error) {
	ctx, span := tracer.Start(ctx, "postgres.PostRepository.ListByUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Post{}).Where("user_id = ?", userID)
	if filter != nil && filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	var posts []*entity.Post
	if err := query.Order("updated_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&posts).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return repository.NewPagedResult(posts, total, pagination), nil
}

// TransitionStatus 条件更新状态，用于抢占发布
func (r *PostRepository) TransitionStatus(ctx context.Context, id string, from []entity.PostStatus, to entity.PostStatus) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.PostRepository.TransitionStatus")
	defer span.End()

	if len(from) == 0 {
		return false, nil
	}
	db := getDB(ctx, r.client.db)
	result := db.Model(&entity.Post{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now()})
	if result.Error != nil {
		span.RecordError(result.Error)
		return false, fmt.Errorf("failed to transition post status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
