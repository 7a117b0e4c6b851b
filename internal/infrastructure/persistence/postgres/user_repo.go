// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/repository"
)

// 用户可变列，Update 只写这些列，created_at/external_id 不会被覆盖
var userMutableColumns = []string{
	"display_name",
	"linkedin_member_urn",
	"linkedin_access_token",
	"linkedin_token_expires_at",
	"updated_at",
}

// UserRepository 用户仓储实现
type UserRepository struct {
	client *Client
}

var _ repository.UserRepository = (*UserRepository)(nil)

// NewUserRepository 创建用户仓储
func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{client: client}
}

// Create 创建用户。external_id 冲突时不报错，改为回填已存在的记录
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.Create")
	defer span.End()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	db := getDB(ctx, r.client.db)
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoNothing: true,
	}).Create(user)
	if res.Error != nil {
		span.RecordError(res.Error)
		return fmt.Errorf("failed to create user: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	existing, err := findOne[entity.User](db, "external_id = ?", user.ExternalID)
	if err != nil || existing == nil {
		span.RecordError(err)
		return fmt.Errorf("failed to load concurrently created user %s: %w", user.ExternalID, err)
	}
	*user = *existing
	return nil
}

// GetByID 根据 ID 获取用户，不存在时返回 nil
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.GetByID")
	defer span.End()

	user, err := findOne[entity.User](getDB(ctx, r.client.db), "id = ?", id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByExternalID 根据外部身份获取用户，不存在时返回 nil
func (r *UserRepository) GetByExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.GetByExternalID")
	defer span.End()

	user, err := findOne[entity.User](getDB(ctx, r.client.db), "external_id = ?", externalID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get user by external id: %w", err)
	}
	return user, nil
}

// Update 更新资料与 LinkedIn 凭据
func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.Update")
	defer span.End()

	res := getDB(ctx, r.client.db).Model(user).Select(userMutableColumns).Updates(user)
	if res.Error != nil {
		span.RecordError(res.Error)
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update user %s: %w", user.ID, repository.ErrNotFound)
	}
	return nil
}
