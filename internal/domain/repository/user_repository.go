// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"linkedin-post-ai-api/internal/domain/entity"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	// Create 创建用户
	Create(ctx context.Context, user *entity.User) error

	// GetByID 根据 ID 获取用户
	GetByID(ctx context.Context, id string) (*entity.User, error)

	// GetByExternalID 根据外部身份（JWT subject 或设备 ID）获取用户
	GetByExternalID(ctx context.Context, externalID string) (*entity.User, error)

	// Update 更新用户
	Update(ctx context.Context, user *entity.User) error
}

// OnboardingRepository 引导问卷仓储接口
type OnboardingRepository interface {
	// Get 获取用户问卷，不存在时返回 nil
	Get(ctx context.Context, userID string) (*entity.OnboardingProfile, error)

	// Upsert 创建或覆盖用户问卷
	Upsert(ctx context.Context, profile *entity.OnboardingProfile) error
}
