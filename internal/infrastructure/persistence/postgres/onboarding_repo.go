// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/repository"
)

// OnboardingRepository 引导问卷仓储实现
type OnboardingRepository struct {
	client *Client
}

var _ repository.OnboardingRepository = (*OnboardingRepository)(nil)

// NewOnboardingRepository 创建引导问卷仓储
func NewOnboardingRepository(client *Client) *OnboardingRepository {
	return &OnboardingRepository{client: client}
}

// Get 获取用户问卷
func (r *OnboardingRepository) Get(ctx context.Context, userID string) (*entity.OnboardingProfile, error) {
	ctx, span := tracer.Start(ctx, "postgres.OnboardingRepository.Get")
	defer span.End()

	profile, err := findOne[entity.OnboardingProfile](getDB(ctx, r.client.db), "user_id = ?", userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get onboarding profile: %w", err)
	}
	return profile, nil
}

// Upsert 创建或覆盖用户问卷
func (r *OnboardingRepository) Upsert(ctx context.Context, profile *entity.OnboardingProfile) error {
	ctx, span := tracer.Start(ctx, "postgres.OnboardingRepository.Upsert")
	defer span.End()

	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	db := getDB(ctx, r.client.db)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"answers", "updated_at"}),
	}).Create(profile).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upsert onboarding profile: %w", err)
	}
	return nil
}
