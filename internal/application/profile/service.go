// Package profile 管理用户身份、引导问卷与 LinkedIn 绑定
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"linkedin-post-ai-api/internal/application/post"
	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/repository"
	apperrors "linkedin-post-ai-api/pkg/errors"
	"linkedin-post-ai-api/pkg/logger"
)

const defaultProfileTTL = 10 * time.Minute

// 问卷限制
const (
	maxAnswers      = 20
	maxAnswerKeyLen = 64
	maxAnswerLen    = 1000
)

// Cache 画像缓存
type Cache interface {
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (any, error)) ([]byte, error)
	Delete(ctx context.Context, keys ...string) error
}

// CacheKeyFunc 构建缓存键
type CacheKeyFunc func(userID string) string

// Service 用户服务
type Service struct {
	users      repository.UserRepository
	onboarding repository.OnboardingRepository
	cache      Cache
	cacheKey   CacheKeyFunc
	ttl        time.Duration
	now        func() time.Time
}

// NewService 创建用户服务，cache 为 nil 时直接读库
func NewService(users repository.UserRepository, onboarding repository.OnboardingRepository, cache Cache, cacheKey CacheKeyFunc, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultProfileTTL
	}
	if cacheKey == nil {
		cacheKey = func(userID string) string { return "profile:" + userID }
	}
	return &Service{
		users:      users,
		onboarding: onboarding,
		cache:      cache,
		cacheKey:   cacheKey,
		ttl:        ttl,
		now:        time.Now,
	}
}

// EnsureUser 按外部身份查找用户，不存在时创建
func (s *Service) EnsureUser(ctx context.Context, externalID, authSource string) (*entity.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	user, err := s.users.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load user")
	}
	if user != nil {
		return user, nil
	}

	user = entity.NewUser(externalID, authSource)
	if err := s.users.Create(ctx, user); err != nil {
		// 并发首次请求可能已经创建
		if existing, getErr := s.users.GetByExternalID(ctx, externalID); getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create user")
	}
	logger.Info(ctx, "user created", "user_id", user.ID, "auth_source", authSource)
	return user, nil
}

// GetUser 获取用户
func (s *Service) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load user")
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

// GetOnboarding 获取问卷，未填写时返回 ErrOnboardingNotFound
func (s *Service) GetOnboarding(ctx context.Context, userID string) (*entity.OnboardingProfile, error) {
	p, err := s.onboarding.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load onboarding")
	}
	if p == nil {
		return nil, apperrors.ErrOnboardingNotFound
	}
	return p, nil
}

// SaveOnboarding 覆盖保存问卷并失效画像缓存
func (s *Service) SaveOnboarding(ctx context.Context, userID string, answers map[string]string) (*entity.OnboardingProfile, error) {
	if len(answers) > maxAnswers {
		return nil, apperrors.ErrInvalidParam.WithDetail(fmt.Sprintf("at most %d answers", maxAnswers))
	}
	for k, v := range answers {
		if len(k) > maxAnswerKeyLen || len(v) > maxAnswerLen {
			return nil, apperrors.ErrInvalidParam.WithDetail("answer too long: " + k)
		}
	}

	p := &entity.OnboardingProfile{UserID: userID, Answers: answers}
	p.Answers = p.Normalized()
	if p.Answers == nil {
		p.Answers = map[string]string{}
	}
	if err := s.onboarding.Upsert(ctx, p); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to save onboarding")
	}
	s.invalidate(ctx, userID)
	return p, nil
}

// Profile 返回生成用的用户画像，未填写问卷时返回 nil。
// 缓存异常时降级为直接读库。
func (s *Service) Profile(ctx context.Context, userID string) (post.Profile, error) {
	load := func() (any, error) {
		p, err := s.onboarding.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		return p.Normalized(), nil
	}

	if s.cache == nil {
		v, err := load()
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load profile")
		}
		return toProfile(v.(map[string]string)), nil
	}

	raw, err := s.cache.GetOrLoadSafe(ctx, s.cacheKey(userID), s.ttl, load)
	if err != nil {
		logger.Warn(ctx, "profile cache unavailable, reading database", "error", err)
		v, loadErr := load()
		if loadErr != nil {
			return nil, apperrors.Wrap(loadErr, apperrors.CodeDatabaseError, "failed to load profile")
		}
		return toProfile(v.(map[string]string)), nil
	}

	var answers map[string]string
	if err := json.Unmarshal(raw, &answers); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "failed to decode profile")
	}
	return toProfile(answers), nil
}

// ConnectLinkedIn 绑定移动端获取的 LinkedIn 凭据
func (s *Service) ConnectLinkedIn(ctx context.Context, userID, memberURN, accessToken string, expiresIn time.Duration) (*entity.User, error) {
	memberURN = strings.TrimSpace(memberURN)
	accessToken = strings.TrimSpace(accessToken)
	if memberURN == "" || accessToken == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("member_urn and access_token are required")
	}
	if !strings.HasPrefix(memberURN, "urn:li:person:") && !strings.HasPrefix(memberURN, "urn:li:organization:") {
		return nil, apperrors.ErrInvalidParam.WithDetail("member_urn must be a person or organization URN")
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var expiresAt *time.Time
	if expiresIn > 0 {
		t := s.now().Add(expiresIn)
		expiresAt = &t
	}
	user.ConnectLinkedIn(memberURN, accessToken, expiresAt)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update user")
	}
	return user, nil
}

// DisconnectLinkedIn 解除绑定
func (s *Service) DisconnectLinkedIn(ctx context.Context, userID string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	user.DisconnectLinkedIn()
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update user")
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey(userID)); err != nil {
		logger.Warn(ctx, "failed to invalidate profile cache", "error", err)
	}
}

func toProfile(m map[string]string) post.Profile {
	if len(m) == 0 {
		return nil
	}
	return post.Profile(m)
}
