package profile

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkedin-post-ai-api/internal/domain/entity"
	apperrors "linkedin-post-ai-api/pkg/errors"
)

type memoryUsers struct {
	byID     map[string]*entity.User
	createFn func(*entity.User) error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[string]*entity.User{}}
}

func (m *memoryUsers) Create(_ context.Context, u *entity.User) error {
	if m.createFn != nil {
		if err := m.createFn(u); err != nil {
			return err
		}
	}
	u.ID = "u-" + u.ExternalID
	m.byID[u.ID] = u
	return nil
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	return m.byID[id], nil
}

func (m *memoryUsers) GetByExternalID(_ context.Context, ext string) (*entity.User, error) {
	for _, u := range m.byID {
		if u.ExternalID == ext {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memoryUsers) Update(_ context.Context, u *entity.User) error {
	m.byID[u.ID] = u
	return nil
}

type memoryOnboarding struct {
	items map[string]*entity.OnboardingProfile
	gets  int
}

func (m *memoryOnboarding) Get(_ context.Context, userID string) (*entity.OnboardingProfile, error) {
	m.gets++
	return m.items[userID], nil
}

func (m *memoryOnboarding) Upsert(_ context.Context, p *entity.OnboardingProfile) error {
	m.items[p.UserID] = p
	return nil
}

type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	failing bool
}

func (c *memoryCache) GetOrLoadSafe(_ context.Context, key string, _ time.Duration, loader func() (any, error)) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return nil, errors.New("cache down")
	}
	if b, ok := c.data[key]; ok {
		return b, nil
	}
	v, err := loader()
	if err != nil {
		return nil, err
	}
	b, _ := json.Marshal(v)
	c.data[key] = b
	return b, nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func newTestService() (*Service, *memoryUsers, *memoryOnboarding, *memoryCache) {
	users := newMemoryUsers()
	onboarding := &memoryOnboarding{items: map[string]*entity.OnboardingProfile{}}
	cache := &memoryCache{data: map[string][]byte{}}
	return NewService(users, onboarding, cache, nil, time.Minute), users, onboarding, cache
}

func TestService_EnsureUser(t *testing.T) {
	svc, users, _, _ := newTestService()
	ctx := context.Background()

	u1, err := svc.EnsureUser(ctx, "device-1", "device")
	require.NoError(t, err)
	u2, err := svc.EnsureUser(ctx, "device-1", "device")
	require.NoError(t, err)
	assert.Equal(t, u1.ID, u2.ID)
	assert.Len(t, users.byID, 1)

	_, err = svc.EnsureUser(ctx, " ", "device")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestService_EnsureUserCreateFailure(t *testing.T) {
	svc, users, _, _ := newTestService()
	users.createFn = func(*entity.User) error { return errors.New("db down") }

	_, err := svc.EnsureUser(context.Background(), "ext", "jwt")
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.AsAppError(err).Code)
}

func TestService_ProfileCachedAndInvalidated(t *testing.T) {
	svc, _, onboarding, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Profile(ctx, "u-1")
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = svc.SaveOnboarding(ctx, "u-1", map[string]string{"role": " founder ", "empty": " "})
	require.NoError(t, err)

	p, err = svc.Profile(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "founder", p["role"])
	_, ok := p["empty"]
	assert.False(t, ok)

	gets := onboarding.gets
	_, err = svc.Profile(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, gets, onboarding.gets)
}

func TestService_ProfileFallsBackWhenCacheFails(t *testing.T) {
	svc, _, onboarding, cache := newTestService()
	onboarding.items["u-1"] = &entity.OnboardingProfile{UserID: "u-1", Answers: map[string]string{"industry": "fintech"}}
	cache.failing = true

	p, err := svc.Profile(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "fintech", p["industry"])
}

func TestService_GetOnboardingNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.GetOnboarding(context.Background(), "u-1")
	assert.ErrorIs(t, err, apperrors.ErrOnboardingNotFound)
}

func TestService_SaveOnboardingLimits(t *testing.T) {
	svc, _, _, _ := newTestService()
	answers := map[string]string{}
	for i := 0; i <= maxAnswers; i++ {
		answers[string(rune('a'+i))] = "x"
	}
	_, err := svc.SaveOnboarding(context.Background(), "u-1", answers)
	assert.Equal(t, apperrors.CodeInvalidParam, apperrors.AsAppError(err).Code)
}

func TestService_LinkedInConnection(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	u, err := svc.EnsureUser(ctx, "ext", "jwt")
	require.NoError(t, err)

	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err = svc.ConnectLinkedIn(ctx, u.ID, "person:abc", "tok", 0)
	assert.Equal(t, apperrors.CodeInvalidParam, apperrors.AsAppError(err).Code)

	got, err := svc.ConnectLinkedIn(ctx, u.ID, "urn:li:person:abc", "tok", time.Hour)
	require.NoError(t, err)
	require.NotNil(t, got.LinkedInTokenExpiresAt)
	assert.Equal(t, now.Add(time.Hour), *got.LinkedInTokenExpiresAt)
	assert.True(t, got.LinkedInConnected(now))
	assert.False(t, got.LinkedInConnected(now.Add(2*time.Hour)))

	require.NoError(t, svc.DisconnectLinkedIn(ctx, u.ID))
	got, err = svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.LinkedInConnected(now))

	assert.ErrorIs(t, svc.DisconnectLinkedIn(ctx, "missing"), apperrors.ErrUserNotFound)
}
