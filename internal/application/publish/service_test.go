package publish

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/repository"
	"linkedin-post-ai-api/internal/infrastructure/linkedin"
	"linkedin-post-ai-api/internal/infrastructure/messaging"
	apperrors "linkedin-post-ai-api/pkg/errors"
)

type memoryPosts struct {
	items map[string]*entity.Post
}

func (m *memoryPosts) Create(_ context.Context, p *entity.Post) error {
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memoryPosts) GetByID(_ context.Context, id string) (*entity.Post, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memoryPosts) GetForUser(ctx context.Context, userID, id string) (*entity.Post, error) {
	p, _ := m.GetByID(ctx, id)
	if p == nil || p.UserID != userID {
		return nil, nil
	}
	return p, nil
}

func (m *memoryPosts) Update(_ context.Context, p *entity.Post) error {
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memoryPosts) Delete(context.Context, string, string) error { return nil }

func (m *memoryPosts) ListByUser(context.Context, string, *repository.PostFilter, repository.Pagination) (*repository.PagedResult[*entity.Post], error) {
	return nil, nil
}

func (m *memoryPosts) TransitionStatus(_ context.Context, id string, from []entity.PostStatus, to entity.PostStatus) (bool, error) {
	p, ok := m.items[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if p.Status == f {
			p.Status = to
			return true, nil
		}
	}
	return false, nil
}

type memoryUsers map[string]*entity.User

func (m memoryUsers) Create(context.Context, *entity.User) error { return nil }
func (m memoryUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	return m[id], nil
}
func (m memoryUsers) GetByExternalID(context.Context, string) (*entity.User, error) { return nil, nil }
func (m memoryUsers) Update(context.Context, *entity.User) error                    { return nil }

type fakePublisher struct {
	id    string
	err   error
	calls int
	last  linkedin.PublishRequest
}

func (f *fakePublisher) Publish(_ context.Context, req linkedin.PublishRequest) (string, error) {
	f.calls++
	f.last = req
	return f.id, f.err
}

type fakeQueue struct {
	jobs []*messaging.PostPublishMessage
	err  error
}

func (q *fakeQueue) PublishPostPublish(_ context.Context, job *messaging.PostPublishMessage) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.jobs = append(q.jobs, job)
	return "1-0", nil
}

func fixture(status entity.PostStatus) (*memoryPosts, memoryUsers) {
	p := entity.NewPost("u-1", "topic", "The hook")
	p.ID = "p-1"
	p.Status = status
	p.Sections = entity.PostSections{Intro: "i", MainInsight: "m", SupportingDetail: "s", ShiftTakeaway: "t", CTA: "c"}
	posts := &memoryPosts{items: map[string]*entity.Post{p.ID: p}}

	u := entity.NewUser("ext-1", "jwt")
	u.ID = "u-1"
	u.ConnectLinkedIn("urn:li:person:abc", "tok", nil)
	return posts, memoryUsers{u.ID: u}
}

func TestService_PublishSync(t *testing.T) {
	posts, users := fixture(entity.PostStatusDraft)
	pub := &fakePublisher{id: "urn:li:share:1"}
	svc := NewService(posts, users, pub, nil, true)

	res, err := svc.Publish(context.Background(), "u-1", "p-1")
	require.NoError(t, err)
	assert.False(t, res.Queued)
	assert.Equal(t, entity.PostStatusPublished, res.Post.Status)

	stored := posts.items["p-1"]
	assert.Equal(t, entity.PostStatusPublished, stored.Status)
	assert.Equal(t, "urn:li:share:1", stored.LinkedInPostID)
	assert.Equal(t, 1, stored.PublishAttempt)
	assert.NotNil(t, stored.PublishedAt)

	assert.Equal(t, "urn:li:person:abc", pub.last.AuthorURN)
	assert.Equal(t, "The hook\n\ni\n\nm\n\ns\n\nt\n\nc", pub.last.Text)

	_, err = svc.Publish(context.Background(), "u-1", "p-1")
	assert.Equal(t, apperrors.CodePostAlreadyPublished, apperrors.AsAppError(err).Code)
	assert.Equal(t, 1, pub.calls)
}

func TestService_PublishFailureLeavesRetryableDraft(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code apperrors.ErrorCode
	}{
		{"token", fmt.Errorf("%w: 401", linkedin.ErrTokenRejected), apperrors.CodeLinkedInTokenReject},
		{"server", fmt.Errorf("%w: 500", linkedin.ErrPublishFailed), apperrors.CodePublishFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, users := fixture(entity.PostStatusDraft)
			svc := NewService(posts, users, &fakePublisher{err: tt.err}, nil, false)

			_, err := svc.Publish(context.Background(), "u-1", "p-1")
			assert.Equal(t, tt.code, apperrors.AsAppError(err).Code)

			stored := posts.items["p-1"]
			assert.Equal(t, entity.PostStatusFailed, stored.Status)
			assert.NotEmpty(t, stored.PublishError)
			assert.True(t, stored.IsEditable())
		})
	}
}

func TestService_PublishPreconditions(t *testing.T) {
	ctx := context.Background()

	posts, users := fixture(entity.PostStatusDraft)
	users["u-1"].DisconnectLinkedIn()
	pub := &fakePublisher{id: "x"}
	_, err := NewService(posts, users, pub, nil, false).Publish(ctx, "u-1", "p-1")
	assert.ErrorIs(t, err, apperrors.ErrLinkedInNotLinked)

	posts, users = fixture(entity.PostStatusDraft)
	expired := time.Now().Add(-time.Hour)
	users["u-1"].LinkedInTokenExpiresAt = &expired
	_, err = NewService(posts, users, pub, nil, false).Publish(ctx, "u-1", "p-1")
	assert.ErrorIs(t, err, apperrors.ErrLinkedInNotLinked)

	posts, users = fixture(entity.PostStatusDraft)
	posts.items["p-1"].Sections.CTA = ""
	_, err = NewService(posts, users, pub, nil, false).Publish(ctx, "u-1", "p-1")
	assert.Equal(t, apperrors.CodePostIncomplete, apperrors.AsAppError(err).Code)

	posts, users = fixture(entity.PostStatusPublishing)
	_, err = NewService(posts, users, pub, nil, false).Publish(ctx, "u-1", "p-1")
	assert.Equal(t, apperrors.CodePostAlreadyPublished, apperrors.AsAppError(err).Code)

	_, err = NewService(posts, users, pub, nil, false).Publish(ctx, "u-2", "p-1")
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)

	assert.Zero(t, pub.calls)
}

func TestService_PublishAsyncAndHandleJob(t *testing.T) {
	posts, users := fixture(entity.PostStatusFailed)
	pub := &fakePublisher{id: "urn:li:share:9"}
	queue := &fakeQueue{}
	svc := NewService(posts, users, pub, queue, true)
	ctx := context.Background()

	res, err := svc.Publish(ctx, "u-1", "p-1")
	require.NoError(t, err)
	assert.True(t, res.Queued)
	assert.Zero(t, pub.calls)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, entity.PostStatusPublishing, posts.items["p-1"].Status)

	msg, err := messaging.NewMessage("p-1:1", messaging.MessageTypePostPublish, "u-1", queue.jobs[0])
	require.NoError(t, err)
	require.NoError(t, svc.HandleJob(ctx, msg))
	assert.Equal(t, entity.PostStatusPublished, posts.items["p-1"].Status)

	// 重复投递不会再次发布
	require.NoError(t, svc.HandleJob(ctx, msg))
	assert.Equal(t, 1, pub.calls)
}

func TestService_HandleJobRetriesTransientFailures(t *testing.T) {
	posts, users := fixture(entity.PostStatusDraft)
	pub := &fakePublisher{err: fmt.Errorf("%w: 503", linkedin.ErrPublishFailed)}
	svc := NewService(posts, users, pub, &fakeQueue{}, true)
	ctx := context.Background()

	_, err := svc.Publish(ctx, "u-1", "p-1")
	require.NoError(t, err)
	msg, _ := messaging.NewMessage("p-1:1", messaging.MessageTypePostPublish, "u-1",
		messaging.PostPublishMessage{PostID: "p-1", UserID: "u-1", Attempt: 1})

	err = svc.HandleJob(ctx, msg)
	assert.True(t, errors.Is(err, linkedin.ErrPublishFailed))
	assert.Equal(t, entity.PostStatusFailed, posts.items["p-1"].Status)

	pub.err = nil
	pub.id = "urn:li:share:2"
	require.NoError(t, svc.HandleJob(ctx, msg))
	assert.Equal(t, entity.PostStatusPublished, posts.items["p-1"].Status)
	assert.Equal(t, 2, pub.calls)
}

func TestService_HandleJobTokenRejectIsFinal(t *testing.T) {
	posts, users := fixture(entity.PostStatusPublishing)
	posts.items["p-1"].PublishAttempt = 1
	svc := NewService(posts, users, &fakePublisher{err: linkedin.ErrTokenRejected}, &fakeQueue{}, true)
	msg, _ := messaging.NewMessage("p-1:1", messaging.MessageTypePostPublish, "u-1",
		messaging.PostPublishMessage{PostID: "p-1", UserID: "u-1", Attempt: 1})

	assert.NoError(t, svc.HandleJob(context.Background(), msg))
	assert.Equal(t, entity.PostStatusFailed, posts.items["p-1"].Status)
}

func TestService_EnqueueFailureMarksFailed(t *testing.T) {
	posts, users := fixture(entity.PostStatusDraft)
	svc := NewService(posts, users, &fakePublisher{}, &fakeQueue{err: errors.New("redis down")}, true)

	_, err := svc.Publish(context.Background(), "u-1", "p-1")
	assert.Equal(t, apperrors.CodeQueueError, apperrors.AsAppError(err).Code)
	assert.Equal(t, entity.PostStatusFailed, posts.items["p-1"].Status)
}

type recordingTx struct {
	calls int
	err   error
}

func (r *recordingTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	if r.err != nil {
		return r.err
	}
	return fn(ctx)
}

func TestService_PublishLocksInTransaction(t *testing.T) {
	posts, users := fixture(entity.PostStatusDraft)
	tx := &recordingTx{}
	queue := &fakeQueue{}
	svc := NewService(posts, users, &fakePublisher{}, queue, true).WithTransactor(tx)

	res, err := svc.Publish(context.Background(), "u-1", "p-1")
	require.NoError(t, err)
	assert.True(t, res.Queued)
	assert.Equal(t, 1, tx.calls)
	assert.Equal(t, 1, posts.items["p-1"].PublishAttempt)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, 1, queue.jobs[0].Attempt)
}

func TestService_PublishTransactionError(t *testing.T) {
	posts, users := fixture(entity.PostStatusDraft)
	pub := &fakePublisher{}
	svc := NewService(posts, users, pub, nil, false).WithTransactor(&recordingTx{err: errors.New("begin failed")})

	_, err := svc.Publish(context.Background(), "u-1", "p-1")
	require.Error(t, err)
	assert.Equal(t, 0, pub.calls)
	assert.Equal(t, entity.PostStatusDraft, posts.items["p-1"].Status)
}
