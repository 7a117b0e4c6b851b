// Package publish 将草稿发布到 LinkedIn
package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linkedin-post-ai-api/internal/application/post"
	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/repository"
	"linkedin-post-ai-api/internal/infrastructure/linkedin"
	"linkedin-post-ai-api/internal/infrastructure/messaging"
	apperrors "linkedin-post-ai-api/pkg/errors"
	"linkedin-post-ai-api/pkg/logger"
	"linkedin-post-ai-api/pkg/metrics"
)

// Publisher LinkedIn 发布能力
type Publisher interface {
	Publish(ctx context.Context, req linkedin.PublishRequest) (string, error)
}

// JobQueue 异步发布队列
type JobQueue interface {
	PublishPostPublish(ctx context.Context, job *messaging.PostPublishMessage) (string, error)
}

// 发布模式
const (
	ModeSync  = "sync"
	ModeAsync = "async"
)

// Result 发布结果
type Result struct {
	Post *entity.Post
	// Queued 为 true 表示已入队，结果由 worker 回写
	Queued bool
}

// Service 发布服务
type Service struct {
	posts     repository.PostRepository
	users     repository.UserRepository
	publisher Publisher
	queue     JobQueue
	tx        repository.Transactor
	async     bool
	now       func() time.Time
}

// NewService 创建发布服务。queue 为 nil 时总是同步发布
func NewService(posts repository.PostRepository, users repository.UserRepository, publisher Publisher, queue JobQueue, async bool) *Service {
	return &Service{
		posts:     posts,
		users:     users,
		publisher: publisher,
		queue:     queue,
		async:     async && queue != nil,
		now:       time.Now,
	}
}

// WithTransactor 设置事务管理器，加锁与记录发布次数在同一事务内完成
func (s *Service) WithTransactor(tx repository.Transactor) *Service {
	s.tx = tx
	return s
}

// Publish 发布草稿。同一草稿同时只有一个请求能进入 publishing 状态
func (s *Service) Publish(ctx context.Context, userID, postID string) (*Result, error) {
	p, err := s.posts.GetForUser(ctx, userID, postID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load post")
	}
	if p == nil {
		return nil, apperrors.ErrPostNotFound
	}
	if !p.IsEditable() {
		return nil, apperrors.ErrPostAlreadyPublished.WithDetail("status: " + string(p.Status))
	}
	if err := p.Sections.Validate(); err != nil {
		return nil, apperrors.ErrPostIncomplete.WithDetail(err.Error())
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load user")
	}
	if user == nil || !user.LinkedInConnected(s.now()) {
		return nil, apperrors.ErrLinkedInNotLinked
	}

	if err := s.lock(ctx, p); err != nil {
		return nil, err
	}

	if s.async {
		job := &messaging.PostPublishMessage{
			PostID:    p.ID,
			UserID:    userID,
			Attempt:   p.PublishAttempt,
			RequestID: logger.RequestIDFromContext(ctx),
		}
		if _, err := s.queue.PublishPostPublish(ctx, job); err != nil {
			s.fail(ctx, p, "enqueue failed: "+err.Error(), ModeAsync)
			return nil, apperrors.Wrap(err, apperrors.CodeQueueError, "failed to enqueue publish job")
		}
		logger.Info(ctx, "publish job queued", "post_id", p.ID, "attempt", p.PublishAttempt)
		return &Result{Post: p, Queued: true}, nil
	}

	if err := s.deliver(ctx, p, user, ModeSync); err != nil {
		return nil, err
	}
	return &Result{Post: p}, nil
}

// lock 将草稿从 draft/failed 切到 publishing 并递增发布次数
func (s *Service) lock(ctx context.Context, p *entity.Post) error {
	run := func(ctx context.Context) error {
		ok, err := s.posts.TransitionStatus(ctx, p.ID,
			[]entity.PostStatus{entity.PostStatusDraft, entity.PostStatusFailed}, entity.PostStatusPublishing)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to lock post")
		}
		if !ok {
			return apperrors.ErrConflict.WithDetail("post is being published")
		}
		p.MarkPublishing()
		if err := s.posts.Update(ctx, p); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update post")
		}
		return nil
	}
	if s.tx == nil {
		return run(ctx)
	}
	return s.tx.WithTransaction(ctx, run)
}

// HandleJob 处理异步发布任务，返回错误时消息留在队列中重试
func (s *Service) HandleJob(ctx context.Context, msg *messaging.Message) error {
	var job messaging.PostPublishMessage
	if err := msg.UnmarshalPayload(&job); err != nil {
		logger.Error(ctx, "invalid publish job payload", err)
		return nil
	}

	p, err := s.posts.GetByID(ctx, job.PostID)
	if err != nil {
		return fmt.Errorf("load post: %w", err)
	}
	if p == nil || p.UserID != job.UserID {
		logger.Warn(ctx, "publish job references missing post", "post_id", job.PostID)
		return nil
	}
	// 重复投递或已被新的请求接管
	if p.PublishAttempt != job.Attempt || (p.Status != entity.PostStatusPublishing && p.Status != entity.PostStatusFailed) {
		logger.Info(ctx, "stale publish job skipped", "status", p.Status, "attempt", job.Attempt)
		return nil
	}
	// 上次投递失败后的重试
	if p.Status == entity.PostStatusFailed {
		ok, err := s.posts.TransitionStatus(ctx, p.ID, []entity.PostStatus{entity.PostStatusFailed}, entity.PostStatusPublishing)
		if err != nil {
			return fmt.Errorf("lock post: %w", err)
		}
		if !ok {
			return nil
		}
		p.Status = entity.PostStatusPublishing
	}

	user, err := s.users.GetByID(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if user == nil || !user.LinkedInConnected(s.now()) {
		s.fail(ctx, p, "linkedin account not connected", ModeAsync)
		return nil
	}

	// 令牌被拒不重试；其余发布失败返回错误交由队列退避重投，草稿期间保持 failed
	err = s.deliver(ctx, p, user, ModeAsync)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code == apperrors.CodePublishFailed {
		return err
	}
	return nil
}

// deliver 调用 LinkedIn 并回写结果
func (s *Service) deliver(ctx context.Context, p *entity.Post, user *entity.User, mode string) error {
	start := time.Now()
	linkedInID, err := s.publisher.Publish(ctx, linkedin.PublishRequest{
		AuthorURN:   user.LinkedInMemberURN,
		AccessToken: user.LinkedInAccessToken,
		Text:        post.ComposePostText(p.Hook, p.Sections),
	})
	metrics.PublishDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		logger.Error(ctx, "linkedin publish failed", err, "post_id", p.ID, "mode", mode)
		s.fail(ctx, p, err.Error(), mode)
		if errors.Is(err, linkedin.ErrTokenRejected) {
			return apperrors.Wrap(err, apperrors.CodeLinkedInTokenReject, "linkedin rejected the access token")
		}
		return apperrors.Wrap(err, apperrors.CodePublishFailed, "publish to linkedin failed")
	}

	p.MarkPublished(linkedInID)
	if err := s.posts.Update(ctx, p); err != nil {
		// 已经发出，不能回退为可重试状态
		logger.Error(ctx, "failed to record published post", err, "post_id", p.ID, "linkedin_post_id", linkedInID)
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "published but failed to record result")
	}
	metrics.PublishTotal.WithLabelValues(mode, "success").Inc()
	logger.Info(ctx, "post published", "post_id", p.ID, "linkedin_post_id", linkedInID, "mode", mode)
	return nil
}

func (s *Service) fail(ctx context.Context, p *entity.Post, reason, mode string) {
	metrics.PublishTotal.WithLabelValues(mode, "failed").Inc()
	p.MarkFailed(reason)
	if err := s.posts.Update(ctx, p); err != nil {
		logger.Error(ctx, "failed to record publish failure", err, "post_id", p.ID)
	}
}
