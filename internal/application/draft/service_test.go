package draft

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkedin-post-ai-api/internal/application/post"
	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/repository"
	apperrors "linkedin-post-ai-api/pkg/errors"
)

type memoryPosts struct {
	items   map[string]*entity.Post
	updates int
	seq     int
}

func newMemoryPosts() *memoryPosts {
	return &memoryPosts{items: map[string]*entity.Post{}}
}

func (m *memoryPosts) Create(_ context.Context, p *entity.Post) error {
	m.seq++
	p.ID = fmt.Sprintf("p-%d", m.seq)
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
	m.updates++
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memoryPosts) Delete(_ context.Context, userID, id string) error {
	if p, ok := m.items[id]; ok && p.UserID == userID {
		delete(m.items, id)
	}
	return nil
}

func (m *memoryPosts) ListByUser(_ context.Context, userID string, filter *repository.PostFilter, pg repository.Pagination) (*repository.PagedResult[*entity.Post], error) {
	var out []*entity.Post
	for _, p := range m.items {
		if p.UserID == userID && (filter == nil || filter.Status == p.Status) {
			out = append(out, p)
		}
	}
	return repository.NewPagedResult(out, int64(len(out)), pg), nil
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

type stubGenerator struct {
	hooks      []string
	hooksErr   error
	framework  entity.Framework
	regenText  string
	regenErr   error
	regenCalls int
	lastFw     *entity.Framework
	profile    post.Profile
}

func (g *stubGenerator) GenerateHooks(_ context.Context, _ string, profile post.Profile) ([]string, error) {
	g.profile = profile
	return g.hooks, g.hooksErr
}

func (g *stubGenerator) RecommendFramework(context.Context, string, string) entity.Framework {
	return g.framework
}

func (g *stubGenerator) RegenerateSection(_ context.Context, _, _, _ string, _ entity.PostSections, fw *entity.Framework) (string, error) {
	g.regenCalls++
	g.lastFw = fw
	return g.regenText, g.regenErr
}

type stubPipeline struct {
	out *post.GeneratedPost
	err error
	in  post.GeneratePostInput
}

func (p *stubPipeline) GeneratePost(_ context.Context, in post.GeneratePostInput) (*post.GeneratedPost, error) {
	p.in = in
	return p.out, p.err
}

type stubProfiles struct {
	profile post.Profile
	err     error
}

func (s stubProfiles) Profile(context.Context, string) (post.Profile, error) {
	return s.profile, s.err
}

func fullSections() entity.PostSections {
	return entity.PostSections{
		Intro:            "intro",
		MainInsight:      "insight",
		SupportingDetail: "detail",
		ShiftTakeaway:    "shift",
		CTA:              "cta",
	}
}

func newService(gen *stubGenerator, pipe *stubPipeline, posts *memoryPosts) *Service {
	return NewService(gen, pipe, posts, stubProfiles{profile: post.Profile{"role": "cto"}})
}

func TestService_Generate(t *testing.T) {
	fw := entity.FrameworkMythTruthProof
	pipe := &stubPipeline{out: &post.GeneratedPost{Sections: fullSections(), DesignIdea: "idea", Framework: &fw, Refined: true}}
	posts := newMemoryPosts()
	svc := newService(&stubGenerator{}, pipe, posts)

	p, err := svc.Generate(context.Background(), "u-1", GenerateInput{
		Topic:         " hiring ",
		Hook:          "Stop hiring for culture fit.",
		HookOptions:   []string{"a", " ", "b"},
		AutoFramework: true,
		Preview:       true,
	})
	require.NoError(t, err)

	assert.Equal(t, "hiring", pipe.in.Topic)
	assert.True(t, pipe.in.SkipRefine)
	assert.True(t, pipe.in.AutoFramework)
	assert.Equal(t, "cto", pipe.in.Profile["role"])

	stored := posts.items[p.ID]
	require.NotNil(t, stored)
	assert.Equal(t, entity.PostStatusDraft, stored.Status)
	assert.Equal(t, string(fw), stored.Framework)
	assert.Equal(t, []string{"a", "b"}, []string(stored.HookOptions))
	assert.Equal(t, "idea", stored.DesignIdea)
	assert.True(t, stored.Refined)
}

func TestService_GenerateMapsErrors(t *testing.T) {
	tests := []struct {
		err  error
		code apperrors.ErrorCode
	}{
		{fmt.Errorf("%w: boom", post.ErrProviderUnavailable), apperrors.CodeProviderUnavailable},
		{fmt.Errorf("%w: bad json", post.ErrMalformedGenerationOutput), apperrors.CodeMalformedOutput},
		{fmt.Errorf("%w: missing cta", post.ErrIncompleteGeneration), apperrors.CodeIncompleteGeneration},
		{fmt.Errorf("%w: unknown framework", post.ErrInvalidInput), apperrors.CodeInvalidParam},
		{context.DeadlineExceeded, apperrors.CodeServiceUnavailable},
		{fmt.Errorf("%w: %w", post.ErrProviderUnavailable, context.DeadlineExceeded), apperrors.CodeServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			posts := newMemoryPosts()
			svc := newService(&stubGenerator{}, &stubPipeline{err: tt.err}, posts)
			_, err := svc.Generate(context.Background(), "u-1", GenerateInput{Topic: "t", Hook: "h"})
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.AsAppError(err).Code)
			assert.ErrorIs(t, err, tt.err)
			assert.Empty(t, posts.items)
		})
	}
}

func TestService_GenerateValidatesInput(t *testing.T) {
	pipe := &stubPipeline{}
	svc := newService(&stubGenerator{}, pipe, newMemoryPosts())

	_, err := svc.Generate(context.Background(), "u-1", GenerateInput{Topic: "", Hook: "h"})
	assert.Equal(t, apperrors.CodeInvalidParam, apperrors.AsAppError(err).Code)
	assert.Empty(t, pipe.in.Topic)
}

func TestService_SuggestHooksToleratesProfileFailure(t *testing.T) {
	gen := &stubGenerator{hooks: []string{"a", "b", "c"}}
	svc := NewService(gen, &stubPipeline{}, newMemoryPosts(), stubProfiles{err: fmt.Errorf("redis down")})

	hooks, err := svc.SuggestHooks(context.Background(), "u-1", "remote work")
	require.NoError(t, err)
	assert.Len(t, hooks, 3)
	assert.Nil(t, gen.profile)
}

func seedDraft(posts *memoryPosts, status entity.PostStatus) *entity.Post {
	p := entity.NewPost("u-1", "topic", "hook")
	p.Sections = fullSections()
	p.Framework = string(entity.FrameworkStoryLessonApplication)
	p.Status = status
	_ = posts.Create(context.Background(), p)
	return posts.items[p.ID]
}

func TestService_RegenerateSection(t *testing.T) {
	posts := newMemoryPosts()
	p := seedDraft(posts, entity.PostStatusDraft)
	gen := &stubGenerator{regenText: "new cta"}
	svc := newService(gen, &stubPipeline{}, posts)

	got, err := svc.RegenerateSection(context.Background(), "u-1", p.ID, "cta")
	require.NoError(t, err)
	assert.Equal(t, "new cta", got.Sections.CTA)
	assert.Equal(t, "intro", got.Sections.Intro)
	assert.Equal(t, 2, got.Version)
	require.NotNil(t, gen.lastFw)
	assert.Equal(t, entity.FrameworkStoryLessonApplication, *gen.lastFw)
	assert.Equal(t, "new cta", posts.items[p.ID].Sections.CTA)
}

func TestService_RegenerateSectionRejections(t *testing.T) {
	posts := newMemoryPosts()
	draftPost := seedDraft(posts, entity.PostStatusDraft)
	published := seedDraft(posts, entity.PostStatusPublished)
	gen := &stubGenerator{regenText: "x"}
	svc := newService(gen, &stubPipeline{}, posts)
	ctx := context.Background()

	_, err := svc.RegenerateSection(ctx, "u-1", draftPost.ID, "outro")
	assert.Equal(t, apperrors.CodeInvalidSectionKey, apperrors.AsAppError(err).Code)

	_, err = svc.RegenerateSection(ctx, "u-1", published.ID, "cta")
	assert.Equal(t, apperrors.CodePostAlreadyPublished, apperrors.AsAppError(err).Code)

	_, err = svc.RegenerateSection(ctx, "u-2", draftPost.ID, "cta")
	assert.Equal(t, apperrors.CodePostNotFound, apperrors.AsAppError(err).Code)

	assert.Zero(t, gen.regenCalls)
}

func TestService_Update(t *testing.T) {
	posts := newMemoryPosts()
	p := seedDraft(posts, entity.PostStatusFailed)
	svc := newService(&stubGenerator{}, &stubPipeline{}, posts)
	ctx := context.Background()

	hook := "  better hook "
	got, err := svc.Update(ctx, "u-1", p.ID, UpdateInput{Hook: &hook, Sections: map[string]string{"intro": "edited"}})
	require.NoError(t, err)
	assert.Equal(t, "better hook", got.Hook)
	assert.Equal(t, "edited", got.Sections.Intro)
	assert.False(t, got.Refined)

	_, err = svc.Update(ctx, "u-1", p.ID, UpdateInput{Sections: map[string]string{"cta": " "}})
	assert.Equal(t, apperrors.CodePostIncomplete, apperrors.AsAppError(err).Code)

	_, err = svc.Update(ctx, "u-1", p.ID, UpdateInput{Sections: map[string]string{"outro": "x"}})
	assert.Equal(t, apperrors.CodeInvalidSectionKey, apperrors.AsAppError(err).Code)
	assert.Equal(t, "edited", posts.items[p.ID].Sections.Intro)
}

func TestService_UpdateCountsCharactersNotBytes(t *testing.T) {
	posts := newMemoryPosts()
	p := seedDraft(posts, entity.PostStatusDraft)
	svc := newService(&stubGenerator{}, &stubPipeline{}, posts)
	ctx := context.Background()

	wide := strings.Repeat("远", maxSectionLen)
	got, err := svc.Update(ctx, "u-1", p.ID, UpdateInput{Sections: map[string]string{"intro": wide}})
	require.NoError(t, err)
	assert.Equal(t, wide, got.Sections.Intro)

	_, err = svc.Update(ctx, "u-1", p.ID, UpdateInput{Sections: map[string]string{"intro": wide + "远"}})
	assert.Equal(t, apperrors.CodeInvalidParam, apperrors.AsAppError(err).Code)
}

func TestService_PreviewAndDelete(t *testing.T) {
	posts := newMemoryPosts()
	p := seedDraft(posts, entity.PostStatusDraft)
	svc := newService(&stubGenerator{}, &stubPipeline{}, posts)
	ctx := context.Background()

	text, err := svc.Preview(ctx, "u-1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "hook\n\nintro\n\ninsight\n\ndetail\n\nshift\n\ncta", text)

	require.NoError(t, svc.Delete(ctx, "u-1", p.ID))
	_, err = svc.Get(ctx, "u-1", p.ID)
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
}

func TestService_ListFiltersByStatus(t *testing.T) {
	posts := newMemoryPosts()
	seedDraft(posts, entity.PostStatusDraft)
	seedDraft(posts, entity.PostStatusPublished)
	svc := newService(&stubGenerator{}, &stubPipeline{}, posts)

	all, err := svc.List(context.Background(), "u-1", "", repository.NewPagination(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)

	published, err := svc.List(context.Background(), "u-1", entity.PostStatusPublished, repository.NewPagination(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, published.Total)
}
