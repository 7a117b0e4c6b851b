package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/repository"
)

func newMockClient(t *testing.T) (*Client, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	client, err := NewClientFromConn(conn)
	require.NoError(t, err)
	return client, mock
}

var postColumns = []string{
	"id", "user_id", "topic", "hook", "hook_options", "framework", "sections", "design_idea",
	"refined", "status", "linkedin_post_id", "publish_error", "publish_attempt", "published_at",
	"version", "created_at", "updated_at",
}

func addPostRow(rows *sqlmock.Rows, id, status string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, "user-1", "remote work burnout", "Remote work isn't the problem.", "{a,b,c}",
		string(entity.FrameworkMythTruthProof),
		`{"intro":"i","main_insight":"m","supporting_detail":"s","shift_takeaway":"t","cta":"c"}`,
		"a chart", true, status, "", "", 0, nil, 2, now, now,
	)
}

func TestPostRepository_GetForUser(t *testing.T) {
	client, mock := newMockClient(t)
	repo := NewPostRepository(client)

	mock.ExpectQuery(`SELECT \* FROM "posts" WHERE id = \$1 AND user_id = \$2`).
		WillReturnRows(addPostRow(sqlmock.NewRows(postColumns), "post-1", "draft"))

	post, err := repo.GetForUser(context.Background(), "user-1", "post-1")
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, "post-1", post.ID)
	assert.Equal(t, entity.PostStatusDraft, post.Status)
	assert.Equal(t, []string{"a", "b", "c"}, []string(post.HookOptions))
	assert.Equal(t, "c", post.Sections.CTA)
	assert.True(t, post.Sections.IsComplete())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetForUserNotFound(t *testing.T) {
	client, mock := newMockClient(t)
	repo := NewPostRepository(client)

	mock.ExpectQuery(`SELECT \* FROM "posts"`).WillReturnRows(sqlmock.NewRows(postColumns))

	post, err := repo.GetForUser(context.Background(), "user-1", "missing")
	require.NoError(t, err)
	assert.Nil(t, post)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByIDError(t *testing.T) {
	client, mock := newMockClient(t)
	repo := NewPostRepository(client)

	mock.ExpectQuery(`SELECT \* FROM "posts"`).WillReturnError(sql.ErrConnDone)

	_, err := repo.GetByID(context.Background(), "post-1")
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestPostRepository_CreateAssignsID(t *testing.T) {
	client, mock := newMockClient(t)
	repo := NewPostRepository(client)

	mock.ExpectQuery(`INSERT INTO "posts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ignored"))

	post := entity.NewPost("user-1", "topic", "hook")
	require.NoError(t, repo.Create(context.Background(), post))
	assert.NotEmpty(t, post.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ListByUser(t *testing.T) {
	client, mock := newMockClient(t)
	repo := NewPostRepository(client)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE user_id = \$1 AND status = \$2`).
		WithArgs("user-1", entity.PostStatusDraft).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT \* FROM "posts" WHERE user_id = \$1 AND status = \$2 ORDER BY updated_at DESC`).
		WillReturnRows(addPostRow(addPostRow(sqlmock.NewRows(postColumns), "p1", "draft"), "p2", "draft"))

	res, err := repo.ListByUser(context.Background(), "user-1",
		&repository.PostFilter{Status: entity.PostStatusDraft}, repository.NewPagination(1, 2))
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Total)
	assert.Equal(t, 2, res.TotalPages)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "p2", res.Items[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_TransitionStatus(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		err      error
		want     bool
	}{
		{name: "claimed", affected: 1, want: true},
		{name: "already taken", affected: 0, want: false},
		{name: "db error", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock := newMockClient(t)
			repo := NewPostRepository(client)

			exp := mock.ExpectExec(`UPDATE "posts" SET .* WHERE id = \$\d+ AND status IN \(\$\d+,\$\d+\)`)
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.affected))
			}

			ok, err := repo.TransitionStatus(context.Background(), "post-1",
				[]entity.PostStatus{entity.PostStatusDraft, entity.PostStatusFailed}, entity.PostStatusPublishing)
			if tt.err != nil {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepository_TransitionStatusNoSource(t *testing.T) {
	client, mock := newMockClient(t)
	ok, err := NewPostRepository(client).TransitionStatus(context.Background(), "post-1", nil, entity.PostStatusPublishing)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Delete(t *testing.T) {
	client, mock := newMockClient(t)
	mock.ExpectExec(`DELETE FROM "posts" WHERE id = \$1 AND user_id = \$2`).
		WithArgs("post-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostRepository(client).Delete(context.Background(), "user-1", "post-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByExternalID(t *testing.T) {
	client, mock := newMockClient(t)
	repo := NewUserRepository(client)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE external_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "external_id", "auth_source", "linkedin_member_urn", "linkedin_access_token", "created_at", "updated_at"}).
			AddRow("u-1", "device-abc", "device", "urn:li:person:42", "tok", now, now))

	u, err := repo.GetByExternalID(context.Background(), "device-abc")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "urn:li:person:42", u.LinkedInMemberURN)
	assert.True(t, u.LinkedInConnected(now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOnboardingRepository_GetAndUpsert(t *testing.T) {
	client, mock := newMockClient(t)
	repo := NewOnboardingRepository(client)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "onboarding_profiles" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "answers", "created_at", "updated_at"}).
			AddRow("u-1", `{"role":"engineering manager"}`, now, now))

	p, err := repo.Get(context.Background(), "u-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "engineering manager", p.Answers["role"])

	mock.ExpectExec(`INSERT INTO "onboarding_profiles" .* ON CONFLICT \("user_id"\) DO UPDATE SET "answers"="excluded"."answers"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Upsert(context.Background(), &entity.OnboardingProfile{
		UserID:  "u-1",
		Answers: map[string]string{"role": "founder"},
	}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_WithTransaction(t *testing.T) {
	client, mock := newMockClient(t)
	tm := NewTxManager(client)
	repo := NewPostRepository(client)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "posts"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
		require.NotNil(t, getTxFromContext(ctx))
		return tm.WithTransaction(ctx, func(inner context.Context) error {
			return repo.Delete(inner, "user-1", "post-1")
		})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_RollbackOnError(t *testing.T) {
	client, mock := newMockClient(t)
	tm := NewTxManager(client)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := tm.WithTransaction(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLLMUsageEventRepository_Create(t *testing.T) {
	client, mock := newMockClient(t)
	repo := NewLLMUsageEventRepository(client)

	mock.ExpectQuery(`INSERT INTO "llm_usage_events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("evt-1"))

	event := &entity.LLMUsageEvent{UserID: "user-1", Provider: "openai", Model: "gpt-4o-mini", TokensPrompt: 12, TokensCompletion: 8}
	require.NoError(t, repo.Create(context.Background(), event))
	assert.Equal(t, "evt-1", event.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLLMUsageEventRepository_SummarizeByWorkflow(t *testing.T) {
	client, mock := newMockClient(t)
	repo := NewLLMUsageEventRepository(client)

	start := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	mock.ExpectQuery(`(?s)SELECT workflow,.*FROM "llm_usage_events" WHERE user_id = \$1 AND created_at >= \$2 AND created_at < \$3 GROUP BY "workflow"`).
		WithArgs("user-1", start, end).
		WillReturnRows(sqlmock.NewRows([]string{"workflow", "calls", "prompt_tokens", "completion_tokens", "avg_duration_ms"}).
			AddRow("sections", 2, 800, 400, 1500).
			AddRow("hooks", 1, 120, 80, 600))

	rows, err := repo.SummarizeByWorkflow(context.Background(), "user-1", start, end)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "sections", rows[0].Workflow)
	assert.EqualValues(t, 2, rows[0].Calls)
	assert.EqualValues(t, 400, rows[0].CompletionTokens)
	assert.EqualValues(t, 600, rows[1].AvgDurationMs)
	require.NoError(t, mock.ExpectationsWereMet())
}
