//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"linkedin-post-ai-api/internal/application/post"
	"linkedin-post-ai-api/internal/config"
	"linkedin-post-ai-api/internal/domain/repository"
	"linkedin-post-ai-api/internal/infrastructure/llm"
	"linkedin-post-ai-api/internal/infrastructure/persistence/postgres"
	"linkedin-post-ai-api/internal/infrastructure/persistence/redis"
	"linkedin-post-ai-api/internal/interfaces/http/router"
	"linkedin-post-ai-api/internal/workflow/prompt"
)

// InitializePostgresOnly 仅初始化 PostgreSQL 数据层（用于 bootstrap）
func InitializePostgresOnly(ctx context.Context, cfg *config.Config) (*PostgresOnlyDataLayer, func(), error) {
	wire.Build(
		PostgresSet,
		wire.Struct(new(PostgresOnlyDataLayer), "*"),
	)
	return nil, nil, nil
}

// InitializeApp 初始化 API 网关（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		GenerationSet,
		ServiceSet,
		RouterSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}

// InitializeWorker 初始化发布任务执行器
func InitializeWorker(ctx context.Context, cfg *config.Config) (*Worker, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		ProvideLinkedInClient,
		ProvidePublishService,
		ProvidePublishConsumer,
		wire.Struct(new(Worker), "*"),
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewUserRepository,
	postgres.NewOnboardingRepository,
	postgres.NewPostRepository,
	postgres.NewLLMUsageEventRepository,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet,
	// 接口绑定
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.UserRepository), new(*postgres.UserRepository)),
	wire.Bind(new(repository.OnboardingRepository), new(*postgres.OnboardingRepository)),
	wire.Bind(new(repository.PostRepository), new(*postgres.PostRepository)),
	wire.Bind(new(repository.LLMUsageEventRepository), new(*postgres.LLMUsageEventRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	redis.NewUsageStore,
)

// MessagingSet 消息队列提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
)

// GenerationSet 帖子生成提供者集合
var GenerationSet = wire.NewSet(
	llm.NewEinoFactory,
	ProvideCompletionClient,
	prompt.NewRegistry,
	ProvideGenerationConfig,
	post.NewGenerator,
	ProvidePipeline,
)

// ServiceSet 应用服务提供者集合
var ServiceSet = wire.NewSet(
	ProvideProfileService,
	ProvideDraftService,
	ProvideLinkedInClient,
	ProvidePublishService,
	ProvideTokenQuotaChecker,
	ProvideLLMUsageRecorder,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideAuthConfig,
	ProvideHealthHandler,
	ProvideGenerationHandler,
	ProvidePostHandler,
	ProvideUserHandler,
	ProvideRouterDeps,
	wire.Struct(new(router.RouterHandlers), "*"),
	router.NewWithDeps,
)

