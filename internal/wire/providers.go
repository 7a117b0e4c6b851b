// Package wire 提供依赖注入配置
package wire

import (
	"fmt"
	"os"

	"linkedin-post-ai-api/internal/application/draft"
	"linkedin-post-ai-api/internal/application/post"
	"linkedin-post-ai-api/internal/application/profile"
	"linkedin-post-ai-api/internal/application/publish"
	"linkedin-post-ai-api/internal/application/quota"
	"linkedin-post-ai-api/internal/config"
	"linkedin-post-ai-api/internal/domain/repository"
	"linkedin-post-ai-api/internal/infrastructure/linkedin"
	"linkedin-post-ai-api/internal/infrastructure/llm"
	"linkedin-post-ai-api/internal/infrastructure/messaging"
	"linkedin-post-ai-api/internal/infrastructure/persistence/postgres"
	"linkedin-post-ai-api/internal/infrastructure/persistence/redis"
	"linkedin-post-ai-api/internal/interfaces/http/handler"
	"linkedin-post-ai-api/internal/interfaces/http/middleware"
	"linkedin-post-ai-api/internal/interfaces/http/router"
	"linkedin-post-ai-api/internal/workflow/chain"
	"linkedin-post-ai-api/internal/workflow/port"
)

// PostgresOnlyDataLayer bootstrap 使用的最小数据层
type PostgresOnlyDataLayer struct {
	PgClient *postgres.Client
	UserRepo *postgres.UserRepository
}

// App API 网关依赖容器
type App struct {
	Router *router.Router
	// UsageRecorder 供 eino 全局回调记录用量
	UsageRecorder *quota.LLMUsageRecorder
}

// Worker 发布任务执行器依赖容器
type Worker struct {
	Consumer *messaging.Consumer
	Publish  *publish.Service
}

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	return messaging.NewProducer(redisClient.Redis(), int64(maxLen))
}

// ProvidePublishConsumer 提供发布任务消费者
func ProvidePublishConsumer(redisClient *redis.Client, cfg *config.Config) *messaging.Consumer {
	rs := cfg.Messaging.RedisStream
	return messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfig{
		Stream:        messaging.StreamPostPublish,
		Group:         messaging.ConsumerGroupPublisher,
		ConsumerName:  hostnameConsumerName(),
		BlockTimeout:  rs.BlockTimeout,
		ClaimInterval: rs.ClaimInterval,
		RetryLimit:    rs.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    rs.RetryBackoff.Initial,
			Max:        rs.RetryBackoff.Max,
			Multiplier: rs.RetryBackoff.Multiplier,
		},
	})
}

// ProvideCompletionClient 提供补全客户端，提供商取 generation.provider，为空时用默认提供商
func ProvideCompletionClient(cfg *config.Config, factory *llm.EinoFactory) port.CompletionClient {
	return chain.NewCompletionChain(factory, cfg.GenerationProvider())
}

// ProvideGenerationConfig 提供生成配置
func ProvideGenerationConfig(cfg *config.Config) post.GenerationConfig {
	return post.NewGenerationConfig(cfg.Generation)
}

// ProvidePipeline 提供整篇生成流水线
func ProvidePipeline(generator *post.Generator) *post.Pipeline {
	return post.NewPipeline(generator)
}

// ProvideProfileService 提供用户资料服务，画像经 Redis 缓存
func ProvideProfileService(cfg *config.Config, users repository.UserRepository, onboarding repository.OnboardingRepository, cache *redis.Cache) *profile.Service {
	return profile.NewService(users, onboarding, cache, redis.ProfileCacheKey, cfg.Cache.ProfileTTL)
}

// ProvideDraftService 提供草稿服务
func ProvideDraftService(generator *post.Generator, pipeline *post.Pipeline, posts repository.PostRepository, profiles *profile.Service) *draft.Service {
	return draft.NewService(generator, pipeline, posts, profiles)
}

// ProvideLinkedInClient 提供 LinkedIn 发布客户端
func ProvideLinkedInClient(cfg *config.Config) *linkedin.Client {
	return linkedin.NewClient(cfg.LinkedIn)
}

// ProvidePublishService 提供发布服务，features.publish_async 决定是否经队列发布
func ProvidePublishService(cfg *config.Config, posts repository.PostRepository, users repository.UserRepository, client *linkedin.Client, producer *messaging.Producer, tx repository.Transactor) *publish.Service {
	return publish.NewService(posts, users, client, producer, cfg.Features.PublishAsync).WithTransactor(tx)
}

// ProvideTokenQuotaChecker 提供每日 Token 配额检查
func ProvideTokenQuotaChecker(cfg *config.Config, store *redis.UsageStore, events repository.LLMUsageEventRepository) *quota.TokenQuotaChecker {
	checker := quota.NewTokenQuotaChecker(store, cfg.Generation.DailyTokenLimit)
	if cfg.Features.UsageEventLog {
		checker.WithEventLog(events)
	}
	return checker
}

// ProvideLLMUsageRecorder 提供用量记录器
func ProvideLLMUsageRecorder(cfg *config.Config, store *redis.UsageStore, events repository.LLMUsageEventRepository) *quota.LLMUsageRecorder {
	recorder := quota.NewLLMUsageRecorder(store)
	if cfg.Features.UsageEventLog {
		recorder.WithEventLog(events)
	}
	return recorder
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(pg *postgres.Client, redisClient *redis.Client) *handler.HealthHandler {
	return handler.NewHealthHandler(pg, redisClient)
}

// ProvideGenerationHandler 提供生成处理器
func ProvideGenerationHandler(drafts *draft.Service) *handler.GenerationHandler {
	return handler.NewGenerationHandler(drafts)
}

// ProvidePostHandler 提供帖子处理器
func ProvidePostHandler(cfg *config.Config, drafts *draft.Service, publisher *publish.Service) *handler.PostHandler {
	return handler.NewPostHandler(drafts, publisher, cfg.Features.RefineByDefault)
}

// ProvideUserHandler 提供用户处理器
func ProvideUserHandler(profiles *profile.Service, checker *quota.TokenQuotaChecker) *handler.UserHandler {
	return handler.NewUserHandler(profiles, checker)
}

// ProvideAuthConfig 提供认证配置
func ProvideAuthConfig(cfg *config.Config) middleware.AuthConfig {
	return middleware.AuthConfig{
		Secret:       cfg.Security.JWT.Secret,
		Issuer:       cfg.Security.JWT.Issuer,
		SkipPaths:    middleware.DefaultSkipPaths,
		DeviceAuth:   cfg.Security.DeviceAuth.Enabled,
		DeviceHeader: cfg.Security.DeviceAuth.Header,
	}
}

// ProvideRouterDeps 提供路由中间件依赖
func ProvideRouterDeps(authCfg middleware.AuthConfig, profiles *profile.Service, limiter *redis.RateLimiter, checker *quota.TokenQuotaChecker) *router.RouterDeps {
	return &router.RouterDeps{
		AuthConfig:   authCfg,
		Users:        profiles,
		RateLimiter:  limiter,
		RateLimitKey: redis.BuildUserRateLimitKey,
		QuotaChecker: checker,
	}
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
