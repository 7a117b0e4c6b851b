// Package router 提供 HTTP 路由配置
package router

import (
	"time"

	"linkedin-post-ai-api/internal/config"
	"linkedin-post-ai-api/internal/interfaces/http/handler"
	"linkedin-post-ai-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterHandlers 路由依赖的处理器集合
type RouterHandlers struct {
	Health     *handler.HealthHandler
	Generation *handler.GenerationHandler
	Post       *handler.PostHandler
	User       *handler.UserHandler
}

// RouterDeps 路由依赖的中间件能力
type RouterDeps struct {
	AuthConfig   middleware.AuthConfig
	Users        middleware.UserResolver
	RateLimiter  middleware.RateLimiter
	RateLimitKey middleware.RateLimitKeyFunc
	QuotaChecker middleware.QuotaChecker
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers *RouterHandlers
	deps     *RouterDeps
}

// NewWithDeps 创建带完整依赖的路由器
func NewWithDeps(cfg *config.Config, handlers *RouterHandlers, deps *RouterDeps) *Router {
	// 设置 Gin 模式
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		cfg:      cfg,
		handlers: handlers,
		deps:     deps,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	// 基础中间件
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	// CORS 中间件
	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
		DeviceHeader:   r.cfg.Security.DeviceAuth.Header,
	}))

	// 追踪中间件，未启用时 trace_id 退化为请求 ID
	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
	}
	r.engine.Use(middleware.TraceContext())

	// 指标中间件
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics(append([]string{r.metricsPath()}, middleware.DefaultSkipPaths...)...))
	}

	r.engine.Use(middleware.Audit(middleware.AuditConfig{
		Enabled:   true,
		SkipPaths: middleware.DefaultAuditSkipPaths,
	}))
}

func (r *Router) metricsPath() string {
	if p := r.cfg.Observability.Metrics.Path; p != "" {
		return p
	}
	return "/metrics"
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	// 系统端点
	r.engine.GET("/health", r.handlers.Health.Health)
	r.engine.GET("/ready", r.handlers.Health.Ready)
	r.engine.GET("/live", r.handlers.Health.Live)

	// Prometheus 指标端点
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.metricsPath(), gin.WrapH(promhttp.Handler()))
	}

	// API v1 路由组
	v1 := r.engine.Group("/v1")
	v1.Use(middleware.Auth(r.deps.AuthConfig, r.deps.Users))

	generationGuard := []gin.HandlerFunc{
		middleware.RateLimit(middleware.RateLimitConfig{
			Enabled: r.cfg.Security.RateLimit.Enabled,
			Limit:   r.cfg.Security.RateLimit.GenerationPerMinute,
			Window:  time.Minute,
			Scope:   "generation",
		}, r.deps.RateLimiter, r.deps.RateLimitKey),
		middleware.TokenQuota(r.deps.QuotaChecker),
	}

	RegisterV1Routes(v1, r.handlers, generationGuard)
}
