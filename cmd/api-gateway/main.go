// Package main HTTP API 入口：生成、草稿管理与发布
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"linkedin-post-ai-api/internal/config"
	einoobs "linkedin-post-ai-api/internal/observability/eino"
	"linkedin-post-ai-api/internal/wire"
	"linkedin-post-ai-api/pkg/logger"
	"linkedin-post-ai-api/pkg/tracer"
)

// 构建时通过 -ldflags 注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const (
	defaultShutdownTimeout = 30 * time.Second
	readHeaderTimeout      = 10 * time.Second
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal(context.Background(), "api-gateway exited with error", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.FromContext(ctx)
	log.Info("starting api-gateway",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
		"provider", cfg.GenerationProvider(),
	)

	shutdownTracer, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Environment: cfg.App.Env,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		Insecure:    cfg.Observability.Tracing.Insecure,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}

	app, cleanup, err := wire.InitializeApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}
	defer cleanup()

	// 必须在首次调用模型前注册
	einoobs.Init(app.UsageRecorder)

	httpCfg := cfg.Server.HTTP
	srv := &http.Server{
		Addr:              net.JoinHostPort(httpCfg.Host, strconv.Itoa(httpCfg.Port)),
		Handler:           app.Router.Engine(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       httpCfg.ReadTimeout,
		WriteTimeout:      httpCfg.WriteTimeout,
		IdleTimeout:       httpCfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down api-gateway")

		timeout := httpCfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return errors.Join(
			srv.Shutdown(shutdownCtx),
			shutdownTracer(shutdownCtx),
		)
	})

	err = g.Wait()
	log.Info("api-gateway stopped")
	return err
}
