// Package main 异步发布任务执行器入口（job-worker）
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"linkedin-post-ai-api/internal/config"
	"linkedin-post-ai-api/internal/infrastructure/messaging"
	"linkedin-post-ai-api/internal/wire"
	"linkedin-post-ai-api/pkg/logger"
	"linkedin-post-ai-api/pkg/tracer"
)

const tracerFlushTimeout = 5 * time.Second

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
		logger.Fatal(context.Background(), "job-worker exited with error", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	shutdownTracer, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name + "-worker",
		Environment: cfg.App.Env,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		Insecure:    cfg.Observability.Tracing.Insecure,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), tracerFlushTimeout)
		defer cancel()
		_ = shutdownTracer(flushCtx)
	}()

	worker, cleanup, err := wire.InitializeWorker(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize worker: %w", err)
	}
	defer cleanup()

	worker.Consumer.RegisterHandler(messaging.MessageTypePostPublish, worker.Publish.HandleJob)
	if err := worker.Consumer.Start(ctx); err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	if threshold := cfg.Messaging.RedisStream.DLQAlertThreshold; threshold > 0 {
		go worker.Consumer.MonitorDLQ(ctx, threshold)
	}

	log := logger.FromContext(ctx)
	log.Info("job-worker started", "stream", messaging.StreamPostPublish, "group", messaging.ConsumerGroupPublisher)

	<-ctx.Done()
	log.Info("job-worker shutting down")
	worker.Consumer.Stop()
	return nil
}
