package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"linkedin-post-ai-api/pkg/logger"
)

// slogGormLogger 将 GORM 日志写入 slog，携带请求上下文中的 request_id/trace_id
type slogGormLogger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func newSlogGormLogger(slow time.Duration) gormlogger.Interface {
	return &slogGormLogger{level: gormlogger.Warn, slowThreshold: slow}
}

func (l *slogGormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *slogGormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		logger.Info(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *slogGormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		logger.Warn(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *slogGormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		logger.Error(ctx, fmt.Sprintf(msg, args...), nil)
	}
}

func (l *slogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		sql, rows := fc()
		logger.Error(ctx, "sql failed", err, "sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds())
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		logger.Warn(ctx, "slow sql", "sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds())
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		logger.Debug(ctx, "sql", "sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds())
	}
}
