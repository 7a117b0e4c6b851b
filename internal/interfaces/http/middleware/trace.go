package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"linkedin-post-ai-api/pkg/logger"
)

// Trace OpenTelemetry 追踪中间件
func Trace(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// TraceContext 将 trace_id 写入 gin 与日志上下文。
// 未启用追踪时以请求 ID 充当 trace_id，保证响应体总能关联到日志。
func TraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sc := trace.SpanFromContext(ctx).SpanContext()

		if sc.IsValid() {
			traceID := sc.TraceID().String()
			c.Set("trace_id", traceID)
			ctx = logger.WithContext(ctx, logger.TraceIDKey, traceID)
			ctx = logger.WithContext(ctx, logger.SpanIDKey, sc.SpanID().String())
			c.Request = c.Request.WithContext(ctx)
			c.Header("X-Trace-ID", traceID)
		} else if rid := c.GetString(ctxRequestID); rid != "" {
			c.Set("trace_id", rid)
		}

		c.Next()
	}
}
