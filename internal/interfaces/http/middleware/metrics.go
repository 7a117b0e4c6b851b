package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"linkedin-post-ai-api/pkg/metrics"
)

// Metrics HTTP 指标采集，skipPaths 中的探针与抓取路径不计入
func Metrics(skipPaths ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, p := range skipPaths {
			if strings.HasPrefix(c.Request.URL.Path, p) {
				c.Next()
				return
			}
		}

		start := time.Now()
		method := c.Request.Method
		if n := c.Request.ContentLength; n > 0 {
			metrics.HTTPRequestSize.WithLabelValues(method, routeLabel(c)).Observe(float64(n))
		}

		c.Next()

		// 路由在 Next 之后才确定，404 统一归为 unmatched 避免标签膨胀
		route := routeLabel(c)
		metrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		if n := c.Writer.Size(); n > 0 {
			metrics.HTTPResponseSize.WithLabelValues(method, route).Observe(float64(n))
		}
	}
}

func routeLabel(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return "unmatched"
}
