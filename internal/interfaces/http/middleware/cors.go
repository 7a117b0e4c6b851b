package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	// DeviceHeader 设备身份头，总是加入允许列表
	DeviceHeader string
}

// exposedHeaders 客户端需要读取的响应头
var exposedHeaders = []string{
	RequestIDHeader, "X-Trace-ID", "Retry-After", quotaLimitHeader, quotaUsedHeader,
}

// CORS 跨域中间件
func CORS(cfg CORSConfig) gin.HandlerFunc {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	headers := cfg.AllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Origin", "Content-Type", "Authorization", RequestIDHeader}
	}
	deviceHeader := cfg.DeviceHeader
	if deviceHeader == "" {
		deviceHeader = defaultDeviceHeader
	}
	headers = appendMissing(headers, deviceHeader)

	wildcard := len(origins) == 1 && origins[0] == "*"
	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  methods,
		AllowHeaders:  headers,
		ExposeHeaders: exposedHeaders,
		// 通配来源不能携带凭证
		AllowCredentials: !wildcard,
		MaxAge:           12 * time.Hour,
	})
}

func appendMissing(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(append([]string(nil), list...), v)
}
