// Package middleware 提供 HTTP 中间件
package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/service"
	"linkedin-post-ai-api/internal/interfaces/http/dto"
	apperrors "linkedin-post-ai-api/pkg/errors"
	"linkedin-post-ai-api/pkg/logger"
	"linkedin-post-ai-api/pkg/utils"
)

// 身份来源
const (
	AuthSourceJWT    = "jwt"
	AuthSourceDevice = "device"
)

const (
	ctxUserID = "user_id"
	ctxUser   = "user"

	defaultDeviceHeader = "X-Device-ID"
	maxDeviceIDLen      = 128
)

// UserResolver 将外部身份解析为内部用户，不存在时创建
type UserResolver interface {
	EnsureUser(ctx context.Context, externalID, authSource string) (*entity.User, error)
}

// AuthConfig 认证配置
type AuthConfig struct {
	// Secret JWT 密钥
	Secret string
	// Issuer JWT 签发者
	Issuer string
	// SkipPaths 跳过认证的路径
	SkipPaths []string
	// DeviceAuth 允许未登录的移动端以设备 ID 作为身份
	DeviceAuth bool
	// DeviceHeader 设备 ID 请求头
	DeviceHeader string
}

// Auth 认证中间件：优先 Bearer JWT，其次设备头
func Auth(cfg AuthConfig, resolver UserResolver) gin.HandlerFunc {
	jwtManager := utils.NewJWTManager(cfg.Secret, cfg.Issuer)
	if cfg.DeviceHeader == "" {
		cfg.DeviceHeader = defaultDeviceHeader
	}

	return func(c *gin.Context) {
		for _, path := range cfg.SkipPaths {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		externalID, source, err := identify(c, jwtManager, cfg)
		if err != nil {
			abortAppError(c, err)
			return
		}

		ctx := c.Request.Context()
		user, err := resolver.EnsureUser(ctx, externalID, source)
		if err != nil {
			logger.Error(ctx, "failed to resolve user", err)
			abortAppError(c, err)
			return
		}

		c.Set(ctxUserID, user.ID)
		c.Set(ctxUser, user)
		ctx = logger.WithContext(ctx, logger.UserIDKey, user.ID)
		ctx = service.WithUser(ctx, user.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// identify 解析请求携带的外部身份
func identify(c *gin.Context, jwtManager *utils.JWTManager, cfg AuthConfig) (string, string, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", "", apperrors.ErrTokenInvalid.WithDetail("invalid authorization format")
		}

		claims, err := jwtManager.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, utils.ErrExpiredToken) {
				return "", "", apperrors.ErrTokenExpired
			}
			return "", "", apperrors.ErrTokenInvalid
		}
		if claims.Type != utils.TokenTypeAccess || claims.UserID == "" {
			return "", "", apperrors.ErrTokenInvalid.WithDetail("invalid token type")
		}
		return AuthSourceJWT + ":" + claims.UserID, AuthSourceJWT, nil
	}

	if cfg.DeviceAuth {
		deviceID := strings.TrimSpace(c.GetHeader(cfg.DeviceHeader))
		if deviceID != "" {
			if len(deviceID) > maxDeviceIDLen {
				return "", "", apperrors.ErrTokenInvalid.WithDetail("device id too long")
			}
			return AuthSourceDevice + ":" + deviceID, AuthSourceDevice, nil
		}
	}

	return "", "", apperrors.ErrTokenMissing
}

// GetUserIDFromGin 获取已认证用户 ID
func GetUserIDFromGin(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// GetUserFromGin 获取已认证用户
func GetUserFromGin(c *gin.Context) *entity.User {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}

// abortAppError 以统一错误结构终止请求
func abortAppError(c *gin.Context, err error) {
	dto.Abort(c, apperrors.AsAppError(err))
}

// DefaultSkipPaths 默认跳过认证的路径
var DefaultSkipPaths = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
}
