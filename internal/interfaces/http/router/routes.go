// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由。generationGuard 作用于所有会调用模型的接口
func RegisterV1Routes(v1 *gin.RouterGroup, h *RouterHandlers, generationGuard []gin.HandlerFunc) {
	guarded := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		chain := make([]gin.HandlerFunc, 0, len(generationGuard)+1)
		chain = append(chain, generationGuard...)
		return append(chain, fn)
	}

	// 生成前置步骤
	generation := v1.Group("/generation")
	{
		generation.POST("/hooks", guarded(h.Generation.Hooks)...)
		generation.POST("/framework", guarded(h.Generation.Framework)...)
		generation.GET("/frameworks", h.Generation.Frameworks)
	}

	// 帖子管理
	posts := v1.Group("/posts")
	{
		posts.GET("", h.Post.List)
		posts.POST("", guarded(h.Post.Generate)...)
		posts.GET("/:pid", h.Post.Get)
		posts.PATCH("/:pid", h.Post.Update)
		posts.DELETE("/:pid", h.Post.Delete)
		posts.GET("/:pid/preview", h.Post.Preview)
		posts.POST("/:pid/sections/:section/regenerate", guarded(h.Post.RegenerateSection)...)
		posts.POST("/:pid/publish", h.Post.Publish)
	}

	// 用户
	users := v1.Group("/users/me")
	{
		users.GET("", h.User.GetMe)
		users.GET("/onboarding", h.User.GetOnboarding)
		users.PUT("/onboarding", h.User.PutOnboarding)
		users.PUT("/linkedin", h.User.PutLinkedIn)
		users.DELETE("/linkedin", h.User.DeleteLinkedIn)
		users.GET("/usage", h.User.GetUsage)
	}
}
