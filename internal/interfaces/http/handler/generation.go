package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/interfaces/http/dto"
	"linkedin-post-ai-api/internal/interfaces/http/middleware"
)

// HookSuggester 候选开头与框架推荐，*draft.Service 实现该接口
type HookSuggester interface {
	SuggestHooks(ctx context.Context, userID, topic string) ([]string, error)
	RecommendFramework(ctx context.Context, hook, topic string) entity.Framework
}

// GenerationHandler 生成前置步骤处理器
type GenerationHandler struct {
	drafts HookSuggester
}

// NewGenerationHandler 创建生成处理器
func NewGenerationHandler(drafts HookSuggester) *GenerationHandler {
	return &GenerationHandler{drafts: drafts}
}

// Hooks 生成候选开头
// @Summary 生成候选开头
// @Description 根据主题和用户画像生成 3-5 条候选开头
// @Tags Generation
// @Accept json
// @Produce json
// @Param body body dto.GenerateHooksRequest true "主题"
// @Success 200 {object} dto.Response[dto.HooksResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/generation/hooks [post]
func (h *GenerationHandler) Hooks(c *gin.Context) {
	var req dto.GenerateHooksRequest
	if !bindJSON(c, &req) {
		return
	}

	hooks, err := h.drafts.SuggestHooks(c.Request.Context(), middleware.GetUserIDFromGin(c), req.Topic)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, &dto.HooksResponse{Hooks: hooks})
}

// Framework 推荐叙事框架
// @Summary 推荐叙事框架
// @Description 根据开头推荐框架，失败时返回默认框架
// @Tags Generation
// @Accept json
// @Produce json
// @Param body body dto.FrameworkRequest true "开头与主题"
// @Success 200 {object} dto.Response[dto.FrameworkResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/generation/framework [post]
func (h *GenerationHandler) Framework(c *gin.Context) {
	var req dto.FrameworkRequest
	if !bindJSON(c, &req) {
		return
	}

	f := h.drafts.RecommendFramework(c.Request.Context(), req.Hook, req.Topic)
	dto.Success(c, dto.ToFrameworkResponse(f))
}

// Frameworks 列出框架目录
// @Summary 列出框架目录
// @Tags Generation
// @Produce json
// @Success 200 {object} dto.Response[dto.FrameworkListResponse]
// @Router /v1/generation/frameworks [get]
func (h *GenerationHandler) Frameworks(c *gin.Context) {
	all := entity.Frameworks()
	items := make([]*dto.FrameworkResponse, 0, len(all))
	for _, f := range all {
		items = append(items, dto.ToFrameworkResponse(f))
	}
	dto.Success(c, &dto.FrameworkListResponse{
		Items:   items,
		Default: entity.DefaultFramework.String(),
	})
}
