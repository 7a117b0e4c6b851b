package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/service"
	"linkedin-post-ai-api/internal/interfaces/http/dto"
	"linkedin-post-ai-api/internal/interfaces/http/middleware"
	"linkedin-post-ai-api/pkg/errors"
	"linkedin-post-ai-api/pkg/logger"
)

// ProfileService 用户资料用例，*profile.Service 实现该接口
type ProfileService interface {
	GetUser(ctx context.Context, userID string) (*entity.User, error)
	GetOnboarding(ctx context.Context, userID string) (*entity.OnboardingProfile, error)
	SaveOnboarding(ctx context.Context, userID string, answers map[string]string) (*entity.OnboardingProfile, error)
	ConnectLinkedIn(ctx context.Context, userID, memberURN, accessToken string, expiresIn time.Duration) (*entity.User, error)
	DisconnectLinkedIn(ctx context.Context, userID string) error
}

// UsageReader 当日用量，*quota.TokenQuotaChecker 实现该接口
type UsageReader interface {
	Today(ctx context.Context, userID string) (service.LLMUsage, error)
	Breakdown(ctx context.Context, userID string) ([]entity.WorkflowUsage, error)
	Limit() int64
}

// UserHandler 用户处理器
type UserHandler struct {
	profiles ProfileService
	usage    UsageReader
}

// NewUserHandler 创建用户处理器
func NewUserHandler(profiles ProfileService, usage UsageReader) *UserHandler {
	return &UserHandler{
		profiles: profiles,
		usage:    usage,
	}
}

// GetMe 获取当前用户信息
// @Summary 获取当前用户信息
// @Tags Users
// @Produce json
// @Success 200 {object} dto.Response[dto.UserResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.profiles.GetUser(c.Request.Context(), middleware.GetUserIDFromGin(c))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.ToUserResponse(user))
}

// GetOnboarding 获取引导问卷
// @Summary 获取引导问卷
// @Tags Users
// @Produce json
// @Success 200 {object} dto.Response[dto.OnboardingResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/users/me/onboarding [get]
func (h *UserHandler) GetOnboarding(c *gin.Context) {
	p, err := h.profiles.GetOnboarding(c.Request.Context(), middleware.GetUserIDFromGin(c))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.ToOnboardingResponse(p))
}

// PutOnboarding 保存引导问卷
// @Summary 保存引导问卷
// @Description 覆盖保存问卷答案，答案作为后续生成的画像上下文
// @Tags Users
// @Accept json
// @Produce json
// @Param body body dto.OnboardingRequest true "问卷答案"
// @Success 200 {object} dto.Response[dto.OnboardingResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/users/me/onboarding [put]
func (h *UserHandler) PutOnboarding(c *gin.Context) {
	var req dto.OnboardingRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.profiles.SaveOnboarding(c.Request.Context(), middleware.GetUserIDFromGin(c), req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.ToOnboardingResponse(p))
}

// PutLinkedIn 绑定 LinkedIn
// @Summary 绑定 LinkedIn 凭据
// @Tags Users
// @Accept json
// @Produce json
// @Param body body dto.LinkedInConnectRequest true "LinkedIn 凭据"
// @Success 200 {object} dto.Response[dto.UserResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/users/me/linkedin [put]
func (h *UserHandler) PutLinkedIn(c *gin.Context) {
	var req dto.LinkedInConnectRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.profiles.ConnectLinkedIn(c.Request.Context(), middleware.GetUserIDFromGin(c),
		req.MemberURN, req.AccessToken, req.ExpiresInDuration())
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.ToUserResponse(user))
}

// DeleteLinkedIn 解除 LinkedIn 绑定
// @Summary 解除 LinkedIn 绑定
// @Tags Users
// @Success 204
// @Router /v1/users/me/linkedin [delete]
func (h *UserHandler) DeleteLinkedIn(c *gin.Context) {
	if err := h.profiles.DisconnectLinkedIn(c.Request.Context(), middleware.GetUserIDFromGin(c)); err != nil {
		respondError(c, err)
		return
	}
	dto.NoContent(c)
}

// GetUsage 当日 Token 用量
// @Summary 当日 Token 用量
// @Description 开启调用明细时附带按生成环节的聚合
// @Tags Users
// @Produce json
// @Success 200 {object} dto.Response[dto.UsageResponse]
// @Router /v1/users/me/usage [get]
func (h *UserHandler) GetUsage(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	usage, err := h.usage.Today(ctx, userID)
	if err != nil {
		respondError(c, errors.Wrap(err, errors.CodeCacheError, "failed to load usage"))
		return
	}
	resp := dto.ToUsageResponse(usage, h.usage.Limit())

	// 明细只是附加信息，查询失败不影响汇总
	if workflows, err := h.usage.Breakdown(ctx, userID); err != nil {
		logger.Warn(ctx, "usage breakdown unavailable", "error", err.Error())
	} else {
		resp.Workflows = workflows
	}
	dto.Success(c, resp)
}
