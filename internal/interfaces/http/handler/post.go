package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"linkedin-post-ai-api/internal/application/draft"
	"linkedin-post-ai-api/internal/application/publish"
	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/repository"
	"linkedin-post-ai-api/internal/interfaces/http/dto"
	"linkedin-post-ai-api/internal/interfaces/http/middleware"
	"linkedin-post-ai-api/pkg/errors"
)

// DraftService 草稿用例，*draft.Service 实现该接口
type DraftService interface {
	Generate(ctx context.Context, userID string, in draft.GenerateInput) (*entity.Post, error)
	Get(ctx context.Context, userID, postID string) (*entity.Post, error)
	List(ctx context.Context, userID string, status entity.PostStatus, pagination repository.Pagination) (*repository.PagedResult[*entity.Post], error)
	Update(ctx context.Context, userID, postID string, in draft.UpdateInput) (*entity.Post, error)
	Delete(ctx context.Context, userID, postID string) error
	RegenerateSection(ctx context.Context, userID, postID, sectionKey string) (*entity.Post, error)
	Preview(ctx context.Context, userID, postID string) (string, error)
}

// PublishService 发布用例，*publish.Service 实现该接口
type PublishService interface {
	Publish(ctx context.Context, userID, postID string) (*publish.Result, error)
}

// PostHandler 帖子处理器
type PostHandler struct {
	drafts          DraftService
	publisher       PublishService
	refineByDefault bool
}

// NewPostHandler 创建帖子处理器
func NewPostHandler(drafts DraftService, publisher PublishService, refineByDefault bool) *PostHandler {
	return &PostHandler{
		drafts:          drafts,
		publisher:       publisher,
		refineByDefault: refineByDefault,
	}
}

// Generate 生成整篇帖子
// @Summary 生成整篇帖子
// @Description 按开头与框架生成五段正文并保存为草稿，preview 为 true 时跳过润色
// @Tags Posts
// @Accept json
// @Produce json
// @Param body body dto.GeneratePostRequest true "生成参数"
// @Success 201 {object} dto.Response[dto.PostResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/posts [post]
func (h *PostHandler) Generate(c *gin.Context) {
	var req dto.GeneratePostRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.drafts.Generate(c.Request.Context(), middleware.GetUserIDFromGin(c), req.ToInput(h.refineByDefault))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Created(c, dto.ToPostResponse(p))
}

// List 分页列出帖子
// @Summary 帖子列表
// @Tags Posts
// @Produce json
// @Param status query string false "状态过滤" Enums(draft, publishing, published, failed)
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[dto.PostListResponse]
// @Router /v1/posts [get]
func (h *PostHandler) List(c *gin.Context) {
	status := entity.PostStatus(c.Query("status"))
	switch status {
	case "", entity.PostStatusDraft, entity.PostStatusPublishing, entity.PostStatusPublished, entity.PostStatusFailed:
	default:
		respondError(c, errors.ErrInvalidParam.WithDetail("unknown status: "+string(status)))
		return
	}

	result, err := h.drafts.List(c.Request.Context(), middleware.GetUserIDFromGin(c), status, dto.BindPage(c))
	if err != nil {
		respondError(c, err)
		return
	}
	resp, meta := dto.ToPostListResponse(result)
	dto.SuccessWithPage(c, resp, meta)
}

// Get 获取帖子详情
// @Summary 帖子详情
// @Tags Posts
// @Produce json
// @Param pid path string true "帖子 ID"
// @Success 200 {object} dto.Response[dto.PostResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/posts/{pid} [get]
func (h *PostHandler) Get(c *gin.Context) {
	p, err := h.drafts.Get(c.Request.Context(), middleware.GetUserIDFromGin(c), dto.BindPostID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.ToPostResponse(p))
}

// Update 编辑草稿
// @Summary 编辑草稿
// @Description 修改开头或分段内容，已发布的帖子不可编辑
// @Tags Posts
// @Accept json
// @Produce json
// @Param pid path string true "帖子 ID"
// @Param body body dto.UpdatePostRequest true "编辑内容"
// @Success 200 {object} dto.Response[dto.PostResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/posts/{pid} [patch]
func (h *PostHandler) Update(c *gin.Context) {
	var req dto.UpdatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.drafts.Update(c.Request.Context(), middleware.GetUserIDFromGin(c), dto.BindPostID(c), draft.UpdateInput{
		Hook:     req.Hook,
		Sections: req.Sections,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.ToPostResponse(p))
}

// Delete 删除帖子
// @Summary 删除帖子
// @Tags Posts
// @Param pid path string true "帖子 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/posts/{pid} [delete]
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.drafts.Delete(c.Request.Context(), middleware.GetUserIDFromGin(c), dto.BindPostID(c)); err != nil {
		respondError(c, err)
		return
	}
	dto.NoContent(c)
}

// RegenerateSection 重写单个分段
// @Summary 重写单个分段
// @Description section 取值 intro、main_insight、supporting_detail、shift_takeaway、cta
// @Tags Posts
// @Produce json
// @Param pid path string true "帖子 ID"
// @Param section path string true "分段键"
// @Success 200 {object} dto.Response[dto.PostResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/posts/{pid}/sections/{section}/regenerate [post]
func (h *PostHandler) RegenerateSection(c *gin.Context) {
	p, err := h.drafts.RegenerateSection(c.Request.Context(), middleware.GetUserIDFromGin(c), dto.BindPostID(c), dto.BindSectionKey(c))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.ToPostResponse(p))
}

// Preview 预览最终发布文本
// @Summary 预览发布文本
// @Tags Posts
// @Produce json
// @Param pid path string true "帖子 ID"
// @Success 200 {object} dto.Response[dto.PreviewResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/posts/{pid}/preview [get]
func (h *PostHandler) Preview(c *gin.Context) {
	text, err := h.drafts.Preview(c.Request.Context(), middleware.GetUserIDFromGin(c), dto.BindPostID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, &dto.PreviewResponse{PostText: text, Length: len([]rune(text))})
}

// Publish 发布到 LinkedIn
// @Summary 发布到 LinkedIn
// @Description 同步模式返回 200，异步模式入队后返回 202
// @Tags Posts
// @Produce json
// @Param pid path string true "帖子 ID"
// @Success 200 {object} dto.Response[dto.PublishResponse]
// @Success 202 {object} dto.Response[dto.PublishResponse]
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/posts/{pid}/publish [post]
func (h *PostHandler) Publish(c *gin.Context) {
	result, err := h.publisher.Publish(c.Request.Context(), middleware.GetUserIDFromGin(c), dto.BindPostID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := &dto.PublishResponse{
		Post:   dto.ToPostResponse(result.Post),
		Mode:   publish.ModeSync,
		Queued: result.Queued,
	}
	if result.Queued {
		resp.Mode = publish.ModeAsync
		dto.Accepted(c, resp)
		return
	}
	dto.OK(c, "published", resp)
}
