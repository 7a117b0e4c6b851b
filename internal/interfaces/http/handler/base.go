// Package handler 提供 HTTP 请求处理器
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"linkedin-post-ai-api/internal/interfaces/http/dto"
	"linkedin-post-ai-api/pkg/errors"
	"linkedin-post-ai-api/pkg/logger"
)

// respondError 将应用错误写为统一错误响应，非应用错误按 500 处理
func respondError(c *gin.Context, err error) {
	appErr := errors.AsAppError(err)

	ctx := c.Request.Context()
	if appErr.HTTPStatus == 0 || appErr.HTTPStatus >= http.StatusInternalServerError || appErr.Code == errors.CodeUnknown {
		logger.Error(ctx, "request failed", err, "error_code", string(appErr.Code))
	} else {
		logger.Debug(ctx, "request rejected", "error_code", string(appErr.Code), "detail", appErr.Detail)
	}
	_ = c.Error(err)

	dto.Fail(c, appErr)
}

// bindJSON 绑定请求体，失败时直接写 400
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, errors.ErrInvalidParam.WithDetail("invalid request body: "+err.Error()))
		return false
	}
	return true
}
