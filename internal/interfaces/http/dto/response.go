// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "linkedin-post-ai-api/pkg/errors"
)

// Response 统一响应结构
type Response[T any] struct {
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Data    T         `json:"data,omitempty"`
	Meta    *PageMeta `json:"meta,omitempty"`
	TraceID string    `json:"trace_id,omitempty"`
}

// PageMeta 分页元数据
type PageMeta struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// ErrorDetail 错误详情，error_code 为 pkg/errors 中的业务码
type ErrorDetail struct {
	ErrorCode string `json:"error_code,omitempty"`
	Details   string `json:"details,omitempty"`
}

// ErrorResponse 错误响应结构
type ErrorResponse struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Error   *ErrorDetail `json:"error,omitempty"`
	TraceID string       `json:"trace_id,omitempty"`
}

func respond[T any](c *gin.Context, status int, message string, data T, meta *PageMeta) {
	c.JSON(status, Response[T]{
		Code:    status,
		Message: message,
		Data:    data,
		Meta:    meta,
		TraceID: c.GetString("trace_id"),
	})
}

// Success 返回成功响应
func Success[T any](c *gin.Context, data T) {
	respond(c, http.StatusOK, "success", data, nil)
}

// OK 返回 200 并使用自定义消息
func OK[T any](c *gin.Context, message string, data T) {
	respond(c, http.StatusOK, message, data, nil)
}

// SuccessWithPage 返回带分页的成功响应
func SuccessWithPage[T any](c *gin.Context, data T, meta *PageMeta) {
	respond(c, http.StatusOK, "success", data, meta)
}

// Created 返回创建成功响应 (201)
func Created[T any](c *gin.Context, data T) {
	respond(c, http.StatusCreated, "created", data, nil)
}

// Accepted 返回已入队响应 (202)
func Accepted[T any](c *gin.Context, data T) {
	respond(c, http.StatusAccepted, "accepted", data, nil)
}

// NoContent 返回无内容响应 (204)
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// NewErrorResponse 由应用错误构建错误响应，未知错误不暴露内部信息
func NewErrorResponse(c *gin.Context, appErr *apperrors.AppError) (int, *ErrorResponse) {
	status := appErr.HTTPStatus
	message := appErr.Message
	if status == 0 || appErr.Code == apperrors.CodeUnknown {
		status = http.StatusInternalServerError
		message = "internal server error"
	}
	return status, &ErrorResponse{
		Code:    status,
		Message: message,
		Error: &ErrorDetail{
			ErrorCode: string(appErr.Code),
			Details:   appErr.Detail,
		},
		TraceID: c.GetString("trace_id"),
	}
}

// Fail 写出错误响应
func Fail(c *gin.Context, appErr *apperrors.AppError) {
	status, body := NewErrorResponse(c, appErr)
	c.JSON(status, body)
}

// Abort 写出错误响应并终止后续处理，供中间件使用
func Abort(c *gin.Context, appErr *apperrors.AppError) {
	status, body := NewErrorResponse(c, appErr)
	c.AbortWithStatusJSON(status, body)
}

// NewPageMeta 创建分页元数据
func NewPageMeta(page, pageSize, total int) *PageMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return &PageMeta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}
