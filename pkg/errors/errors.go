// Package errors 提供统一的错误定义
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeUnauthorized       ErrorCode = "1002"
	CodeForbidden          ErrorCode = "1003"
	CodeNotFound           ErrorCode = "1004"
	CodeConflict           ErrorCode = "1005"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 认证授权错误 (2xxx)
	CodeTokenExpired        ErrorCode = "2001"
	CodeTokenInvalid        ErrorCode = "2002"
	CodeTokenMissing        ErrorCode = "2003"
	CodeLinkedInNotLinked   ErrorCode = "2004"
	CodeLinkedInTokenReject ErrorCode = "2005"

	// 资源错误 (3xxx)
	CodePostNotFound       ErrorCode = "3001"
	CodeUserNotFound       ErrorCode = "3002"
	CodeOnboardingNotFound ErrorCode = "3003"

	// 生成错误 (4xxx)
	CodeGenerationFailed     ErrorCode = "4001"
	CodeMalformedOutput      ErrorCode = "4002"
	CodeIncompleteGeneration ErrorCode = "4003"
	CodeInvalidSectionKey    ErrorCode = "4004"
	CodeInvalidFramework     ErrorCode = "4005"
	CodePostAlreadyPublished ErrorCode = "4006"
	CodePostIncomplete       ErrorCode = "4007"

	// 外部服务错误 (5xxx)
	CodeDatabaseError       ErrorCode = "5001"
	CodeCacheError          ErrorCode = "5002"
	CodeQueueError          ErrorCode = "5003"
	CodeLLMProviderError    ErrorCode = "5004"
	CodeProviderUnavailable ErrorCode = "5005"
	CodePublishFailed       ErrorCode = "5006"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，WithDetail/WithError 产生的副本仍与预定义错误相等
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithDetail 返回携带详细信息的副本，预定义错误不会被修改
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithError 返回携带底层错误的副本
func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// 未列出的错误码一律映射为 500
var statusByCode = map[ErrorCode]int{
	CodeSuccess: http.StatusOK,

	CodeInvalidParam:      http.StatusBadRequest,
	CodeInvalidSectionKey: http.StatusBadRequest,
	CodeInvalidFramework:  http.StatusBadRequest,
	CodePostIncomplete:    http.StatusBadRequest,

	CodeUnauthorized: http.StatusUnauthorized,
	CodeTokenExpired: http.StatusUnauthorized,
	CodeTokenInvalid: http.StatusUnauthorized,
	CodeTokenMissing: http.StatusUnauthorized,

	CodeForbidden:         http.StatusForbidden,
	CodeLinkedInNotLinked: http.StatusForbidden,

	CodeNotFound:           http.StatusNotFound,
	CodePostNotFound:       http.StatusNotFound,
	CodeUserNotFound:       http.StatusNotFound,
	CodeOnboardingNotFound: http.StatusNotFound,

	CodeConflict:             http.StatusConflict,
	CodePostAlreadyPublished: http.StatusConflict,

	CodeTooManyRequests: http.StatusTooManyRequests,

	CodeMalformedOutput:      http.StatusBadGateway,
	CodeIncompleteGeneration: http.StatusBadGateway,
	CodeLLMProviderError:     http.StatusBadGateway,
	CodePublishFailed:        http.StatusBadGateway,
	CodeLinkedInTokenReject:  http.StatusBadGateway,

	CodeServiceUnavailable:  http.StatusServiceUnavailable,
	CodeProviderUnavailable: http.StatusServiceUnavailable,
}

func codeToHTTPStatus(code ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HTTPStatusOf 返回错误码对应的 HTTP 状态码
func HTTPStatusOf(code ErrorCode) int {
	return codeToHTTPStatus(code)
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrUnauthorized       = New(CodeUnauthorized, "unauthorized")
	ErrForbidden          = New(CodeForbidden, "forbidden")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrConflict           = New(CodeConflict, "resource conflict")
	ErrTooManyRequests    = New(CodeTooManyRequests, "too many requests")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrTokenExpired = New(CodeTokenExpired, "token expired")
	ErrTokenInvalid = New(CodeTokenInvalid, "token invalid")
	ErrTokenMissing = New(CodeTokenMissing, "token missing")

	ErrPostNotFound       = New(CodePostNotFound, "post not found")
	ErrUserNotFound       = New(CodeUserNotFound, "user not found")
	ErrOnboardingNotFound = New(CodeOnboardingNotFound, "onboarding profile not found")

	ErrGenerationFailed     = New(CodeGenerationFailed, "post generation failed, please try again")
	ErrMalformedOutput      = New(CodeMalformedOutput, "model returned malformed output")
	ErrIncompleteGeneration = New(CodeIncompleteGeneration, "model returned incomplete sections")
	ErrInvalidSectionKey    = New(CodeInvalidSectionKey, "invalid section key")
	ErrInvalidFramework     = New(CodeInvalidFramework, "unknown framework")
	ErrPostAlreadyPublished = New(CodePostAlreadyPublished, "post already published")
	ErrPostIncomplete       = New(CodePostIncomplete, "post sections are incomplete")

	ErrProviderUnavailable = New(CodeProviderUnavailable, "text generation provider unavailable")
	ErrLLMProviderError    = New(CodeLLMProviderError, "text generation provider error")
	ErrLinkedInNotLinked   = New(CodeLinkedInNotLinked, "linkedin account not connected")
	ErrLinkedInTokenReject = New(CodeLinkedInTokenReject, "linkedin rejected the access token")
	ErrPublishFailed       = New(CodePublishFailed, "publish to linkedin failed")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}
