package post

import (
	"errors"

	"linkedin-post-ai-api/internal/workflow/port"
)

// 生成流程的错误类型，调用方使用 errors.Is 判断
var (
	ErrProviderUnavailable       = port.ErrProviderUnavailable
	ErrEmptyCompletion           = port.ErrEmptyCompletion
	ErrMalformedGenerationOutput = errors.New("malformed generation output")
	ErrIncompleteGeneration      = errors.New("incomplete generation")
	ErrInvalidSectionKey         = errors.New("invalid section key")
	ErrInvalidInput              = errors.New("invalid generation input")
)
