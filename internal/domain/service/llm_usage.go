package service

import "context"

// LLMUsageInput 单次模型调用的用量，由 eino 回调在调用结束时产出
type LLMUsageInput struct {
	UserID   string
	Workflow string
	Provider string
	Model    string

	PromptTokens     int
	CompletionTokens int
	DurationMs       int
}

// LLMUsage 用户某一 UTC 日的累计用量
type LLMUsage struct {
	Day              string `json:"day"`
	Calls            int64  `json:"calls"`
	PromptTokens     int64  `json:"prompt_tokens"`
	CompletionTokens int64  `json:"completion_tokens"`
}

// TotalTokens 输入与输出之和，日配额按该值计算
func (u LLMUsage) TotalTokens() int64 {
	return u.PromptTokens + u.CompletionTokens
}

// LLMUsageRecorder 记录失败只影响统计，调用方记录日志后继续
type LLMUsageRecorder interface {
	Record(ctx context.Context, in LLMUsageInput) error
}
