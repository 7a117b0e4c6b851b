// Package port 定义生成流程对外部能力的依赖接口
package port

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/components/model"
)

var (
	// ErrProviderUnavailable 补全后端未配置或不可达
	ErrProviderUnavailable = errors.New("completion provider unavailable")
	// ErrEmptyCompletion 补全后端未返回任何文本
	ErrEmptyCompletion = errors.New("completion returned no text")
)

// CompletionRequest 一次补全请求
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	// Model 为空时使用提供商配置的默认模型
	Model       string
	Temperature float64
}

// CompletionClient 文本补全客户端。
// 每次调用最多发起一次网络请求，不重试、不缓存；取消与超时经由 ctx 传递到传输层。
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ChatModelFactory 按提供商名称返回 eino ChatModel，名称为空时取默认提供商
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}
