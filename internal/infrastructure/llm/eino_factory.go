// Package llm 提供 LLM 客户端的构建与缓存
package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"linkedin-post-ai-api/internal/config"
	workflowport "linkedin-post-ai-api/internal/workflow/port"
)

// EinoFactory 管理多个 Eino ChatModel 客户端实例
type EinoFactory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

var _ workflowport.ChatModelFactory = (*EinoFactory)(nil)

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{
		config: &cfg.LLM,
		models: make(map[string]model.BaseChatModel),
	}
}

// Get 获取指定名称的 ChatModel，如果未指定则返回默认客户端。
// 提供商未配置或缺少凭证时返回 port.ErrProviderUnavailable，不会发起网络请求。
func (f *EinoFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = f.config.DefaultProvider
	}

	f.mu.RLock()
	m, ok := f.models[name]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if m, ok = f.models[name]; ok {
		return m, nil
	}

	providerCfg, ok := f.config.Providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: provider %q not found in LLM config", workflowport.ErrProviderUnavailable, name)
	}
	if strings.TrimSpace(providerCfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: provider %q has no api key", workflowport.ErrProviderUnavailable, name)
	}

	var (
		chatModel model.BaseChatModel
		err       error
	)
	switch providerType(providerCfg) {
	case config.ProviderTypeAnthropic:
		chatModel, err = NewAnthropicChatModel(providerCfg)
	case config.ProviderTypeOpenAI:
		chatModel, err = newOpenAIChatModel(ctx, providerCfg)
	default:
		return nil, fmt.Errorf("%w: provider %q has unsupported type %q", workflowport.ErrProviderUnavailable, name, providerCfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: create chat model for %s: %w", workflowport.ErrProviderUnavailable, name, err)
	}

	f.models[name] = chatModel
	return chatModel, nil
}

// Default 返回默认 ChatModel
func (f *EinoFactory) Default(ctx context.Context) (model.BaseChatModel, error) {
	return f.Get(ctx, "")
}

func newOpenAIChatModel(ctx context.Context, p config.ProviderConfig) (model.BaseChatModel, error) {
	cfg := &openai.ChatModelConfig{
		APIKey:      p.APIKey,
		BaseURL:     strings.TrimRight(strings.TrimSpace(p.BaseURL), "/"),
		Model:       p.Model,
		Temperature: ptrFloat32(float32(p.Temperature)),
		Timeout:     p.Timeout,
	}
	if p.MaxTokens > 0 {
		maxTokens := p.MaxTokens
		cfg.MaxTokens = &maxTokens
	}
	return openai.NewChatModel(ctx, cfg)
}

// providerType 未显式声明类型时按 openai 兼容接口处理
func providerType(p config.ProviderConfig) string {
	t := strings.ToLower(strings.TrimSpace(p.Type))
	if t == "" {
		return config.ProviderTypeOpenAI
	}
	return t
}

func ptrFloat32(f float32) *float32 {
	return &f
}
