package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"linkedin-post-ai-api/internal/config"
)

const (
	anthropicModelType        = "Anthropic"
	defaultAnthropicModel     = "claude-haiku-4-5-20251001"
	defaultAnthropicMaxTokens = 1024
)

// AnthropicChatModel 基于 Anthropic Messages API 的 eino ChatModel。
// 每次 Generate 发起一次请求，SDK 层重试关闭。
type AnthropicChatModel struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float32
}

var _ model.BaseChatModel = (*AnthropicChatModel)(nil)

// NewAnthropicChatModel 创建 Anthropic ChatModel
func NewAnthropicChatModel(p config.ProviderConfig) (*AnthropicChatModel, error) {
	apiKey := strings.TrimSpace(p.APIKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key is empty")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if endpoint := strings.TrimSpace(p.BaseURL); endpoint != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(endpoint, "/")+"/"))
	}
	if p.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(p.Timeout))
	}

	m := &AnthropicChatModel{
		client:      anthropic.NewClient(opts...),
		model:       strings.TrimSpace(p.Model),
		maxTokens:   p.MaxTokens,
		temperature: float32(p.Temperature),
	}
	if m.model == "" {
		m.model = defaultAnthropicModel
	}
	if m.maxTokens <= 0 {
		m.maxTokens = defaultAnthropicMaxTokens
	}
	return m, nil
}

// Generate 实现 model.BaseChatModel
func (m *AnthropicChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (outMsg *schema.Message, err error) {
	ctx = callbacks.EnsureRunInfo(ctx, m.GetType(), components.ComponentOfChatModel)

	options := model.GetCommonOptions(&model.Options{
		Model:       &m.model,
		Temperature: &m.temperature,
		MaxTokens:   &m.maxTokens,
	}, opts...)
	cbConfig := &model.Config{
		Model:       derefString(options.Model),
		MaxTokens:   derefInt(options.MaxTokens),
		Temperature: derefFloat32(options.Temperature),
	}

	ctx = callbacks.OnStart(ctx, &model.CallbackInput{
		Messages: input,
		Config:   cbConfig,
	})
	defer func() {
		if err != nil {
			callbacks.OnError(ctx, err)
		}
	}()

	params, err := buildAnthropicParams(input, cbConfig)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	usage := &schema.TokenUsage{
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
		TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
	}
	outMsg = &schema.Message{
		Role:    schema.Assistant,
		Content: b.String(),
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: string(resp.StopReason),
			Usage:        usage,
		},
	}
	if resp.Model != "" {
		cbConfig.Model = string(resp.Model)
	}

	callbacks.OnEnd(ctx, &model.CallbackOutput{
		Message: outMsg,
		Config:  cbConfig,
		TokenUsage: &model.TokenUsage{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		},
	})
	return outMsg, nil
}

// Stream 以单帧流返回完整结果
func (m *AnthropicChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// GetType 返回组件类型名
func (m *AnthropicChatModel) GetType() string {
	return anthropicModelType
}

// IsCallbacksEnabled 回调由组件自行触发
func (m *AnthropicChatModel) IsCallbacksEnabled() bool {
	return true
}

func buildAnthropicParams(input []*schema.Message, cfg *model.Config) (anthropic.MessageNewParams, error) {
	var (
		system []anthropic.TextBlockParam
		msgs   []anthropic.MessageParam
	)
	for _, msg := range input {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.System:
			if strings.TrimSpace(msg.Content) != "" {
				system = append(system, anthropic.TextBlockParam{Text: msg.Content})
			}
		case schema.User:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case schema.Assistant:
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			return anthropic.MessageNewParams{}, fmt.Errorf("anthropic: unsupported message role %q", msg.Role)
		}
	}
	if len(msgs) == 0 {
		return anthropic.MessageNewParams{}, errors.New("anthropic: no user message")
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(cfg.Model),
		MaxTokens:   int64(cfg.MaxTokens),
		Messages:    msgs,
		Temperature: anthropic.Float(float64(cfg.Temperature)),
	}
	if len(system) > 0 {
		params.System = system
	}
	return params, nil
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefFloat32(p *float32) float32 {
	if p == nil {
		return 0
	}
	return *p
}
