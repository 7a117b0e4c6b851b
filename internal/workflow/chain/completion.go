// Package chain 基于 eino compose 编排的 LLM 调用链
package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	llmctx "linkedin-post-ai-api/internal/domain/service"
	workflowport "linkedin-post-ai-api/internal/workflow/port"
)

// CompletionChain 以 eino ChatModel 实现 port.CompletionClient。
// 每次 Complete 只调用一次 Generate，不重试。
type CompletionChain struct {
	factory  workflowport.ChatModelFactory
	provider string

	chainOnce sync.Once
	chain     compose.Runnable[workflowport.CompletionRequest, string]
	chainErr  error
}

var _ workflowport.CompletionClient = (*CompletionChain)(nil)

// NewCompletionChain 创建补全链，provider 为空时由工厂选择默认提供商
func NewCompletionChain(factory workflowport.ChatModelFactory, provider string) *CompletionChain {
	return &CompletionChain{factory: factory, provider: strings.TrimSpace(provider)}
}

// Complete 实现 port.CompletionClient
func (c *CompletionChain) Complete(ctx context.Context, req workflowport.CompletionRequest) (string, error) {
	if c == nil || c.factory == nil {
		return "", fmt.Errorf("%w: llm factory not configured", workflowport.ErrProviderUnavailable)
	}
	chain, err := c.getChain()
	if err != nil {
		return "", err
	}
	return chain.Invoke(llmctx.WithProvider(ctx, c.provider), req)
}

type completionChainState struct {
	In       workflowport.CompletionRequest
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *CompletionChain) getChain() (compose.Runnable[workflowport.CompletionRequest, string], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *CompletionChain) buildChain(ctx context.Context) (compose.Runnable[workflowport.CompletionRequest, string], error) {
	chain := compose.NewChain[workflowport.CompletionRequest, string]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in workflowport.CompletionRequest) (*completionChainState, error) {
			return &completionChainState{In: in}, nil
		}),
		compose.WithNodeName("completion.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *completionChainState) (*completionChainState, error) {
			msgs := make([]*schema.Message, 0, 2)
			if s := strings.TrimSpace(st.In.SystemPrompt); s != "" {
				msgs = append(msgs, schema.SystemMessage(s))
			}
			msgs = append(msgs, schema.UserMessage(st.In.UserPrompt))
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName("completion.messages"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *completionChainState) (*completionChainState, error) {
			chatModel, err := c.factory.Get(ctx, c.provider)
			if err != nil {
				if errors.Is(err, workflowport.ErrProviderUnavailable) {
					return nil, err
				}
				return nil, fmt.Errorf("%w: %w", workflowport.ErrProviderUnavailable, err)
			}

			outMsg, err := chatModel.Generate(ctx, st.Messages, buildCompletionOptions(st.In)...)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, fmt.Errorf("%w: %w", workflowport.ErrProviderUnavailable, ctxErr)
				}
				return nil, fmt.Errorf("%w: %w", workflowport.ErrProviderUnavailable, err)
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName("completion.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *completionChainState) (string, error) {
			if st.OutMsg == nil || strings.TrimSpace(st.OutMsg.Content) == "" {
				return "", workflowport.ErrEmptyCompletion
			}
			return st.OutMsg.Content, nil
		}),
		compose.WithNodeName("completion.finalize"),
	)

	return chain.Compile(ctx)
}

func buildCompletionOptions(in workflowport.CompletionRequest) []model.Option {
	opts := make([]model.Option, 0, 2)
	opts = append(opts, model.WithTemperature(float32(in.Temperature)))
	if m := strings.TrimSpace(in.Model); m != "" {
		opts = append(opts, model.WithModel(m))
	}
	return opts
}
