// Package service 定义跨层共享的领域服务契约
package service

import (
	"context"
	"strings"
)

type llmCtxKey uint8

const (
	keyWorkflow llmCtxKey = iota
	keyProvider
	keyUser
)

// 未标记环节或提供商时的指标标签
const unknownLabel = "unknown"

// 生成流程各环节名称，用作指标、日志与用量明细中的 workflow
const (
	WorkflowHooks             = "post_hooks"
	WorkflowRecommend         = "post_framework_recommend"
	WorkflowSections          = "post_sections"
	WorkflowRefineVoice       = "post_refine_voice"
	WorkflowRefineLogic       = "post_refine_logic"
	WorkflowRegenerateSection = "post_regenerate_section"
	WorkflowPolishSection     = "post_polish_section"
)

// withTrimmed 空白值不覆盖已有标记
func withTrimmed(ctx context.Context, key llmCtxKey, v string) context.Context {
	if ctx == nil {
		return nil
	}
	if v = strings.TrimSpace(v); v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func valueOr(ctx context.Context, key llmCtxKey, fallback string) string {
	if ctx == nil {
		return fallback
	}
	if s, ok := ctx.Value(key).(string); ok && s != "" {
		return s
	}
	return fallback
}

func WithWorkflow(ctx context.Context, workflow string) context.Context {
	return withTrimmed(ctx, keyWorkflow, workflow)
}

func WithProvider(ctx context.Context, provider string) context.Context {
	return withTrimmed(ctx, keyProvider, provider)
}

func WithWorkflowProvider(ctx context.Context, workflow, provider string) context.Context {
	return WithProvider(WithWorkflow(ctx, workflow), provider)
}

// WorkflowFromContext 未标记时返回 "unknown"
func WorkflowFromContext(ctx context.Context) string {
	return valueOr(ctx, keyWorkflow, unknownLabel)
}

// ProviderFromContext 未标记时返回 "unknown"
func ProviderFromContext(ctx context.Context) string {
	return valueOr(ctx, keyProvider, unknownLabel)
}

// WithUser 标记发起调用的用户，用量按该用户累计
func WithUser(ctx context.Context, userID string) context.Context {
	return withTrimmed(ctx, keyUser, userID)
}

// UserFromContext 未标记时返回空字符串
func UserFromContext(ctx context.Context) string {
	return valueOr(ctx, keyUser, "")
}
