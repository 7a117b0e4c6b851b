// Package prompt 管理帖子生成各阶段的提示词模板
package prompt

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptHooksV1              PromptID = "post_hooks_v1"
	PromptFrameworkRecommendV1 PromptID = "post_framework_recommend_v1"
	PromptSectionsV1           PromptID = "post_sections_v1"
	PromptRefineVoiceV1        PromptID = "post_refine_voice_v1"
	PromptRefineLogicV1        PromptID = "post_refine_logic_v1"
	PromptRegenerateSectionV1  PromptID = "post_regenerate_section_v1"
	PromptPolishSectionV1      PromptID = "post_polish_section_v1"
)

// knownPrompts 已注册的模板，文件名为 templates/<id>.system.txt 与 templates/<id>.user.txt
var knownPrompts = map[PromptID]struct{}{
	PromptHooksV1:              {},
	PromptFrameworkRecommendV1: {},
	PromptSectionsV1:           {},
	PromptRefineVoiceV1:        {},
	PromptRefineLogicV1:        {},
	PromptRegenerateSectionV1:  {},
	PromptPolishSectionV1:      {},
}

// Rendered 渲染后的提示词
type Rendered struct {
	System string
	User   string
}

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	systemPath, userPath, err := resolvePromptFiles(id)
	if err != nil {
		return nil, err
	}
	system, err := readEmbeddedText(systemPath)
	if err != nil {
		return nil, err
	}
	user, err := readEmbeddedText(userPath)
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)
	r.cache[id] = tpl
	return tpl, nil
}

// Render 用变量填充模板，返回 system / user 两段文本
func (r *Registry) Render(ctx context.Context, id PromptID, vars map[string]any) (Rendered, error) {
	tpl, err := r.ChatTemplate(id)
	if err != nil {
		return Rendered{}, err
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return Rendered{}, fmt.Errorf("format prompt %s: %w", id, err)
	}

	var out Rendered
	for _, m := range msgs {
		if m == nil {
			continue
		}
		switch m.Role {
		case schema.System:
			out.System = m.Content
		case schema.User:
			out.User = m.Content
		}
	}
	if out.System == "" || out.User == "" {
		return Rendered{}, fmt.Errorf("prompt %s rendered empty message", id)
	}
	return out, nil
}

func resolvePromptFiles(id PromptID) (systemFile string, userFile string, err error) {
	if _, ok := knownPrompts[id]; !ok {
		return "", "", fmt.Errorf("unknown prompt id: %s", id)
	}
	base := "templates/" + string(id)
	return base + ".system.txt", base + ".user.txt", nil
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
