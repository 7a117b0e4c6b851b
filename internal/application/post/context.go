package post

import (
	"fmt"
	"sort"
	"strings"

	"linkedin-post-ai-api/internal/domain/entity"
)

// Profile 用户画像（引导问卷答案），可选的键值对
type Profile map[string]string

// Clone 返回副本
func (p Profile) Clone() Profile {
	if len(p) == 0 {
		return nil
	}
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// PromptBlock 渲染为提示词片段，键按字典序输出
func (p Profile) PromptBlock() string {
	keys := make([]string, 0, len(p))
	for k, v := range p {
		if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Author profile (match their voice, audience and examples):\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", strings.TrimSpace(k), strings.TrimSpace(p[k]))
	}
	return b.String()
}

// GenerationContext 单次生成的输入，构造后不再修改
type GenerationContext struct {
	Topic     string
	Hook      string
	Framework *entity.Framework
	Profile   Profile
}

// NewGenerationContext 创建生成上下文，画像会被复制
func NewGenerationContext(topic, hook string, framework *entity.Framework, profile Profile) GenerationContext {
	var fw *entity.Framework
	if framework != nil {
		f := *framework
		fw = &f
	}
	return GenerationContext{
		Topic:     strings.TrimSpace(topic),
		Hook:      strings.TrimSpace(hook),
		Framework: fw,
		Profile:   profile.Clone(),
	}
}

func (c GenerationContext) validate() error {
	if c.Topic == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidInput)
	}
	if c.Hook == "" {
		return fmt.Errorf("%w: hook is required", ErrInvalidInput)
	}
	if c.Framework != nil && !c.Framework.Valid() {
		return fmt.Errorf("%w: unknown framework %q", ErrInvalidInput, string(*c.Framework))
	}
	return nil
}
