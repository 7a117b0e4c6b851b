package post

import (
	"strings"

	"linkedin-post-ai-api/internal/domain/entity"
)

// ComposePostText 拼接发布正文：开头 + 按固定顺序的五个分段，空段跳过，段间空行
func ComposePostText(hook string, sections entity.PostSections) string {
	parts := make([]string, 0, 6)
	if h := strings.TrimSpace(hook); h != "" {
		parts = append(parts, h)
	}
	for _, k := range entity.SectionKeys() {
		if s := strings.TrimSpace(sections.Get(k)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}
