package linkedin

import "strings"

// littleTextReplacer 转义 LinkedIn commentary 字段的保留字符，未转义时帖子会被截断
var littleTextReplacer = strings.NewReplacer(
	`\`, `\\`,
	`|`, `\|`,
	`{`, `\{`,
	`}`, `\}`,
	`@`, `\@`,
	`[`, `\[`,
	`]`, `\]`,
	`(`, `\(`,
	`)`, `\)`,
	`<`, `\<`,
	`>`, `\>`,
	`#`, `\#`,
	`*`, `\*`,
	`_`, `\_`,
	`~`, `\~`,
)

// EscapeCommentary 转义纯文本。行首的 #话题 保持原样以便 LinkedIn 识别为话题标签
func EscapeCommentary(s string) string {
	words := strings.SplitAfter(s, " ")
	var b strings.Builder
	b.Grow(len(s))
	for _, w := range words {
		b.WriteString(escapeWord(w))
	}
	return b.String()
}

func escapeWord(w string) string {
	if isHashtag(strings.TrimSpace(w)) {
		return w
	}
	// 多行单词拆开处理，保证换行后的话题标签同样保留
	if strings.Contains(w, "\n") {
		parts := strings.SplitAfter(w, "\n")
		for i, p := range parts {
			if isHashtag(strings.TrimSpace(p)) {
				continue
			}
			parts[i] = littleTextReplacer.Replace(p)
		}
		return strings.Join(parts, "")
	}
	return littleTextReplacer.Replace(w)
}

func isHashtag(w string) bool {
	if len(w) < 2 || w[0] != '#' {
		return false
	}
	for _, r := range w[1:] {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r > 127) {
			return false
		}
	}
	return true
}
