package node

import (
	"strings"
	"unicode/utf8"
)

func TruncateByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}

// labelTrimSet 模型返回单个标签时常见的包裹符号
const labelTrimSet = "\"'`*“”‘’.。 \t\r\n"

// CleanLabel 规整模型返回的单行标签：取第一条非空行，去掉引号、反引号、加粗符号和句末标点
func CleanLabel(s string) string {
	for _, line := range strings.Split(StripCodeFence(s), "\n") {
		line = strings.Trim(line, labelTrimSet)
		line = strings.TrimPrefix(line, "Framework:")
		line = strings.Trim(line, labelTrimSet)
		if line != "" {
			return line
		}
	}
	return ""
}

// CleanPlainText 规整模型返回的纯文本段落：去掉代码围栏、首尾引号和多余空行
func CleanPlainText(s string) string {
	raw := StripCodeFence(s)
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 {
		first, last := raw[0], raw[len(raw)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			raw = strings.TrimSpace(raw[1 : len(raw)-1])
		}
	}
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			if blank || len(out) == 0 {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
