package node

import (
	"encoding/json"
	"strings"
)

// StripCodeFence 去掉模型常见的 ```json ... ``` 包裹
func StripCodeFence(s string) string {
	raw := strings.TrimSpace(s)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```")
	if nl := strings.IndexByte(raw, '\n'); nl >= 0 {
		raw = raw[nl+1:]
	} else {
		raw = strings.TrimPrefix(strings.TrimSpace(raw), "json")
	}
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}

// ExtractJSONObject 从模型输出中截取第一个完整的 JSON 对象。
// 模型可能在 JSON 前后夹杂说明文字或代码围栏。
func ExtractJSONObject(s string) (string, bool) {
	return extractBalanced(s, '{', '}', nil)
}

// ExtractJSONArrayFunc 截取第一个满足 accept 的完整 JSON 数组，跳过说明文字里的 [3] 之类片段。
// accept 为 nil 时返回第一个合法数组。
func ExtractJSONArrayFunc(s string, accept func(candidate string) bool) (string, bool) {
	return extractBalanced(s, '[', ']', accept)
}

// extractBalanced 自第一个 open 起按括号深度扫描（跳过字符串字面量），返回配平的片段
func extractBalanced(s string, open, close byte, accept func(string) bool) (string, bool) {
	raw := StripCodeFence(s)
	start := strings.IndexByte(raw, open)
	for start >= 0 {
		if end := matchClose(raw, start, open, close); end > start {
			candidate := raw[start : end+1]
			if json.Valid([]byte(candidate)) && (accept == nil || accept(candidate)) {
				return candidate, true
			}
		}
		next := strings.IndexByte(raw[start+1:], open)
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

func matchClose(raw string, start int, open, close byte) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
