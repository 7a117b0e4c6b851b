package post

import (
	"encoding/json"
	"fmt"
	"strings"

	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/workflow/node"
)

const designIdeaKey = "design_idea"

// parseHooks 解析开头列表。整段输出能解析为 JSON 时必须是数组；
// 否则从夹杂文字的输出中截取第一个全部由字符串组成的数组。
func parseHooks(raw string) ([]string, error) {
	body := node.StripCodeFence(raw)

	var items []any
	var whole any
	if err := json.Unmarshal([]byte(body), &whole); err == nil {
		arr, ok := whole.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: hooks response is %T, want JSON array", ErrMalformedGenerationOutput, whole)
		}
		items = arr
	} else {
		extracted, ok := node.ExtractJSONArrayFunc(body, isStringArray)
		if !ok {
			return nil, fmt.Errorf("%w: hooks response is not a JSON array", ErrMalformedGenerationOutput)
		}
		if err := json.Unmarshal([]byte(extracted), &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedGenerationOutput, err)
		}
	}

	hooks := make([]string, 0, len(items))
	for i, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil, fmt.Errorf("%w: hook %d is %T, want string", ErrMalformedGenerationOutput, i, it)
		}
		if s = strings.TrimSpace(s); s != "" {
			hooks = append(hooks, s)
		}
	}
	if len(hooks) < MinHooks {
		return nil, fmt.Errorf("%w: got %d hooks, want at least %d", ErrMalformedGenerationOutput, len(hooks), MinHooks)
	}
	if len(hooks) > MaxHooks {
		hooks = hooks[:MaxHooks]
	}
	return hooks, nil
}

func isStringArray(candidate string) bool {
	var items []string
	return json.Unmarshal([]byte(candidate), &items) == nil
}

// parseSections 解析分段生成结果，六个键（五个分段与 design_idea）缺一即视为不完整
func parseSections(raw string) (entity.PostSections, string, error) {
	fields, err := decodeStringFields(raw)
	if err != nil {
		return entity.PostSections{}, "", err
	}

	var missing []string
	for _, k := range entity.SectionKeys() {
		if strings.TrimSpace(fields[string(k)]) == "" {
			missing = append(missing, string(k))
		}
	}
	if strings.TrimSpace(fields[designIdeaKey]) == "" {
		missing = append(missing, designIdeaKey)
	}
	if len(missing) > 0 {
		return entity.PostSections{}, "", fmt.Errorf("%w: missing %s", ErrIncompleteGeneration, strings.Join(missing, ", "))
	}

	sections, _ := entity.SectionsFromMap(fields)
	return sections.Trimmed(), strings.TrimSpace(fields[designIdeaKey]), nil
}

// parseRefinedSections 解析润色结果，要求五个分段齐全
func parseRefinedSections(raw string) (entity.PostSections, error) {
	fields, err := decodeStringFields(raw)
	if err != nil {
		return entity.PostSections{}, err
	}
	sections, missing := entity.SectionsFromMap(fields)
	if len(missing) > 0 {
		return entity.PostSections{}, fmt.Errorf("%w: %v", ErrIncompleteGeneration, &entity.IncompleteSectionsError{Missing: missing})
	}
	return sections.Trimmed(), nil
}

// decodeStringFields 提取 JSON 对象中的字符串字段，非字符串值视为缺失
func decodeStringFields(raw string) (map[string]string, error) {
	obj, ok := node.ExtractJSONObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: response is not a JSON object", ErrMalformedGenerationOutput)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGenerationOutput, err)
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[k] = s
		}
	}
	return out, nil
}
