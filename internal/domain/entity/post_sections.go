package entity

import (
	"fmt"
	"strings"
)

// SectionKey 帖子分段键
type SectionKey string

const (
	SectionIntro            SectionKey = "intro"
	SectionMainInsight      SectionKey = "main_insight"
	SectionSupportingDetail SectionKey = "supporting_detail"
	SectionShiftTakeaway    SectionKey = "shift_takeaway"
	SectionCTA              SectionKey = "cta"
)

// sectionOrder 分段的叙事顺序：引入 -> 洞察 -> 论据 -> 转折 -> 行动
var sectionOrder = [...]SectionKey{
	SectionIntro,
	SectionMainInsight,
	SectionSupportingDetail,
	SectionShiftTakeaway,
	SectionCTA,
}

// SectionKeys 按固定顺序返回全部分段键
func SectionKeys() []SectionKey {
	keys := make([]SectionKey, len(sectionOrder))
	copy(keys, sectionOrder[:])
	return keys
}

// ParseSectionKey 解析分段键，仅接受五个已知键
func ParseSectionKey(s string) (SectionKey, bool) {
	for _, k := range sectionOrder {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// PostSections 帖子正文的五个分段（值对象）
type PostSections struct {
	Intro            string `json:"intro"`
	MainInsight      string `json:"main_insight"`
	SupportingDetail string `json:"supporting_detail"`
	ShiftTakeaway    string `json:"shift_takeaway"`
	CTA              string `json:"cta"`
}

// IncompleteSectionsError 分段不完整
type IncompleteSectionsError struct {
	Missing []SectionKey
}

func (e *IncompleteSectionsError) Error() string {
	names := make([]string, len(e.Missing))
	for i, k := range e.Missing {
		names[i] = string(k)
	}
	return fmt.Sprintf("sections incomplete: missing %s", strings.Join(names, ", "))
}

// Get 返回指定分段内容
func (s PostSections) Get(key SectionKey) string {
	switch key {
	case SectionIntro:
		return s.Intro
	case SectionMainInsight:
		return s.MainInsight
	case SectionSupportingDetail:
		return s.SupportingDetail
	case SectionShiftTakeaway:
		return s.ShiftTakeaway
	case SectionCTA:
		return s.CTA
	default:
		return ""
	}
}

// With 返回替换了指定分段的新值，接收者不变
func (s PostSections) With(key SectionKey, text string) PostSections {
	switch key {
	case SectionIntro:
		s.Intro = text
	case SectionMainInsight:
		s.MainInsight = text
	case SectionSupportingDetail:
		s.SupportingDetail = text
	case SectionShiftTakeaway:
		s.ShiftTakeaway = text
	case SectionCTA:
		s.CTA = text
	}
	return s
}

// Missing 返回缺失或空白的分段键
func (s PostSections) Missing() []SectionKey {
	var missing []SectionKey
	for _, k := range sectionOrder {
		if strings.TrimSpace(s.Get(k)) == "" {
			missing = append(missing, k)
		}
	}
	return missing
}

// IsComplete 五个分段均非空
func (s PostSections) IsComplete() bool {
	return len(s.Missing()) == 0
}

// Validate 校验完整性
func (s PostSections) Validate() error {
	if missing := s.Missing(); len(missing) > 0 {
		return &IncompleteSectionsError{Missing: missing}
	}
	return nil
}

// Trimmed 返回去除首尾空白后的副本
func (s PostSections) Trimmed() PostSections {
	for _, k := range sectionOrder {
		s = s.With(k, strings.TrimSpace(s.Get(k)))
	}
	return s
}

// SectionsFromMap 从键值构建分段，并返回缺失的键
func SectionsFromMap(m map[string]string) (PostSections, []SectionKey) {
	var s PostSections
	for _, k := range sectionOrder {
		s = s.With(k, m[string(k)])
	}
	return s, s.Missing()
}
