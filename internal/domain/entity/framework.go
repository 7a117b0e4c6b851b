package entity

import "strings"

// Framework 帖子叙事框架，取值限定在固定目录内
type Framework string

const (
	FrameworkProblemStakesSolution     Framework = "Problem → Stakes → Solution"
	FrameworkBeforeAfterBridge         Framework = "Before → After → Bridge"
	FrameworkMythTruthProof            Framework = "Myth → Truth → Proof"
	FrameworkStoryLessonApplication    Framework = "Story → Lesson → Application"
	FrameworkMistakeLessonAdvice       Framework = "Mistake → Lesson → Advice"
	FrameworkObservationInsightAction  Framework = "Observation → Insight → Action"
	FrameworkContrarianEvidenceReframe Framework = "Contrarian Take → Evidence → Reframe"
	FrameworkQuestionExplorationAnswer Framework = "Question → Exploration → Answer"
	FrameworkChallengeJourneyResult    Framework = "Challenge → Journey → Result"
)

// DefaultFramework 推荐失败时使用的框架
const DefaultFramework = FrameworkProblemStakesSolution

type frameworkEntry struct {
	label       Framework
	instruction string
}

var frameworkCatalog = [...]frameworkEntry{
	{FrameworkProblemStakesSolution, "Open by naming a specific problem the reader recognizes, raise the stakes by showing what it costs if ignored, then resolve with a concrete solution the reader can apply."},
	{FrameworkBeforeAfterBridge, "Describe the painful 'before' state, paint the improved 'after' state, then explain the bridge: the specific change that gets the reader from one to the other."},
	{FrameworkMythTruthProof, "State a widely held belief as the myth, counter it with the truth, then back the truth with proof such as data, an example, or lived experience."},
	{FrameworkStoryLessonApplication, "Tell a short personal or observed story, extract the single lesson it teaches, then show how the reader can apply that lesson in their own work."},
	{FrameworkMistakeLessonAdvice, "Admit a specific mistake, explain what it taught you, then turn the lesson into direct advice so the reader avoids the same mistake."},
	{FrameworkObservationInsightAction, "Share a concrete observation from work or the industry, draw a non-obvious insight from it, then end with one action the reader should take."},
	{FrameworkContrarianEvidenceReframe, "Lead with a contrarian take that challenges conventional wisdom, support it with evidence, then reframe how the reader should think about the topic."},
	{FrameworkQuestionExplorationAnswer, "Pose a provocative question the audience cares about, explore the tension or options around it, then give a clear and opinionated answer."},
	{FrameworkChallengeJourneyResult, "Set up a real challenge, walk through the journey of tackling it including setbacks, then share the measurable result and what made the difference."},
}

// Frameworks 按目录顺序返回全部框架
func Frameworks() []Framework {
	out := make([]Framework, len(frameworkCatalog))
	for i, e := range frameworkCatalog {
		out[i] = e.label
	}
	return out
}

// Valid 是否为目录成员
func (f Framework) Valid() bool {
	_, ok := lookupFramework(string(f))
	return ok
}

// Instruction 返回框架对应的结构化写作指令
func (f Framework) Instruction() string {
	e, ok := lookupFramework(string(f))
	if !ok {
		return ""
	}
	return e.instruction
}

func (f Framework) String() string {
	return string(f)
}

// ParseFramework 精确匹配目录成员（忽略首尾空白）
func ParseFramework(s string) (Framework, bool) {
	e, ok := lookupFramework(strings.TrimSpace(s))
	if !ok {
		return "", false
	}
	return e.label, true
}

// FrameworkOrDefault 转换字符串，不在目录内时回退到默认框架
func FrameworkOrDefault(s string) Framework {
	if f, ok := ParseFramework(s); ok {
		return f
	}
	return DefaultFramework
}

func lookupFramework(s string) (frameworkEntry, bool) {
	for _, e := range frameworkCatalog {
		if string(e.label) == s {
			return e, true
		}
	}
	return frameworkEntry{}, false
}
