package post

import (
	"context"
	"errors"
	"sync"

	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/service"
	"linkedin-post-ai-api/internal/workflow/port"
)

var errBackendDown = errors.New("backend down")

type reply struct {
	text string
	err  error
}

// scriptedClient 按阶段返回预设结果，并记录调用
type scriptedClient struct {
	mu      sync.Mutex
	replies map[string]reply
	calls   []string
	reqs    []port.CompletionRequest
}

func newScriptedClient() *scriptedClient {
	return &scriptedClient{replies: make(map[string]reply)}
}

func (c *scriptedClient) on(stage, text string) *scriptedClient {
	c.replies[stage] = reply{text: text}
	return c
}

func (c *scriptedClient) fail(stage string, err error) *scriptedClient {
	c.replies[stage] = reply{err: err}
	return c
}

func (c *scriptedClient) Complete(ctx context.Context, req port.CompletionRequest) (string, error) {
	stage := service.WorkflowFromContext(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, stage)
	c.reqs = append(c.reqs, req)
	r, ok := c.replies[stage]
	if !ok {
		return "", errBackendDown
	}
	return r.text, r.err
}

func (c *scriptedClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func (c *scriptedClient) stages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func newTestGenerator(c port.CompletionClient) *Generator {
	return NewGenerator(c, nil, DefaultGenerationConfig())
}

func sampleSections() entity.PostSections {
	return entity.PostSections{
		Intro:            "Last spring I logged off at 9pm every night and still felt behind.",
		MainInsight:      "Remote work did not burn me out. My calendar did.",
		SupportingDetail: "I counted 31 meetings in one week, and 12 of them had no agenda.",
		ShiftTakeaway:    "Protect focus blocks the way you protect client calls.",
		CTA:              "How many meetings did you have last week?",
	}
}

const sectionsJSON = `{
  "intro": "Last spring I logged off at 9pm every night and still felt behind.",
  "main_insight": "Remote work did not burn me out. My calendar did.",
  "supporting_detail": "I counted 31 meetings in one week, and 12 of them had no agenda.",
  "shift_takeaway": "Protect focus blocks the way you protect client calls.",
  "cta": "How many meetings did you have last week?",
  "design_idea": "A calendar screenshot with every meeting block shaded red."
}`

const refinedJSON = `{
  "intro": "Last spring I closed my laptop at 9pm. Every night. Still behind.",
  "main_insight": "Remote work was not the problem. My calendar was.",
  "supporting_detail": "31 meetings in one week. 12 had no agenda.",
  "shift_takeaway": "Treat focus time like a client call you cannot move.",
  "cta": "How many meetings did you sit through last week?"
}`
