package post

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkedin-post-ai-api/internal/config"
	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/service"
)

func TestGenerateHooks(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    []string
		wantErr error
	}{
		{
			name:  "plain array",
			reply: `["Remote work isn't the problem. Your calendar is.", "I worked remotely for 5 years.", "Burnout has a schedule."]`,
			want:  []string{"Remote work isn't the problem. Your calendar is.", "I worked remotely for 5 years.", "Burnout has a schedule."},
		},
		{
			name:  "fenced array with prose",
			reply: "Here you go:\n```json\n[\"a\", \"b\", \"c\", \"d\"]\n```",
			want:  []string{"a", "b", "c", "d"},
		},
		{
			name:  "truncates to five and drops blanks",
			reply: `["a", " ", "b", "c", "d", "e", "f"]`,
			want:  []string{"a", "b", "c", "d", "e"},
		},
		{
			name:  "skips bracketed prose before the array",
			reply: "Here are [3] hooks:\n[\"a\", \"b\", \"c\"]",
			want:  []string{"a", "b", "c"},
		},
		{name: "invalid json", reply: "Hook one. Hook two. Hook three.", wantErr: ErrMalformedGenerationOutput},
		{name: "object instead of array", reply: `{"hooks": ["a", "b", "c"]}`, wantErr: ErrMalformedGenerationOutput},
		{name: "non string element", reply: `["a", 2, "c"]`, wantErr: ErrMalformedGenerationOutput},
		{name: "too few hooks", reply: `["a", "", "b"]`, wantErr: ErrMalformedGenerationOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newScriptedClient().on(service.WorkflowHooks, tt.reply)
			got, err := newTestGenerator(c).GenerateHooks(context.Background(), "remote work burnout", nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateHooks_PropagatesProviderErrors(t *testing.T) {
	c := newScriptedClient().fail(service.WorkflowHooks, ErrProviderUnavailable)
	_, err := newTestGenerator(c).GenerateHooks(context.Background(), "topic", nil)
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	c = newScriptedClient().on(service.WorkflowHooks, "   ")
	_, err = newTestGenerator(c).GenerateHooks(context.Background(), "topic", nil)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestGenerateHooks_EmptyTopicMakesNoCall(t *testing.T) {
	c := newScriptedClient()
	_, err := newTestGenerator(c).GenerateHooks(context.Background(), "  ", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, c.callCount())
}

func TestGenerateHooks_UsesStageSettings(t *testing.T) {
	c := newScriptedClient().on(service.WorkflowHooks, `["a","b","c"]`)
	cfg := NewGenerationConfig(config.GenerationConfig{
		DefaultModel: "gpt-4o",
		Models:       map[string]string{"hooks": "gpt-4o-mini"},
	})
	g := NewGenerator(c, nil, cfg)

	_, err := g.GenerateHooks(context.Background(), "remote work", Profile{"role": "engineering manager"})
	require.NoError(t, err)
	require.Len(t, c.reqs, 1)
	assert.Equal(t, "gpt-4o-mini", c.reqs[0].Model)
	assert.InDelta(t, 0.9, c.reqs[0].Temperature, 1e-9)
	assert.Contains(t, c.reqs[0].UserPrompt, "role: engineering manager")
}

func TestRecommendFramework(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*scriptedClient)
		want  entity.Framework
	}{
		{
			name:  "exact label",
			setup: func(c *scriptedClient) { c.on(service.WorkflowRecommend, "Myth → Truth → Proof") },
			want:  entity.FrameworkMythTruthProof,
		},
		{
			name:  "quoted label with period",
			setup: func(c *scriptedClient) { c.on(service.WorkflowRecommend, "\"Before → After → Bridge\".") },
			want:  entity.FrameworkBeforeAfterBridge,
		},
		{
			name:  "garbage falls back",
			setup: func(c *scriptedClient) { c.on(service.WorkflowRecommend, "I would go with a listicle!") },
			want:  entity.DefaultFramework,
		},
		{
			name:  "provider failure falls back",
			setup: func(c *scriptedClient) { c.fail(service.WorkflowRecommend, ErrProviderUnavailable) },
			want:  entity.DefaultFramework,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newScriptedClient()
			tt.setup(c)
			got := newTestGenerator(c).RecommendFramework(context.Background(), "Remote work isn't the problem.", "remote work burnout")
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestRecommendFramework_PromptListsCatalog(t *testing.T) {
	c := newScriptedClient().on(service.WorkflowRecommend, string(entity.FrameworkChallengeJourneyResult))
	newTestGenerator(c).RecommendFramework(context.Background(), "hook", "topic")

	require.Len(t, c.reqs, 1)
	for _, f := range entity.Frameworks() {
		assert.Contains(t, c.reqs[0].SystemPrompt, f.String())
	}
	assert.InDelta(t, 0.2, c.reqs[0].Temperature, 1e-9)
}

func TestRecommendFramework_EmptyInputSkipsCall(t *testing.T) {
	c := newScriptedClient()
	got := newTestGenerator(c).RecommendFramework(context.Background(), "", "topic")
	assert.Equal(t, entity.DefaultFramework, got)
	assert.Zero(t, c.callCount())
}

func TestRecommendFramework_ConfiguredFallback(t *testing.T) {
	cfg := DefaultGenerationConfig()
	cfg.DefaultFramework = entity.FrameworkMythTruthProof
	c := newScriptedClient().on(service.WorkflowRecommend, "Hero's Journey")
	assert.Equal(t, entity.FrameworkMythTruthProof, NewGenerator(c, nil, cfg).RecommendFramework(context.Background(), "hook", "topic"))

	cfg.DefaultFramework = "Not A Framework"
	got := NewGenerator(c, nil, cfg).RecommendFramework(context.Background(), "hook", "topic")
	assert.Equal(t, entity.DefaultFramework, got)
}

func TestGenerateSections(t *testing.T) {
	c := newScriptedClient().on(service.WorkflowSections, "```json\n"+sectionsJSON+"\n```")
	fw := entity.FrameworkStoryLessonApplication
	gc := NewGenerationContext("remote work burnout", "Remote work isn't the problem.", &fw, nil)

	sections, idea, err := newTestGenerator(c).GenerateSections(context.Background(), gc)
	require.NoError(t, err)
	assert.Equal(t, sampleSections(), sections)
	assert.Equal(t, "A calendar screenshot with every meeting block shaded red.", idea)

	require.Len(t, c.reqs, 1)
	assert.Contains(t, c.reqs[0].SystemPrompt, fw.Instruction())
	assert.Contains(t, c.reqs[0].SystemPrompt, "1300")
}

func TestGenerateSections_Failures(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantErr error
	}{
		{name: "missing cta", reply: `{"intro":"a","main_insight":"b","supporting_detail":"c","shift_takeaway":"d","design_idea":"e"}`, wantErr: ErrIncompleteGeneration},
		{name: "blank design idea", reply: `{"intro":"a","main_insight":"b","supporting_detail":"c","shift_takeaway":"d","cta":"e","design_idea":" "}`, wantErr: ErrIncompleteGeneration},
		{name: "non string section", reply: `{"intro":1,"main_insight":"b","supporting_detail":"c","shift_takeaway":"d","cta":"e","design_idea":"f"}`, wantErr: ErrIncompleteGeneration},
		{name: "no json object", reply: "Intro: hello\nCTA: bye", wantErr: ErrMalformedGenerationOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newScriptedClient().on(service.WorkflowSections, tt.reply)
			gc := NewGenerationContext("topic", "hook", nil, nil)
			sections, idea, err := newTestGenerator(c).GenerateSections(context.Background(), gc)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, entity.PostSections{}, sections)
			assert.Empty(t, idea)
		})
	}
}

func TestGenerateSections_RejectsUnknownFramework(t *testing.T) {
	c := newScriptedClient()
	bad := entity.Framework("Listicle")
	_, _, err := newTestGenerator(c).GenerateSections(context.Background(), NewGenerationContext("topic", "hook", &bad, nil))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, c.callCount())
}

func TestRefine_AppliesResponse(t *testing.T) {
	c := newScriptedClient().
		on(service.WorkflowRefineVoice, refinedJSON).
		on(service.WorkflowRefineLogic, refinedJSON)
	g := newTestGenerator(c)
	in := sampleSections()

	voiced := g.RefineVoice(context.Background(), in, "hook", "topic")
	assert.Equal(t, "Remote work was not the problem. My calendar was.", voiced.MainInsight)

	logic := g.RefineLogic(context.Background(), in, "hook", "topic")
	assert.True(t, logic.IsComplete())
	assert.Equal(t, sampleSections(), in)
	assert.Equal(t, []string{service.WorkflowRefineVoice, service.WorkflowRefineLogic}, c.stages())
}

func TestRefine_DegradesToInput(t *testing.T) {
	failures := map[string]func(stage string) *scriptedClient{
		"provider error": func(stage string) *scriptedClient { return newScriptedClient().fail(stage, errBackendDown) },
		"empty response": func(stage string) *scriptedClient { return newScriptedClient().on(stage, "") },
		"not json":       func(stage string) *scriptedClient { return newScriptedClient().on(stage, "Sure! Here is a better version.") },
		"missing key":    func(stage string) *scriptedClient { return newScriptedClient().on(stage, `{"intro":"x"}`) },
	}

	for name, mk := range failures {
		t.Run(name, func(t *testing.T) {
			in := sampleSections()

			voice := newTestGenerator(mk(service.WorkflowRefineVoice)).RefineVoice(context.Background(), in, "hook", "topic")
			assert.Equal(t, in, voice)

			logic := newTestGenerator(mk(service.WorkflowRefineLogic)).RefineLogic(context.Background(), in, "hook", "topic")
			assert.Equal(t, in, logic)
		})
	}
}

func TestRefine_IncompleteInputIsReturnedWithoutCall(t *testing.T) {
	c := newScriptedClient().on(service.WorkflowRefineVoice, refinedJSON)
	in := sampleSections().With(entity.SectionCTA, "")

	out := newTestGenerator(c).RefineVoice(context.Background(), in, "hook", "topic")
	assert.Equal(t, in, out)
	assert.Zero(t, c.callCount())
}

func TestRegenerateSection(t *testing.T) {
	c := newScriptedClient().
		on(service.WorkflowRegenerateSection, "\"Tell me one meeting you would cancel tomorrow.\"").
		on(service.WorkflowPolishSection, "Which meeting would you cancel tomorrow?")
	current := sampleSections()

	got, err := newTestGenerator(c).RegenerateSection(context.Background(), "cta", "hook", "remote work burnout", current, nil)
	require.NoError(t, err)
	assert.Equal(t, "Which meeting would you cancel tomorrow?", got)
	assert.NotEqual(t, current.CTA, got)
	assert.Equal(t, []string{service.WorkflowRegenerateSection, service.WorkflowPolishSection}, c.stages())

	require.Len(t, c.reqs, 2)
	for _, k := range entity.SectionKeys() {
		assert.Contains(t, c.reqs[0].UserPrompt, current.Get(k))
	}
	assert.Contains(t, c.reqs[1].UserPrompt, "Tell me one meeting you would cancel tomorrow.")
}

func TestRegenerateSection_PolishFailureReturnsRawText(t *testing.T) {
	for name, c := range map[string]*scriptedClient{
		"provider error": newScriptedClient().fail(service.WorkflowPolishSection, ErrProviderUnavailable),
		"empty response": newScriptedClient().on(service.WorkflowPolishSection, "  "),
	} {
		t.Run(name, func(t *testing.T) {
			c.on(service.WorkflowRegenerateSection, "Tell me one meeting you would cancel tomorrow.")
			got, err := newTestGenerator(c).RegenerateSection(context.Background(), "cta", "hook", "topic", sampleSections(), nil)
			require.NoError(t, err)
			assert.Equal(t, "Tell me one meeting you would cancel tomorrow.", got)
			assert.Equal(t, 2, c.callCount())
		})
	}
}

func TestRegenerateSection_PolishRevertingToCurrentKeepsRawText(t *testing.T) {
	current := sampleSections()
	c := newScriptedClient().
		on(service.WorkflowRegenerateSection, "A brand new CTA?").
		on(service.WorkflowPolishSection, current.CTA)

	got, err := newTestGenerator(c).RegenerateSection(context.Background(), "cta", "hook", "topic", current, nil)
	require.NoError(t, err)
	assert.Equal(t, "A brand new CTA?", got)
	assert.NotEqual(t, current.CTA, got)
	assert.Equal(t, 2, c.callCount())
}

func TestRegenerateSection_InvalidKeyMakesNoCall(t *testing.T) {
	for _, key := range []string{"headline", "", "CTA", "design_idea"} {
		c := newScriptedClient()
		_, err := newTestGenerator(c).RegenerateSection(context.Background(), key, "hook", "topic", sampleSections(), nil)
		assert.ErrorIs(t, err, ErrInvalidSectionKey, key)
		assert.Zero(t, c.callCount(), key)
	}
}

func TestRegenerateSection_Failures(t *testing.T) {
	c := newScriptedClient()
	_, err := newTestGenerator(c).RegenerateSection(context.Background(), "cta", "hook", "topic", sampleSections().With(entity.SectionIntro, ""), nil)
	assert.ErrorIs(t, err, ErrIncompleteGeneration)
	assert.Zero(t, c.callCount())

	c = newScriptedClient().fail(service.WorkflowRegenerateSection, ErrProviderUnavailable)
	_, err = newTestGenerator(c).RegenerateSection(context.Background(), "intro", "hook", "topic", sampleSections(), nil)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, 1, c.callCount())

	c = newScriptedClient().on(service.WorkflowRegenerateSection, "```\n\n```")
	_, err = newTestGenerator(c).RegenerateSection(context.Background(), "intro", "hook", "topic", sampleSections(), nil)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestGenerator_NilClient(t *testing.T) {
	g := NewGenerator(nil, nil, DefaultGenerationConfig())
	_, err := g.GenerateHooks(context.Background(), "topic", nil)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}
