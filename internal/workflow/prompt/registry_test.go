package prompt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AllPromptsLoad(t *testing.T) {
	r := NewRegistry()
	for id := range knownPrompts {
		tpl, err := r.ChatTemplate(id)
		require.NoError(t, err, id)
		require.NotNil(t, tpl, id)
	}
}

func TestRegistry_ChatTemplateIsCached(t *testing.T) {
	r := NewRegistry()
	a, err := r.ChatTemplate(PromptHooksV1)
	require.NoError(t, err)
	b, err := r.ChatTemplate(PromptHooksV1)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestRegistry_UnknownPrompt(t *testing.T) {
	_, err := NewRegistry().ChatTemplate("nope_v9")
	assert.ErrorContains(t, err, "unknown prompt id")

	var nilRegistry *Registry
	_, err = nilRegistry.ChatTemplate(PromptHooksV1)
	assert.Error(t, err)
}

func TestRegistry_RenderHooks(t *testing.T) {
	out, err := NewRegistry().Render(context.Background(), PromptHooksV1, map[string]any{
		"min_hooks":     3,
		"max_hooks":     5,
		"topic":         "remote work burnout",
		"profile_block": "Author profile:\n- role: engineering manager\n",
	})
	require.NoError(t, err)

	assert.Contains(t, out.System, "between 3 and 5")
	assert.Contains(t, out.System, "JSON array of strings")
	assert.Contains(t, out.User, "Topic: remote work burnout")
	assert.Contains(t, out.User, "role: engineering manager")
}

func TestRegistry_RenderKeepsBracesInValues(t *testing.T) {
	out, err := NewRegistry().Render(context.Background(), PromptRefineVoiceV1, map[string]any{
		"hook":          "h",
		"topic":         "t",
		"sections_json": `{"intro":"a"}`,
	})
	require.NoError(t, err)
	assert.Contains(t, out.User, `{"intro":"a"}`)
}

func TestRegistry_RenderMissingVariable(t *testing.T) {
	_, err := NewRegistry().Render(context.Background(), PromptFrameworkRecommendV1, map[string]any{
		"hook": "h",
	})
	assert.Error(t, err)
}
