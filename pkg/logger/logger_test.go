package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_InjectsKnownKeys(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "debug", "json")
	t.Cleanup(func() { Init("info", "json") })

	ctx := WithContext(context.Background(), RequestIDKey, "req-1")
	ctx = WithContext(ctx, UserIDKey, "user-1")
	ctx = WithStage(ctx, "refine_voice")

	Warn(ctx, "refinement degraded", "reason", "timeout")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "refinement degraded", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "user-1", line["user_id"])
	assert.Equal(t, "refine_voice", line["stage"])
	assert.Equal(t, "timeout", line["reason"])
	assert.NotContains(t, line, "post_id")
}

func TestError_AppendsErrorString(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "info", "json")
	t.Cleanup(func() { Init("info", "json") })

	Error(context.Background(), "publish failed", assert.AnError)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, assert.AnError.Error(), line["error"])
	assert.Equal(t, "ERROR", line["level"])
}

func TestRedactsSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "info", "json")
	t.Cleanup(func() { Init("info", "json") })

	Info(context.Background(), "linkedin connected", "access_token", "AQX-secret", "Authorization", "Bearer x", "member_urn", "urn:li:person:1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, redacted, line["access_token"])
	assert.Equal(t, redacted, line["Authorization"])
	assert.Equal(t, "urn:li:person:1", line["member_urn"])
	assert.NotContains(t, buf.String(), "AQX-secret")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "WARN", parseLevel("warning").String())
	assert.Equal(t, "INFO", parseLevel("bogus").String())
}
