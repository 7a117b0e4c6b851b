package tracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

func TestInit_DisabledStillInstallsPropagator(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "baggage")
}

func TestNewResource(t *testing.T) {
	res, err := newResource(Config{Version: "1.2.3", Environment: "staging"})
	require.NoError(t, err)

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, defaultServiceName, attrs[string(semconv.ServiceNameKey)])
	assert.Equal(t, "1.2.3", attrs[string(semconv.ServiceVersionKey)])
	assert.Equal(t, "staging", attrs[string(semconv.DeploymentEnvironmentKey)])
}

func TestNewSampler(t *testing.T) {
	assert.Contains(t, newSampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, newSampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, newSampler(0.25).Description(), "TraceIDRatioBased")
}
