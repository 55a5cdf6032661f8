package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSampler(t *testing.T) {
	assert.Contains(t, newSampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, newSampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, newSampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{ServiceName: "test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_UnknownExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), TracingConfig{
		ServiceName: "test",
		Enabled:     true,
		Exporter:    "zipkin",
	})
	assert.ErrorContains(t, err, "zipkin")
}

func TestNewSpan_SetErrorNil(t *testing.T) {
	span, ctx := NewSpan(context.Background(), "test.op", IDAttr("user.id", 7))
	require.NotNil(t, ctx)
	span.SetError(nil)
	span.End()
}
