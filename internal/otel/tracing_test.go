package otel

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/logging"
)

func TestInit_Disabled(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "true")
	var buf bytes.Buffer

	shutdown, err := Init(context.Background(), logging.New(&buf, "info", nil))
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"tracing_enabled":false`)
}

func TestInit_UnsupportedProtocolDegrades(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "false")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "carrier-pigeon")
	var buf bytes.Buffer

	shutdown, err := Init(context.Background(), logging.New(&buf, "info", nil))
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "tracing_init_failed")
}

func TestSampler(t *testing.T) {
	tests := []struct {
		name, arg, want string
	}{
		{"always_on", "", "AlwaysOnSampler"},
		{"always_off", "", "AlwaysOffSampler"},
		{"traceidratio", "0.5", "TraceIDRatioBased{0.5}"},
		{"traceidratio", "garbage", "AlwaysOnSampler"},
		{"parentbased_always_off", "", "ParentBased{root:AlwaysOffSampler"},
		{"unknown", "", "ParentBased{root:AlwaysOnSampler"},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.arg, func(t *testing.T) {
			assert.Contains(t, sampler(tt.name, tt.arg).Description(), tt.want)
		})
	}
}
