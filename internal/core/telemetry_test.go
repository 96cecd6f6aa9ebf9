// AngelaMos | 2026
// telemetry_test.go

package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qhub-dev/qhub/internal/config"
)

func TestTelemetryDisabledStillTraces(t *testing.T) {
	ctx := context.Background()

	tel, err := NewTelemetry(ctx, config.OtelConfig{ServiceName: "qhub"}, config.AppConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(ctx) })

	spanCtx, span := StartSpan(ctx, "test.op")
	assert.NotEmpty(t, TraceIDFromContext(spanCtx))
	EndSpan(span, errors.New("boom"))

	assert.Empty(t, TraceIDFromContext(ctx))
}

func TestTelemetryNilShutdown(t *testing.T) {
	var tel *Telemetry
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestSampleRate(t *testing.T) {
	assert.InDelta(t, 0.1, sampleRate(0), 1e-9)
	assert.InDelta(t, 0.1, sampleRate(1.5), 1e-9)
	assert.InDelta(t, 0.5, sampleRate(0.5), 1e-9)
}
