package tracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTracerDisabled(t *testing.T) {
	shutdown := InitTracer(Config{ServiceName: "jotha-backend"})
	assert.NoError(t, shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	always := sdktrace.AlwaysSample().Description()

	assert.Equal(t, always, sampler(0).Description())
	assert.Equal(t, always, sampler(1).Description())
	assert.Equal(t, always, sampler(2.5).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}
