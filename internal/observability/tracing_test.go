package observability

import (
	"context"
	"testing"

	"github.com/bizlab-kr/leadbot/internal/config"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
)

func withTracingConfig(t *testing.T, enabled bool, endpoint string) {
	t.Helper()
	previous := config.AppConfig
	config.AppConfig = &config.Config{TracingEnabled: enabled, TracingEndpoint: endpoint, Environment: "test"}
	t.Cleanup(func() {
		ShutdownTracer()
		config.AppConfig = previous
	})
}

func TestInitTracer_Disabled(t *testing.T) {
	withTracingConfig(t, false, "")

	InitTracer()

	assert.Nil(t, tracerProvider)
}

func TestInitTracer_NilConfig(t *testing.T) {
	previous := config.AppConfig
	config.AppConfig = nil
	defer func() { config.AppConfig = previous }()

	InitTracer()
	assert.Nil(t, tracerProvider)
}

func TestInitTracer_Enabled(t *testing.T) {
	// The exporter connects lazily so an unreachable endpoint still initializes.
	withTracingConfig(t, true, "invalid-endpoint:4317")

	InitTracer()

	assert.NotNil(t, tracerProvider)
	assert.NotNil(t, otel.GetTracerProvider())
}

func TestShutdownTracer_NilProvider(t *testing.T) {
	tracerProvider = nil
	ShutdownTracer()
	assert.Nil(t, tracerProvider)
}

func TestTracer(t *testing.T) {
	_, span := Tracer().Start(context.Background(), "test")
	defer span.End()
	assert.NotNil(t, span)
}
