package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/platinummonkey/signup/pkg/contextkeys"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel logrus.Level
		wantErr   bool
	}{
		{name: "json info", level: "info", format: "json", wantLevel: logrus.InfoLevel},
		{name: "default format", level: "debug", format: "", wantLevel: logrus.DebugLevel},
		{name: "text warn", level: "warn", format: "text", wantLevel: logrus.WarnLevel},
		{name: "bad level", level: "loud", format: "json", wantErr: true},
		{name: "bad format", level: "info", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.level, tt.format, &bytes.Buffer{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, logger.GetLevel())
		})
	}
}

func TestNewLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("info", FormatJSON, &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.WithField("plan", "arcade").Info("Plan selected")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Plan selected", entry["msg"])
	assert.Equal(t, "arcade", entry["plan"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestFromContext(t *testing.T) {
	logger, err := NewLogger("info", FormatJSON, &bytes.Buffer{})
	require.NoError(t, err)

	t.Run("empty context", func(t *testing.T) {
		entry := FromContext(context.Background(), logger)
		assert.Empty(t, entry.Data)
	})

	t.Run("request id and span", func(t *testing.T) {
		tp := sdktrace.NewTracerProvider()
		defer tp.Shutdown(context.Background())

		ctx := contextkeys.WithRequestID(context.Background(), "req-1")
		ctx, span := tp.Tracer("test").Start(ctx, "op")
		defer span.End()

		entry := FromContext(ctx, logger)
		assert.Equal(t, "req-1", entry.Data["request_id"])
		assert.Equal(t, span.SpanContext().TraceID().String(), entry.Data["trace_id"])
		assert.Equal(t, span.SpanContext().SpanID().String(), entry.Data["span_id"])
	})
}

func TestRecoverPanic(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("info", FormatJSON, &buf)
	require.NoError(t, err)

	func() {
		defer RecoverPanic(logger, "catalog refresh")
		panic("boom")
	}()

	assert.Contains(t, buf.String(), "PANIC recovered")
	assert.Contains(t, buf.String(), "catalog refresh")
	assert.Contains(t, buf.String(), "boom")
}
