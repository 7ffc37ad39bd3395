package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodreel/internal/platform/config"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled records nothing", func(t *testing.T) {
		var out bytes.Buffer
		tp, shutdown, err := New(config.Tracing{}, &out)
		require.NoError(t, err)

		_, span := tp.Tracer("test").Start(ctx, "call")
		assert.False(t, span.IsRecording())
		span.End()

		require.NoError(t, shutdown(ctx))
		assert.Zero(t, out.Len())
	})

	t.Run("enabled exports spans on shutdown", func(t *testing.T) {
		var out bytes.Buffer
		tp, shutdown, err := New(config.Tracing{Enabled: true, ServiceName: "shell-test", SampleRatio: 1}, &out)
		require.NoError(t, err)

		_, span := tp.Tracer("test").Start(ctx, "gateway GET")
		assert.True(t, span.IsRecording())
		span.End()

		require.NoError(t, shutdown(ctx))
		assert.Contains(t, out.String(), `"Name":"gateway GET"`)
		assert.Contains(t, out.String(), "shell-test")
	})

	t.Run("zero ratio samples nothing", func(t *testing.T) {
		var out bytes.Buffer
		tp, shutdown, err := New(config.Tracing{Enabled: true, ServiceName: "shell-test"}, &out)
		require.NoError(t, err)

		_, span := tp.Tracer("test").Start(ctx, "call")
		assert.False(t, span.IsRecording())
		span.End()
		require.NoError(t, shutdown(ctx))
	})
}
