package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(Options{Level: "verbose"})
	assert.Error(t, err)

	_, err = New(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestNew_ReplacesGlobal(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	l, err := New(Options{Level: "debug", Format: "console", Output: "stderr"})
	require.NoError(t, err)

	assert.Same(t, l, zap.L())
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	reqLogger := zap.New(core).With(zap.String("request_id", "req-1"))

	ctx := WithContext(context.Background(), reqLogger)
	FromContext(ctx).Info("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-1", logs.All()[0].ContextMap()["request_id"])

	assert.Same(t, zap.L(), FromContext(context.Background()), "没有请求级Logger时使用全局Logger")
}
