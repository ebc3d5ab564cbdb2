package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_AddsRequestAndUserID(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)
	t.Cleanup(func() { Init("test") })

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "user-1")
	CtxInfo(ctx, "hello", "k", "v")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "user-1", entry["user_id"])
	assert.Equal(t, "v", entry["k"])
}

func TestCtxWithError(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)
	t.Cleanup(func() { Init("test") })

	CtxWithError(context.Background(), "failed", errors.New("boom"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "boom", entry["error"])
}

func TestTestEnv_SuppressesInfo(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("test", &buf)
	t.Cleanup(func() { Init("test") })

	Info("noise")
	assert.Empty(t, buf.String())

	Error("signal")
	assert.Contains(t, buf.String(), "signal")
}
