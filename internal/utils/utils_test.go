// internal/utils/utils_test.go
package utils

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestZapLogger_WritesFieldsAndRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newZapLogger(LogConfig{Level: "warn", Format: "json"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Info("hidden")
	logger.WithField("user", "21691A0501").Warnf("login took %ds", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"user":"21691A0501"`)
	assert.Contains(t, out, "login took 3s")
}

func TestZapLogger_WithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newZapLogger(LogConfig{Level: "debug", Format: "json"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	child := logger.WithFields(map[string]interface{}{"request_id": "abc"})
	logger.Info("parent")
	child.Info("child")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.NotContains(t, lines[0], "request_id")
	assert.Contains(t, lines[1], `"request_id":"abc"`)
}

func TestNewZapLogger_RejectsUnknownFormat(t *testing.T) {
	_, err := NewZapLogger(LogConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestRateLimiter_Burst(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, rl.Wait(ctx))
}

func TestKeyedRateLimiter_IsolatesKeysAndEvictsIdle(t *testing.T) {
	k := NewKeyedRateLimiter(0.001, 1, time.Minute)
	clock := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	k.now = func() time.Time { return clock }

	assert.True(t, k.Allow("10.0.0.1"))
	assert.False(t, k.Allow("10.0.0.1"))
	assert.True(t, k.Allow("10.0.0.2"))
	assert.Equal(t, 2, k.Len())

	clock = clock.Add(2 * time.Minute)
	assert.True(t, k.Allow("10.0.0.3"))
	assert.Equal(t, 1, k.Len())
}
