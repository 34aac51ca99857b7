package xlog

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("default level is info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(WithWriter(&buf))

		logger.Debug(context.Background(), "should be dropped")
		logger.Info(context.Background(), "should be kept")

		out := buf.String()
		assert.NotContains(t, out, "should be dropped")
		assert.Contains(t, out, "should be kept")
	})

	t.Run("with level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(WithWriter(&buf), WithLevel(slog.LevelDebug))

		logger.Debug(context.Background(), "debug message")
		assert.Contains(t, buf.String(), "debug message")
	})

	t.Run("attrs rendered", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(WithWriter(&buf))

		logger.Info(context.Background(), "rejected",
			AttrTarget("weather-server"),
			AttrReason("rate_limited"),
		)

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "weather-server", record[KeyTarget])
		assert.Equal(t, "rate_limited", record[KeyReason])
	})
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf))

	derived := logger.With(slog.String("component", "xexport"))
	derived.Info(context.Background(), "first")
	derived.Info(context.Background(), "second")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Contains(t, line, `"component":"xexport"`)
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf))

	lv, ok := logger.(Leveler)
	require.True(t, ok)
	assert.Equal(t, slog.LevelInfo, lv.GetLevel())

	lv.SetLevel(slog.LevelError)
	logger.Warn(context.Background(), "warn after raise")
	logger.Error(context.Background(), "error after raise")

	out := buf.String()
	assert.NotContains(t, out, "warn after raise")
	assert.Contains(t, out, "error after raise")
}

func TestSetLevelAffectsDerived(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf))
	derived := logger.With(slog.String("k", "v"))

	logger.(Leveler).SetLevel(slog.LevelDebug)
	derived.Debug(context.Background(), "derived debug")

	assert.Contains(t, buf.String(), "derived debug")
}

func TestNop(t *testing.T) {
	// 只验证不 panic 且 With 仍返回可用实例
	logger := Nop()
	logger.Info(context.Background(), "ignored")
	logger.With(slog.String("k", "v")).Error(context.Background(), "ignored", AttrError(nil))
}

func TestAttrError(t *testing.T) {
	attr := AttrError(assert.AnError)
	assert.Equal(t, KeyError, attr.Key)
	assert.Equal(t, assert.AnError.Error(), attr.Value.String())

	empty := AttrError(nil)
	assert.Equal(t, "", empty.Value.String())
}
