package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestGet_NopBeforeInit(t *testing.T) {
	Set(nil)
	assert.NotNil(t, Get())
	assert.NoError(t, Sync())
}

func TestInit_WithFile(t *testing.T) {
	defer Set(nil)
	path := filepath.Join(t.TempDir(), "scanner.log")
	require.NoError(t, Init("debug", "production", FileConfig{Path: path}))
	Info("hello", zap.String("k", "v"))
	assert.True(t, Get().Core().Enabled(zapcore.DebugLevel))
}

func TestHelpers_WriteToGlobal(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))
	defer Set(nil)

	Debug("d")
	Info("i")
	Warn("w", zap.Int("n", 1))
	Error("e")

	require.Equal(t, 4, logs.Len())
	assert.Equal(t, "w", logs.All()[2].Message)
	assert.Equal(t, int64(1), logs.All()[2].ContextMap()["n"])
}
