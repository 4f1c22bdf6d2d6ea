package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/example/goshop/internal/config"
)

func TestInit_ReplacesGlobal(t *testing.T) {
	l, err := Init(&config.LogConfig{Level: "warn", Mode: "production"})
	require.NoError(t, err)
	defer zap.ReplaceGlobals(zap.NewNop())

	assert.Same(t, l, zap.L())
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestInit_BadLevel(t *testing.T) {
	_, err := Init(&config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
