package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	t.Cleanup(func() { sugar = nil })

	require.NoError(t, Init(true))
	assert.True(t, GetSugaredLogger().Desugar().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, Init(false))
	assert.False(t, GetSugaredLogger().Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, GetSugaredLogger().Desugar().Core().Enabled(zapcore.InfoLevel))

	Debugf("dropped at info level: %d", 1)
	Errorf("logged: %d", 2)
	Sync()
}

func TestGetSugaredLoggerWithoutInit(t *testing.T) {
	sugar = nil
	t.Cleanup(func() { sugar = nil })

	require.NotNil(t, GetSugaredLogger())
	assert.NotPanics(t, func() { Errorf("fallback logger") })
}
