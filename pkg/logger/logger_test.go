package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { _ = SetLevel("info") })

	require.NoError(t, SetLevel("debug"))
	assert.True(t, L.Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, SetLevel("warn"))
	assert.False(t, L.Core().Enabled(zapcore.InfoLevel))

	assert.Error(t, SetLevel("loud"))
	assert.False(t, L.Core().Enabled(zapcore.InfoLevel))
}

func TestWithComponent(t *testing.T) {
	assert.NotNil(t, WithComponent("handler"))
}
