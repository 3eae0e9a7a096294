package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	log, err := New("warn")
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zap.InfoLevel))
	assert.True(t, log.Core().Enabled(zap.WarnLevel))
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New("loud")
	assert.ErrorContains(t, err, "loud")

	_, err = NewConsole("loud")
	assert.Error(t, err)
}

func TestNewConsole(t *testing.T) {
	log, err := NewConsole("debug")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))
}
