package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_BuildsALogger(t *testing.T) {
	logger, err := New(false, false)
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Infow("should be suppressed at warn level")
}

func TestNew_DebugAndTraceRaiseLevel(t *testing.T) {
	logger, err := New(true, true)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.True(t, logger.Desugar().Core().Enabled(zapcore.DebugLevel))

	quiet, err := New(false, false)
	require.NoError(t, err)
	assert.False(t, quiet.Desugar().Core().Enabled(zapcore.InfoLevel))
}

func TestWithRunID_TagsDistinctIDsPerCall(t *testing.T) {
	_, err := New(false, false)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core).Sugar()

	a := WithRunID(logger)
	b := WithRunID(logger)
	require.NotNil(t, a)
	require.NotNil(t, b)
	a.Infow("tagged")
	b.Infow("tagged")

	entries := logs.All()
	require.Len(t, entries, 2)
	idA := entries[0].ContextMap()["run_id"]
	idB := entries[1].ContextMap()["run_id"]
	assert.NotEmpty(t, idA)
	assert.NotEqual(t, idA, idB)
}

func TestNoop_NeverPanics(t *testing.T) {
	logger := Noop()
	assert.NotNil(t, logger)
	logger.Debugf("discarded: %d", 1)
}
