package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestCLILogger_DefaultIsNoop(t *testing.T) {
	// Must be usable before InitCLILogger is called.
	require.NotNil(t, CLILogger)
	CLILogger.Info("noop")
}

func TestInitCLILogger(t *testing.T) {
	prev := CLILogger
	defer func() { CLILogger = prev }()

	InitCLILogger("debug", false)
	require.NotNil(t, CLILogger)
	assert.True(t, CLILogger.Core().Enabled(zapcore.DebugLevel))

	InitCLILogger("error", true)
	assert.False(t, CLILogger.Core().Enabled(zapcore.DebugLevel))
}

func TestInitCLILogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	prev := CLILogger
	defer func() { CLILogger = prev }()

	InitCLILogger("nonsense", true)
	require.NotNil(t, CLILogger)
	assert.False(t, CLILogger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, CLILogger.Core().Enabled(zapcore.InfoLevel))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("info", "json")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	logger, err = NewLogger("warn", "console")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger("info", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log format")
}
