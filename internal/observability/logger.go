// Package observability provides structured logging for the CLI and
// server.
package observability

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the process-wide logger for CLI commands. It defaults
// to a no-op logger until InitCLILogger is called, so code paths
// exercised in tests never hit a nil logger.
var CLILogger = zap.NewNop()

// InitCLILogger initializes the CLI logger at the given level.
// With jsonFormat false, output is human-readable console encoding on
// stderr, keeping stdout clean for command output.
func InitCLILogger(level string, jsonFormat bool) {
	CLILogger = newLogger(level, jsonFormat)
}

// SyncCLILogger flushes buffered log entries. Safe to call on the
// no-op logger.
func SyncCLILogger() {
	_ = CLILogger.Sync()
}

// NewLogger builds a structured logger for long-running components
// like the HTTP server. Format is "json" or "console".
func NewLogger(level, format string) (*zap.Logger, error) {
	if format != "json" && format != "console" {
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return newLogger(level, format == "json"), nil
}

func newLogger(level string, jsonFormat bool) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if jsonFormat {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), lvl)
	return zap.New(core)
}
