// Package logging builds the process-wide structured logger used for
// internal diagnostics, distinct from the reporter's human-facing output.
package logging

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a SugaredLogger whose level follows the --debug/--trace flags:
// trace enables debug-level logging, debug enables info-level logging, and
// neither leaves only warnings and above.
func New(debug, trace bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	switch {
	case trace:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case debug:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// WithRunID tags every subsequent log line with a fresh correlation ID,
// letting a user grep a single invocation's diagnostics out of a shared
// log stream when several peter-hook runs interleave (e.g. concurrent
// CI jobs writing to the same file).
func WithRunID(logger *zap.SugaredLogger) *zap.SugaredLogger {
	return logger.With("run_id", uuid.NewString())
}

// Noop returns a logger that discards everything, for callers (tests,
// one-shot completion printers) that don't want diagnostic output.
func Noop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
