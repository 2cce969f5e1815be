// Package logging builds the zap logger used across the bridge. Output goes
// to stderr: stdout belongs to the stdio MCP transport and must stay clean.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a SugaredLogger writing JSON to stderr at the given level.
// Unknown level strings fall back to info.
func New(level string) *zap.SugaredLogger {
	var lvl zapcore.Level
	switch level {
	case "debug":
		lvl = zapcore.DebugLevel
	case "info":
		lvl = zapcore.InfoLevel
	case "warn", "warning":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	default:
		lvl = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(zapcore.Lock(os.Stderr)),
		lvl,
	)

	return zap.New(core).Sugar()
}

// Nop returns a logger that discards everything. Used in tests and by the
// diagnostic CLI.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
