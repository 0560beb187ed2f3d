// Package logger builds the zap loggers used by the binaries and the helpers
// that make user supplied text safe to log.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewProductionLogger creates the JSON logger used by the server and worker.
// Every entry carries the service field; debug mode lowers the level to debug.
func NewProductionLogger(service string, debugMode bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = level(debugMode, zapcore.InfoLevel)
	config.Encoding = "json"
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeDuration = zapcore.SecondsDurationEncoder
	config.EncoderConfig.FunctionKey = zapcore.OmitKey
	if service != "" {
		config.InitialFields = map[string]any{"service": service}
	}
	return config.Build()
}

// NewDevelopmentLogger creates a console logger on stderr for moodctl, so that
// command output on stdout stays clean. Without debug only warnings and errors are shown.
func NewDevelopmentLogger(debugMode bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.Level = level(debugMode, zapcore.WarnLevel)
	config.OutputPaths = []string{"stderr"}
	config.DisableStacktrace = !debugMode
	return config.Build()
}

// Sync flushes buffered entries. A nil logger is a no-op.
func Sync(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}
	return logger.Sync()
}

func level(debugMode bool, normal zapcore.Level) zap.AtomicLevel {
	if debugMode {
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zap.NewAtomicLevelAt(normal)
}
