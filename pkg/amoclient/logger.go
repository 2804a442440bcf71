package amoclient

import (
	"fmt"

	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
	"go.uber.org/zap"
)

// ZapLogger adapts a zap logger to amocrm.Logger.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger wraps logger. A nil logger discards everything.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ZapLogger{logger: logger}
}

// NewConsoleLogger builds a console zap logger writing to stderr. Debug
// lowers the level so that request traces are shown.
func NewConsoleLogger(debug bool) (*zap.Logger, error) {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	config := zap.Config{
		Encoding:         "console",
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	return logger, nil
}

// Zap returns the underlying logger.
func (l *ZapLogger) Zap() *zap.Logger {
	return l.logger
}

// Debug implements amocrm.Logger.
func (l *ZapLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, zapFields(fields)...)
}

// Info implements amocrm.Logger.
func (l *ZapLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, zapFields(fields)...)
}

// Warn implements amocrm.Logger.
func (l *ZapLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, zapFields(fields)...)
}

// Error implements amocrm.Logger.
func (l *ZapLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, zapFields(fields)...)
}

func zapFields(fields map[string]interface{}) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for key, value := range fields {
		out = append(out, zap.Any(key, value))
	}

	return out
}

var _ amocrm.Logger = (*ZapLogger)(nil)
