// Package log wraps a process-wide zap logger for the dtseries-mask tools.
package log

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar *zap.SugaredLogger

// Init builds the package logger. Debug mode uses zap's development encoder,
// otherwise JSON lines at info level. Both write to stderr so that nothing
// but the mask ever lands on stdout.
func Init(debug bool) error {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	zapLogger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %w", err)
	}

	sugar = zapLogger.Sugar()
	return nil
}

// GetSugaredLogger returns the sugared logger handed to the pipeline. Its
// callers log directly, so the wrapper caller skip is undone.
func GetSugaredLogger() *zap.SugaredLogger {
	ensure()
	return sugar.WithOptions(zap.AddCallerSkip(-1))
}

func ensure() {
	if sugar == nil {
		zapLogger, _ := zap.NewProduction(zap.AddCallerSkip(1))
		sugar = zapLogger.Sugar()
	}
}

// Sync flushes any buffered log entries
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}

func Debugf(template string, args ...interface{}) {
	ensure()
	sugar.Debugf(template, args...)
}

func Errorf(template string, args ...interface{}) {
	ensure()
	sugar.Errorf(template, args...)
}
