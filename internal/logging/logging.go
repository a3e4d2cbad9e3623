// Package logging builds the operational zap logger shared by the engine
// components. The audit trail is separate, see package audit.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options describes the desired logger.
type Options struct {
	Verbose bool
	Format  string // console or json
	// OutputPaths defaults to stderr so stdout stays free for reports.
	OutputPaths []string
}

// New builds a zap logger from opts.
func New(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()

	config.Encoding = "console"
	if opts.Format == "json" {
		config.Encoding = "json"
	}

	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if opts.Verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	config.OutputPaths = []string{"stderr"}
	if len(opts.OutputPaths) > 0 {
		config.OutputPaths = opts.OutputPaths
	}
	config.ErrorOutputPaths = []string{"stderr"}
	config.Sampling = nil
	config.DisableStacktrace = true
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
