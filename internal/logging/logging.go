// Package logging builds the process zap logger.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configures the logger.
type Config struct {
	Service string
	Level   string // debug, info, warn, error; default info
	Format  string // json or console; default json
	// Outputs are zap sink URLs or paths; default stderr.
	Outputs []string
}

// New builds a production zap logger tagged with the service name.
func New(cfg Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = normalizeFormat(cfg.Format)
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Sampling = nil
	zc.OutputPaths = []string{"stderr"}
	if len(cfg.Outputs) > 0 {
		zc.OutputPaths = cfg.Outputs
	}
	zc.ErrorOutputPaths = []string{"stderr"}

	level := strings.TrimSpace(cfg.Level)
	if level == "" {
		level = "info"
	}
	if err := zc.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("logging: invalid level %q: %w", level, err)
	}

	log, err := zc.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("logging: build: %w", err)
	}

	service := strings.TrimSpace(cfg.Service)
	if service == "" {
		service = "recon"
	}
	return log.With(zap.String("service", service)), nil
}

func normalizeFormat(format string) string {
	if strings.EqualFold(strings.TrimSpace(format), "console") {
		return "console"
	}
	return "json"
}
