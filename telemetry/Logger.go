// Package telemetry provides the logging and metrics used while running
// experiments
package telemetry

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// LogConfig configures a logger
type LogConfig struct {
	Level      string
	JSON       bool
	Output     io.Writer
	TimeFormat string
}

// DefaultLogConfig returns the default logger configuration, logging
// text at the info level to standard error
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Output:     os.Stderr,
		TimeFormat: "15:04:05",
	}
}

// ParseLevel converts the name of a level to a log.Level
func ParseLevel(level string) (log.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	}
	return log.InfoLevel, fmt.Errorf("parseLevel: unknown log level %q", level)
}

// NewLogger returns a new logger configured by cfg
func NewLogger(cfg LogConfig) (*log.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("newLogger: %w", err)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = "15:04:05"
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		Level:           level,
	})
	if cfg.JSON {
		logger.SetFormatter(log.JSONFormatter)
	} else {
		logger.SetFormatter(log.TextFormatter)
	}
	return logger, nil
}

// Discard returns a logger that writes nothing
func Discard() *log.Logger {
	return log.New(io.Discard)
}
