// Package logging builds the slog.Logger used across lineup. Text output is
// colored with tint; JSON output uses the standard handler. Either can be
// written to a size-rotated file instead of stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/papapumpkin/lineup/internal/config"
)

// New returns a logger configured by cfg and a close function for the sink.
// Output goes to stderr unless cfg.File is set.
func New(cfg config.LogConfig) (*slog.Logger, func() error, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		w       io.Writer = os.Stderr
		closeFn           = func() error { return nil }
		color             = true
	)
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		w, closeFn, color = lj, lj.Close, false
	}
	return slog.New(newHandler(w, cfg.Format, level, color)), closeFn, nil
}

// NewWriter returns a logger writing to w without color, for tests and
// embedding.
func NewWriter(w io.Writer, format string, level slog.Level) *slog.Logger {
	return slog.New(newHandler(w, format, level, false))
}

func newHandler(w io.Writer, format string, level slog.Level, color bool) slog.Handler {
	if format == "json" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !color,
	})
}

// ParseLevel maps debug, info, warn and error to slog levels. Empty means
// info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", s)
	}
}
