package logging

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Options controls logger construction. Empty fields fall back to
// LOG_LEVEL and LOG_FORMAT from the environment.
type Options struct {
	Level         string
	Format        string
	RetentionDays int
	Stdout        io.Writer
}

// NewLogger creates a slog.Logger writing to stdout and a daily file.
// Records logged with a span-carrying context get trace_id and span_id.
func NewLogger(logDir string, opts Options) (*slog.Logger, *DailyWriter, error) {
	writer, err := NewDailyWriter(logDir, WriterOptions{RetentionDays: opts.RetentionDays})
	if err != nil {
		return nil, nil, err
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	multi := io.MultiWriter(stdout, writer)
	level := ParseLevel(firstNonEmpty(opts.Level, os.Getenv("LOG_LEVEL")), slog.LevelInfo)
	handler := NewHandler(multi, level, firstNonEmpty(opts.Format, os.Getenv("LOG_FORMAT")))
	logger := slog.New(handler).With("service", defaultPrefix)
	slog.SetDefault(logger)
	return logger, writer, nil
}

// NewHandler returns a text or JSON handler wrapped with trace correlation.
func NewHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	options := &slog.HandlerOptions{Level: level}
	var base slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		base = slog.NewJSONHandler(w, options)
	} else {
		base = slog.NewTextHandler(w, options)
	}
	return &traceHandler{Handler: base}
}

// ParseLevel maps a level name or number to a slog.Level.
func ParseLevel(value string, fallback slog.Level) slog.Level {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}

	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		if i, err := strconv.Atoi(value); err == nil {
			return slog.Level(i)
		}
		return fallback
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
