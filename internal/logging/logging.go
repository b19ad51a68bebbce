// Package logging builds the slog loggers shared by the mlfq binaries.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Handler formats accepted by NewLogger. Anything else renders as text.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// NewLogger returns a logger on stderr; stdout carries the Gantt chart and
// reports.
func NewLogger(level slog.Level, format string) *slog.Logger {
	return NewLoggerWithWriter(level, format, os.Stderr)
}

// NewLoggerWithWriter returns a logger writing records at or above level to w.
func NewLoggerWithWriter(level slog.Level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, FormatJSON) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops every record. Components fall back to
// it when constructed with a nil logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// ErrAttr is the attribute failed runs and requests are logged with.
func ErrAttr(err error) slog.Attr {
	return slog.Any("error", err)
}

// ParseLevel maps a --log-level value to a slog level. Unknown names are info.
func ParseLevel(s string) slog.Level {
	if level, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return level
	}
	return slog.LevelInfo
}
