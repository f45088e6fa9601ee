package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/masq"
)

// Options configure NewLogger.
type Options struct {
	Level  string
	Format string
	Writer io.Writer
	Color  bool
}

// ParseLevel maps debug/info/warn/error to a slog level.
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
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Redactor removes secrets from structured log attributes.
func Redactor() func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(
		masq.WithFieldName("password"),
		masq.WithFieldName("Password"),
		masq.WithFieldName("postgres_dsn"),
		masq.WithTag("secret"),
		masq.WithContain("zentaosid="),
	)
}

// NewLogger builds the CLI logger: a console handler by default, JSON lines
// with Format "json". Secrets are redacted in both.
func NewLogger(opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	redact := Redactor()

	var h slog.Handler
	switch strings.ToLower(opts.Format) {
	case "json":
		h = slog.NewJSONHandler(opts.Writer, &slog.HandlerOptions{Level: level, ReplaceAttr: redact})
	case "", "console":
		h = clog.New(
			clog.WithWriter(opts.Writer),
			clog.WithLevel(level),
			clog.WithColor(opts.Color),
			clog.WithReplaceAttr(redact),
		)
	default:
		return nil, fmt.Errorf("unknown log format %q (use console or json)", opts.Format)
	}
	return slog.New(h), nil
}
