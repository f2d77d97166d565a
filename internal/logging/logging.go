// Package logging builds the application's slog loggers.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Output formats.
const (
	FormatPretty = "pretty"
	FormatText   = "text"
	FormatJSON   = "json"
)

// Config selects level and format.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // pretty, text, json
}

// DefaultConfig logs warnings and above in the pretty format.
func DefaultConfig() Config {
	return Config{Level: "warn", Format: FormatPretty}
}

// ConfigFromEnv reads LINGUAKU_LOG_LEVEL and LINGUAKU_LOG_FORMAT.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if l := os.Getenv("LINGUAKU_LOG_LEVEL"); l != "" {
		cfg.Level = l
	}
	if f := os.Getenv("LINGUAKU_LOG_FORMAT"); f != "" {
		cfg.Format = f
	}
	return cfg
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// New returns a logger writing to w and the LevelVar controlling it.
// An unknown level falls back to info.
func New(w io.Writer, cfg Config) (*slog.Logger, *slog.LevelVar) {
	level := new(slog.LevelVar)
	lvl, err := ParseLevel(cfg.Level)
	level.Set(lvl)

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case FormatText:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	default:
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			NoColor:    !isTerminal(w),
		})
	}

	logger := slog.New(handler)
	if err != nil {
		logger.Warn("unknown log level, defaulting to info", "level", cfg.Level)
	}
	return logger, level
}

// OpenFile returns a text logger appending to path. The TUI owns the
// terminal, so it logs here instead of stderr.
func OpenFile(path string, cfg Config) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	if cfg.Format == FormatPretty || cfg.Format == "" {
		cfg.Format = FormatText
	}
	logger, _ := New(f, cfg)
	return logger, f, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
