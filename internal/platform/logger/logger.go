// Package logger builds the service's structured logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"

	"biogate/internal/platform/config"
)

// New returns a structured JSON logger using slog.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// FromConfig returns a JSON logger writing to stdout and, outside containers
// when a log file is configured, to a daily-rotated file as well. The
// returned closer releases the file.
func FromConfig(cfg config.Log) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	if cfg.File == "" || cfg.ContainerEnv {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts)), nopCloser{}, nil
	}

	rotator, err := rotatelogs.New(
		cfg.File+".%Y%m%d",
		rotatelogs.WithLinkName(cfg.File),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(cfg.MaxAge),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open rotating log file: %w", err)
	}
	handler := slog.NewJSONHandler(io.MultiWriter(os.Stdout, rotator), opts)
	return slog.New(handler), rotator, nil
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
