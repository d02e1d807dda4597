// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel converts a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// New builds a text logger writing to w at the named level.
func New(w io.Writer, levelName string) (*slog.Logger, error) {
	level, err := ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), nil
}

// Setup builds a logger and installs it as the slog default.
func Setup(w io.Writer, levelName string) (*slog.Logger, error) {
	logger, err := New(w, levelName)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}
