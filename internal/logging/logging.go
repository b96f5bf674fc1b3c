// Package logging sets up the structured logger. The TUI owns the terminal,
// so logs go to a file that can be inspected after the session.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	logFileEnvVar = "MOONLIGHT_LOG_FILE"
	logFileName   = "moonlight.log"
)

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OrDiscard returns l, or a discard logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// DefaultPath resolves the log file location: $MOONLIGHT_LOG_FILE, then
// $XDG_STATE_HOME/moonlight/moonlight.log, then ~/.local/state/moonlight/moonlight.log.
func DefaultPath() (string, error) {
	if p := os.Getenv(logFileEnvVar); p != "" {
		return p, nil
	}
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "moonlight", logFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("logging: locate home dir: %w", err)
	}
	return filepath.Join(home, ".local", "state", "moonlight", logFileName), nil
}

// Setup opens path for appending and returns a text logger writing to it.
// The returned close function must be called on exit.
func Setup(path string, verbose bool) (*slog.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("logging: create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: open %s: %w", path, err)
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	closeFn := func() error {
		if err := f.Close(); err != nil {
			return fmt.Errorf("logging: close %s: %w", path, err)
		}
		return nil
	}
	return logger, closeFn, nil
}
