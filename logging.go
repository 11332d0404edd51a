package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// setupLogging builds the process logger. With a path it logs to that file
// and keeps a single rotated history file; otherwise it logs to stderr.
// It returns the opened log file so callers can close it on shutdown.
func setupLogging(path, level string) (zerolog.Logger, *os.File, error) {
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	var f *os.File

	if path != "" {
		// Remove existing history to keep only one backup
		_ = os.Remove(path + ".1")

		// Rotate current log to .1 if present
		if _, err := os.Stat(path); err == nil {
			if err := os.Rename(path, path+".1"); err != nil {
				return zerolog.Nop(), nil, fmt.Errorf("failed to rotate existing log: %w", err)
			}
		}

		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		out = f
	}

	logger := zerolog.New(out).With().Timestamp().Logger().Level(parseLevel(level))
	return logger, f, nil
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
