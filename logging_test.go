package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetupLogging_Rotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	if err := os.WriteFile(path, []byte("previous run\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	logger, f, err := setupLogging(path, "debug")
	if err != nil {
		t.Fatalf("setupLogging: %v", err)
	}
	logger.Info().Msg("started")
	_ = f.Close()

	old, err := os.ReadFile(path + ".1")
	if err != nil || string(old) != "previous run\n" {
		t.Fatalf("rotated log = %q, %v", old, err)
	}
	cur, err := os.ReadFile(path)
	if err != nil || len(cur) == 0 {
		t.Fatalf("current log = %q, %v", cur, err)
	}
	if logger.GetLevel() != zerolog.DebugLevel {
		t.Fatalf("level = %v", logger.GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"DEBUG":   zerolog.DebugLevel,
		"warn":    zerolog.WarnLevel,
		"ERROR":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
