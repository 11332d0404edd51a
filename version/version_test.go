package version

import (
	"strings"
	"testing"
)

func TestGetFullVersion(t *testing.T) {
	oldVersion, oldCommit := Version, CommitHash
	t.Cleanup(func() {
		Version, CommitHash = oldVersion, oldCommit
	})

	Version = "2.0.0"
	CommitHash = "unknown"
	if got := GetFullVersion(); got != "2.0.0" {
		t.Fatalf("GetFullVersion() = %q, want %q", got, "2.0.0")
	}

	CommitHash = "0123456789abcdef"
	if got := GetFullVersion(); got != "2.0.0 (0123456)" {
		t.Fatalf("GetFullVersion() = %q, want %q", got, "2.0.0 (0123456)")
	}

	CommitHash = "abc"
	if got := GetFullVersion(); got != "2.0.0" {
		t.Fatalf("short commit hash should be ignored, got %q", got)
	}
}

func TestGetVersionStripsPrefix(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = " v6.4 "
	if got := GetVersion(); got != "6.4" {
		t.Fatalf("GetVersion() = %q, want %q", got, "6.4")
	}
}

func TestRuntimeVersion(t *testing.T) {
	if got := RuntimeVersion(); strings.HasPrefix(got, "go") || got == "" {
		t.Fatalf("RuntimeVersion() = %q, want version without go prefix", got)
	}
}
