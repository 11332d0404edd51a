package host

import (
	"strings"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNonces_VerifyWithinLifetime(t *testing.T) {
	n := NewNonces([]byte("secret"), 24*time.Hour)
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	n.now = fixedClock(start)

	tok := n.Create("save", 1, "sess")

	tests := []struct {
		name    string
		elapsed time.Duration
		want    int
	}{
		{"same tick", 0, 1},
		{"next tick", 12 * time.Hour, 2},
		{"two ticks later", 24 * time.Hour, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n.now = fixedClock(start.Add(tt.elapsed))
			if got := n.Verify(tok, "save", 1, "sess"); got != tt.want {
				t.Fatalf("Verify() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNonces_BoundToActionUserSession(t *testing.T) {
	n := NewNonces([]byte("secret"), time.Hour)
	n.now = fixedClock(time.Unix(1_700_000_000, 0))
	tok := n.Create("save", 1, "sess")

	tests := []struct {
		name    string
		action  string
		user    uint
		session string
	}{
		{"other action", "delete", 1, "sess"},
		{"other user", "save", 2, "sess"},
		{"other session", "save", 1, "other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Verify(tok, tt.action, tt.user, tt.session); got != 0 {
				t.Fatalf("Verify() = %d, want 0", got)
			}
		})
	}
	if n.Verify("", "save", 1, "sess") != 0 {
		t.Fatalf("empty nonce must not verify")
	}
}

func TestNonceBinder_Field(t *testing.T) {
	n := NewNonces([]byte("secret"), time.Hour)
	b := n.For(3, "abc")

	field := string(b.Field("act", "my_nonce"))
	if !strings.Contains(field, `name="my_nonce"`) || !strings.Contains(field, `type="hidden"`) {
		t.Fatalf("unexpected field: %s", field)
	}
	if !strings.Contains(field, b.Create("act")) {
		t.Fatalf("field does not carry a fresh nonce: %s", field)
	}
	if !b.Verify(b.Create("act"), "act") {
		t.Fatalf("binder failed to verify its own nonce")
	}

	var zero NonceBinder
	if zero.Verify("x", "act") {
		t.Fatalf("zero binder must reject everything")
	}
}
