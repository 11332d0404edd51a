package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		in   string
		want language.Tag
	}{
		{"", language.English},
		{"en", language.English},
		{"de", language.German},
		{"de_AT", language.German},
		{"!!", language.English},
	}
	for _, tt := range tests {
		if got := Match(tt.in); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPrinter(t *testing.T) {
	en := NewPrinter("en")
	if got := en.T("Unknown"); got != "Unknown" {
		t.Fatalf("en T(Unknown) = %q", got)
	}
	de := NewPrinter("de")
	if got := de.T("Unknown"); got != "Unbekannt" {
		t.Fatalf("de T(Unknown) = %q", got)
	}
	if got := de.Sprintf("%s Version:", "Go"); got != "Go-Version:" {
		t.Fatalf("de Sprintf = %q", got)
	}
	if got := en.T("Not in catalog"); got != "Not in catalog" {
		t.Fatalf("missing key = %q", got)
	}

	var nilPrinter *Printer
	if got := nilPrinter.Sprintf("%s %s", "a", "b"); got != "a b" {
		t.Fatalf("nil printer Sprintf = %q", got)
	}
}
