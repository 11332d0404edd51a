package host

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Environment describes the platform the console runs on.
type Environment struct {
	Platform string
	Runtime  string
	Server   string
}

// PlatformVersion returns the platform's own version.
func (e Environment) PlatformVersion() string {
	return e.Platform
}

// RuntimeVersion returns the language runtime version.
func (e Environment) RuntimeVersion() string {
	return e.Runtime
}

// ServerSoftware returns the web server identifier; ok is false when none is
// configured.
func (e Environment) ServerSoftware() (string, bool) {
	return e.Server, e.Server != ""
}

var (
	stripTagsPolicy = bluemonday.StrictPolicy()
	percentOctets   = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
)

// SanitizeTextField cleans a single-line text value: invalid UTF-8 yields "",
// tags are stripped, percent-encoded octets removed and whitespace collapsed.
func SanitizeTextField(s string) string {
	if !utf8.ValidString(s) {
		return ""
	}
	if strings.ContainsRune(s, '<') {
		// The policy escapes the text it keeps; undo that so callers can
		// escape once for their own output context.
		s = html.UnescapeString(stripTagsPolicy.Sanitize(s))
	}
	s = percentOctets.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}
