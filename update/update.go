// Package update answers whether newer platform releases are available.
package update

import (
	"context"
	"strings"

	"golang.org/x/mod/semver"
)

// Descriptor is one available platform release.
type Descriptor struct {
	Version    string `json:"version"`
	URL        string `json:"url"`
	Prerelease bool   `json:"prerelease"`
}

// Source lists available core updates, newest first.
type Source interface {
	CoreUpdates(ctx context.Context) ([]Descriptor, error)
}

// StaticSource returns a fixed list. A nil StaticSource has no updates.
type StaticSource []Descriptor

// CoreUpdates implements Source.
func (s StaticSource) CoreUpdates(context.Context) ([]Descriptor, error) {
	return append([]Descriptor(nil), s...), nil
}

// IsNewer reports whether candidate is strictly greater than current.
// Semantic versions compare with semver rules; anything else compares
// numerically segment by segment.
func IsNewer(candidate, current string) bool {
	c, cur := normalizeTag(candidate), normalizeTag(current)
	if semver.IsValid(c) && semver.IsValid(cur) {
		return semver.Compare(c, cur) > 0
	}
	return compareSegments(parseVersion(candidate), parseVersion(current)) > 0
}

func parseVersion(v string) []int {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "v")
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ".")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n := 0
		for _, ch := range p {
			if ch < '0' || ch > '9' {
				break
			}
			n = n*10 + int(ch-'0')
		}
		out = append(out, n)
	}
	return out
}

func compareSegments(a, b []int) int {
	for i := 0; i < len(a) || i < len(b); i++ {
		var x, y int
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if x != y {
			if x > y {
				return 1
			}
			return -1
		}
	}
	return 0
}

func normalizeTag(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}
