package versioninfo

import (
	"strings"

	"versioninfo/i18n"
)

// Snapshot is the environment as read for one render.
type Snapshot struct {
	PlatformVersion string
	RuntimeVersion  string
	ServerSoftware  string
	DatabaseVersion string
	// UpdateVersion is the newer platform version on offer, or "".
	UpdateVersion string
}

// Labels are the product names shown next to each version.
type Labels struct {
	Platform string
	Runtime  string
	Database string
}

func (l Labels) withDefaults() Labels {
	if l.Platform == "" {
		l.Platform = "VersionInfo"
	}
	if l.Runtime == "" {
		l.Runtime = "Go"
	}
	if l.Database == "" {
		l.Database = "Database"
	}
	return l
}

// Formatter renders snapshots as HTML fragments. Escape is applied to every
// interpolated value.
type Formatter struct {
	Escape  func(string) string
	Printer *i18n.Printer
}

func (f Formatter) esc(s string) string {
	if f.Escape == nil {
		return s
	}
	return f.Escape(s)
}

// AdminBar renders "<Platform> <ver> | <Runtime> <ver> | Web Server <id> | <DB> <ver>".
func (f Formatter) AdminBar(s Snapshot, l Labels) string {
	return f.Printer.Sprintf("%s %s | %s %s | Web Server %s | %s %s",
		f.esc(l.Platform), f.esc(s.PlatformVersion),
		f.esc(l.Runtime), f.esc(s.RuntimeVersion),
		f.esc(s.ServerSoftware),
		f.esc(l.Database), f.esc(s.DatabaseVersion),
	)
}

// Footer renders the admin bar line with an update link after the platform
// version when s.UpdateVersion is set.
func (f Formatter) Footer(s Snapshot, l Labels, updateURL string) string {
	return f.Printer.Sprintf("%s %s%s | %s %s | Web Server %s | %s %s",
		f.esc(l.Platform), f.esc(s.PlatformVersion), f.UpdateSuffix(s.UpdateVersion, updateURL),
		f.esc(l.Runtime), f.esc(s.RuntimeVersion),
		f.esc(s.ServerSoftware),
		f.esc(l.Database), f.esc(s.DatabaseVersion),
	)
}

// UpdateSuffix renders ` (<a href="url">Get Version v</a>)`, or "" when
// version is empty.
func (f Formatter) UpdateSuffix(version, updateURL string) string {
	if version == "" {
		return ""
	}
	return ` (<a href="` + f.esc(updateURL) + `">` + f.Printer.T("Get Version") + " " + f.esc(version) + `</a>)`
}

// Widget renders the dashboard list.
func (f Formatter) Widget(s Snapshot, l Labels) string {
	var b strings.Builder
	item := func(label, value string) {
		b.WriteString("<li><strong>")
		b.WriteString(f.esc(label))
		b.WriteString("</strong> ")
		b.WriteString(f.esc(value))
		b.WriteString("</li>")
	}

	b.WriteString("<ul>")
	item(f.Printer.Sprintf("%s Version:", l.Platform), s.PlatformVersion)
	item(f.Printer.Sprintf("%s Version:", l.Runtime), s.RuntimeVersion)
	item(f.Printer.T("Web Server:"), s.ServerSoftware)
	item(f.Printer.Sprintf("%s Version:", l.Database), s.DatabaseVersion)
	b.WriteString("</ul>")
	return b.String()
}
