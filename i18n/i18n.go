// Package i18n holds the console's message catalog.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported lists the languages the catalog carries, English first.
var Supported = []language.Tag{language.English, language.German}

var (
	matcher = language.NewMatcher(Supported)
	builder = catalog.NewBuilder(catalog.Fallback(language.English))
)

// German translations, keyed by the English source string.
var german = map[string]string{
	"%s %s | %s %s | Web Server %s | %s %s":   "%s %s | %s %s | Webserver %s | %s %s",
	"%s %s%s | %s %s | Web Server %s | %s %s": "%s %s%s | %s %s | Webserver %s | %s %s",
	"Get Version":                             "Version holen",
	"Unknown":                                 "Unbekannt",
	"Error fetching version":                  "Fehler beim Abrufen der Version",
	"%s Version:":                             "%s-Version:",
	"Web Server:":                             "Webserver:",
	"Version Info":                            "Versionsinfo",
	"Version Info Settings":                   "Versionsinfo-Einstellungen",
	"Show Version Info in Admin Bar":          "Versionsinfo in der Admin-Leiste anzeigen",
	"Show Version Info as Dashboard Widget":   "Versionsinfo als Dashboard-Widget anzeigen",
	"Show Version Info in Footer":             "Versionsinfo in der Fußzeile anzeigen",
	"Save Changes":                            "Änderungen speichern",
	"Security check failed.":                  "Sicherheitsprüfung fehlgeschlagen.",
	"Settings saved.":                         "Einstellungen gespeichert.",
	"Dashboard":                               "Dashboard",
	"Settings":                                "Einstellungen",
	"Updates":                                 "Aktualisierungen",
	"Log In":                                  "Anmelden",
	"Log Out":                                 "Abmelden",
	"Username":                                "Benutzername",
	"Password":                                "Passwort",
	"Authentication code":                     "Authentifizierungscode",
	"Invalid username or password.":           "Ungültiger Benutzername oder ungültiges Passwort.",
	"Too many login attempts. Try again later.": "Zu viele Anmeldeversuche. Bitte später erneut versuchen.",
	"You are using the latest version.":         "Sie verwenden die neueste Version.",
	"Sorry, you are not allowed to access this page.": "Sie haben leider keine Berechtigung, auf diese Seite zuzugreifen.",
	"The link you followed has expired.":              "Der Link, dem Sie gefolgt sind, ist abgelaufen.",
}

func init() {
	for key, msg := range german {
		if err := builder.SetString(language.German, key, msg); err != nil {
			panic(err)
		}
	}
}

// Printer formats messages in one language.
type Printer struct {
	tag     language.Tag
	printer *message.Printer
}

// NewPrinter returns a printer for locale, such as "de" or "de-AT".
// Unsupported or invalid locales fall back to English.
func NewPrinter(locale string) *Printer {
	tag := Match(locale)
	return &Printer{tag: tag, printer: message.NewPrinter(tag, message.Catalog(builder))}
}

// Match returns the supported language closest to locale.
func Match(locale string) language.Tag {
	locale = strings.ReplaceAll(strings.TrimSpace(locale), "_", "-")
	if locale == "" {
		return language.English
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return language.English
	}
	return Supported[idx]
}

// Language returns the printer's language.
func (p *Printer) Language() language.Tag {
	if p == nil {
		return language.English
	}
	return p.tag
}

// T translates a message with no arguments.
func (p *Printer) T(key string) string {
	if p == nil {
		return key
	}
	return p.printer.Sprintf(key)
}

// Sprintf translates key and formats it with args.
func (p *Printer) Sprintf(key string, args ...any) string {
	if p == nil {
		return message.NewPrinter(language.English).Sprintf(key, args...)
	}
	return p.printer.Sprintf(key, args...)
}
