// Package versioninfo shows the platform, runtime, web server and database
// versions to administrators in the admin bar, the admin footer and a
// dashboard widget.
package versioninfo

import (
	"context"
	"html/template"

	"github.com/rs/zerolog"

	"versioninfo/host"
	"versioninfo/i18n"
	"versioninfo/update"
)

// Option keys, settings group and page identifiers
const (
	OptionShowFooter          = "version_info_show_footer"
	OptionShowAdminBar        = "version_info_show_admin_bar"
	OptionShowDashboardWidget = "version_info_show_dashboard_widget"

	SettingsGroup = "version_info_settings_group"
	SettingsSlug  = "version-info-settings"
	NonceAction   = "version_info_settings_action"
	NonceField    = "version_info_settings_nonce"

	AdminBarNodeID    = "version_info_admin_bar"
	AdminBarParent    = "top-secondary"
	DashboardWidgetID = "version_info_dashboard_widget"

	FooterPriority   = 11
	AdminBarPriority = 100
)

// OptionReader reads stored options.
type OptionReader interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
}

// EnvironmentReader reports the versions of the running environment.
type EnvironmentReader interface {
	PlatformVersion() string
	RuntimeVersion() string
	ServerSoftware() (string, bool)
}

// DatabaseVersion reports the database server version.
type DatabaseVersion interface {
	// QueryVersion asks the server for its version.
	QueryVersion(ctx context.Context) (string, error)
	// ServerVersion returns the version known to the connection without
	// querying.
	ServerVersion() string
}

// Options configures a Service.
type Options struct {
	Settings  OptionReader
	Env       EnvironmentReader
	DB        DatabaseVersion
	Updates   update.Source
	Auth      host.Authorizer
	Logger    zerolog.Logger
	Labels    Labels
	Locale    string
	UpdateURL string
}

// Service is the version-info component.
type Service struct {
	settings  OptionReader
	env       EnvironmentReader
	db        DatabaseVersion
	updates   update.Source
	auth      host.Authorizer
	log       zerolog.Logger
	labels    Labels
	locale    string
	updateURL string

	printer *i18n.Printer
}

// New creates the component. Register attaches it to the platform.
func New(opts Options) *Service {
	if opts.Updates == nil {
		opts.Updates = update.StaticSource(nil)
	}
	if opts.UpdateURL == "" {
		opts.UpdateURL = "/admin/update-core"
	}
	return &Service{
		settings:  opts.Settings,
		env:       opts.Env,
		db:        opts.DB,
		updates:   opts.Updates,
		auth:      opts.Auth,
		log:       opts.Logger.With().Str("component", "versioninfo").Logger(),
		labels:    opts.Labels.withDefaults(),
		locale:    opts.Locale,
		updateURL: opts.UpdateURL,
		printer:   i18n.NewPrinter(""),
	}
}

// Register attaches the component's callbacks. Each callback checks
// permissions and preferences itself.
func (s *Service) Register(h *host.Hooks) {
	h.PluginsLoaded.Add(10, s.LoadTextDomain)
	h.UpdateFooter.Add(FooterPriority, s.FooterText)
	h.AdminBarMenu.Add(AdminBarPriority, s.AddAdminBarNode)
	h.AdminMenu.Add(10, s.AddSettingsPage)
	h.AdminInit.Add(10, s.RegisterSettings)
	h.DashboardSetup.Add(10, s.SetupDashboard)
}

// LoadTextDomain selects the translations for the configured locale.
func (s *Service) LoadTextDomain(context.Context, struct{}) {
	s.printer = i18n.NewPrinter(s.locale)
	s.log.Debug().Str("language", s.printer.Language().String()).Msg("text domain loaded")
}

func (s *Service) isAdmin(ctx context.Context) bool {
	return s.auth != nil && s.auth.CurrentUserCan(ctx, host.CapAdministrator)
}

func (s *Service) formatter() Formatter {
	return Formatter{Escape: template.HTMLEscapeString, Printer: s.printer}
}

// AddAdminBarNode adds the version line to the admin bar.
func (s *Service) AddAdminBarNode(ctx context.Context, bar *host.AdminBar) {
	text := s.AdminBarText(ctx)
	if text == "" {
		return
	}
	bar.AddNode(host.AdminBarNode{
		ID:     AdminBarNodeID,
		Title:  text,
		Parent: AdminBarParent,
	})
}

// AdminBarText returns the admin bar version line, or "" when the caller is
// not an administrator or the admin bar display is off.
func (s *Service) AdminBarText(ctx context.Context) template.HTML {
	if !s.isAdmin(ctx) || !s.Preferences(ctx).ShowAdminBar {
		return ""
	}
	return template.HTML(s.formatter().AdminBar(s.snapshot(ctx, false), s.labels))
}

// FooterText replaces the admin footer with the version line, or with "" when
// the caller is not an administrator or the footer display is off.
func (s *Service) FooterText(ctx context.Context, _ template.HTML) template.HTML {
	if !s.isAdmin(ctx) || !s.Preferences(ctx).ShowFooter {
		return ""
	}
	return template.HTML(s.formatter().Footer(s.snapshot(ctx, true), s.labels, s.updateURL))
}

// SetupDashboard registers the dashboard widget for administrators who
// enabled it.
func (s *Service) SetupDashboard(ctx context.Context, dash *host.Dashboard) {
	if !s.Preferences(ctx).ShowDashboardWidget || !s.isAdmin(ctx) {
		return
	}
	dash.AddWidget(DashboardWidgetID, s.printer.T("Version Info"), s.RenderDashboardWidget)
}

// RenderDashboardWidget renders the widget body. The database version is the
// connection's raw server version; query failures are not substituted here.
func (s *Service) RenderDashboardWidget(ctx context.Context) template.HTML {
	snap := Snapshot{
		PlatformVersion: s.env.PlatformVersion(),
		RuntimeVersion:  s.env.RuntimeVersion(),
		ServerSoftware:  s.serverSoftware(),
	}
	if s.db != nil {
		snap.DatabaseVersion = s.db.ServerVersion()
	}
	return template.HTML(s.formatter().Widget(snap, s.labels))
}

func (s *Service) serverSoftware() string {
	v, ok := s.env.ServerSoftware()
	if !ok {
		v = s.printer.T("Unknown")
	}
	return host.SanitizeTextField(v)
}

// snapshot reads the live environment. withUpdate also consults the update
// source.
func (s *Service) snapshot(ctx context.Context, withUpdate bool) Snapshot {
	snap := Snapshot{
		PlatformVersion: s.env.PlatformVersion(),
		RuntimeVersion:  s.env.RuntimeVersion(),
		ServerSoftware:  s.serverSoftware(),
		DatabaseVersion: s.databaseVersion(ctx),
	}
	if withUpdate {
		snap.UpdateVersion = s.availableUpdate(ctx, snap.PlatformVersion)
	}
	return snap
}

func (s *Service) databaseVersion(ctx context.Context) string {
	if s.db == nil {
		return s.printer.T("Error fetching version")
	}
	v, err := s.db.QueryVersion(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to query database version")
		return s.printer.T("Error fetching version")
	}
	return v
}

// availableUpdate returns the first listed version newer than current.
func (s *Service) availableUpdate(ctx context.Context, current string) string {
	updates, err := s.updates.CoreUpdates(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("core update check failed")
		return ""
	}
	for _, u := range updates {
		if update.IsNewer(u.Version, current) {
			return u.Version
		}
	}
	return ""
}
