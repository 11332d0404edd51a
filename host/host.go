// Package host is the admin platform the version-info component plugs into:
// extension points, settings registration, anti-forgery nonces, the admin
// bar, dashboard and options pages.
package host

import (
	"context"
	"html/template"

	"versioninfo/hooks"
)

// Extension point names
const (
	HookPluginsLoaded  = "plugins_loaded"
	HookAdminInit      = "admin_init"
	HookAdminMenu      = "admin_menu"
	HookAdminBarMenu   = "admin_bar_menu"
	HookDashboardSetup = "dashboard_setup"
	HookUpdateFooter   = "update_footer"
)

// Hooks holds the platform's extension points.
type Hooks struct {
	PluginsLoaded  *hooks.Action[struct{}]
	AdminInit      *hooks.Action[*SettingsRegistry]
	AdminMenu      *hooks.Action[*AdminMenu]
	AdminBarMenu   *hooks.Action[*AdminBar]
	DashboardSetup *hooks.Action[*Dashboard]
	UpdateFooter   *hooks.Filter[template.HTML]
}

// NewHooks creates the platform's extension points with no callbacks.
func NewHooks() *Hooks {
	return &Hooks{
		PluginsLoaded:  hooks.NewAction[struct{}](HookPluginsLoaded),
		AdminInit:      hooks.NewAction[*SettingsRegistry](HookAdminInit),
		AdminMenu:      hooks.NewAction[*AdminMenu](HookAdminMenu),
		AdminBarMenu:   hooks.NewAction[*AdminBar](HookAdminBarMenu),
		DashboardSetup: hooks.NewAction[*Dashboard](HookDashboardSetup),
		UpdateFooter:   hooks.NewFilter[template.HTML](HookUpdateFooter),
	}
}

// Plugin is a component that attaches itself to the platform's hooks.
type Plugin interface {
	Register(h *Hooks)
}

// Platform drives the hook lifecycle for the admin console.
type Platform struct {
	Hooks    *Hooks
	Settings *SettingsRegistry
	Menu     *AdminMenu
	Nonces   *Nonces

	// DefaultFooter is the footer text before the update_footer filter runs.
	DefaultFooter template.HTML
}

// NewPlatform wires a platform around store and nonces.
func NewPlatform(store OptionStore, nonces *Nonces) *Platform {
	return &Platform{
		Hooks:    NewHooks(),
		Settings: NewSettingsRegistry(store),
		Menu:     NewAdminMenu(),
		Nonces:   nonces,
	}
}

// Load registers plugins and runs the one-time startup hooks:
// plugins_loaded, admin_init and admin_menu.
func (p *Platform) Load(ctx context.Context, plugins ...Plugin) {
	for _, plugin := range plugins {
		plugin.Register(p.Hooks)
	}
	p.Hooks.PluginsLoaded.Do(ctx, struct{}{})
	p.Hooks.AdminInit.Do(ctx, p.Settings)
	p.Hooks.AdminMenu.Do(ctx, p.Menu)
}

// AdminBar builds the admin bar for the current request.
func (p *Platform) AdminBar(ctx context.Context) *AdminBar {
	bar := NewAdminBar()
	p.Hooks.AdminBarMenu.Do(ctx, bar)
	return bar
}

// Dashboard builds the dashboard widgets for the current request.
func (p *Platform) Dashboard(ctx context.Context) *Dashboard {
	dash := NewDashboard()
	p.Hooks.DashboardSetup.Do(ctx, dash)
	return dash
}

// Footer returns the filtered admin footer text.
func (p *Platform) Footer(ctx context.Context) template.HTML {
	return p.Hooks.UpdateFooter.Apply(ctx, p.DefaultFooter)
}
