package versioninfo

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"versioninfo/host"
	"versioninfo/update"
)

type memStore struct {
	values map[string]string
	sets   int
	err    error
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.sets++
	m.values[key] = value
	return nil
}

type fakeDB struct {
	version string
	raw     string
	err     error
}

func (f fakeDB) QueryVersion(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.version, nil
}

func (f fakeDB) ServerVersion() string { return f.raw }

type failingSource struct{}

func (failingSource) CoreUpdates(context.Context) ([]update.Descriptor, error) {
	return nil, errors.New("offline")
}

func adminCtx() context.Context {
	return host.WithUser(context.Background(), &host.User{ID: 1, Login: "admin", Role: "administrator"})
}

func editorCtx() context.Context {
	return host.WithUser(context.Background(), &host.User{ID: 2, Login: "ed", Role: "editor"})
}

func newTestService(store *memStore, db fakeDB, updates update.Source) *Service {
	return New(Options{
		Settings: store,
		Env:      host.Environment{Platform: "6.4", Runtime: "1.22.5", Server: "nginx/1.25"},
		DB:       db,
		Updates:  updates,
		Auth:     host.NewRoleAuthorizer(),
		Logger:   zerolog.Nop(),
		Labels:   Labels{Platform: "VersionInfo", Runtime: "Go", Database: "SQLite"},
	})
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func stripTags(s template.HTML) string {
	return tagPattern.ReplaceAllString(string(s), "")
}

func TestPreferences_Defaults(t *testing.T) {
	svc := newTestService(newMemStore(), fakeDB{}, nil)
	got := svc.Preferences(context.Background())
	want := Preferences{ShowFooter: true, ShowAdminBar: false, ShowDashboardWidget: false}
	if got != want {
		t.Fatalf("Preferences() = %+v, want %+v", got, want)
	}
}

func TestPreferences_ReadErrorUsesDefaults(t *testing.T) {
	store := newMemStore()
	store.values[OptionShowFooter] = "0"
	store.err = errors.New("db down")
	svc := newTestService(store, fakeDB{}, nil)
	if got := svc.Preferences(context.Background()); got != DefaultPreferences() {
		t.Fatalf("Preferences() = %+v, want defaults", got)
	}
}

func TestValidateBool(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"on", true},
		{" yes ", true},
		{1, true},
		{int64(-3), true},
		{true, true},
		{[]string{"on"}, true},
		{"0", false},
		{"false", false},
		{"off", false},
		{"", false},
		{"maybe", false},
		{nil, false},
		{false, false},
		{0, false},
		{3.5, false},
	}
	for _, tt := range tests {
		if got := ValidateBool(tt.in); got != tt.want {
			t.Errorf("ValidateBool(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTexts_EmptyForNonAdmin(t *testing.T) {
	store := newMemStore()
	store.values[OptionShowFooter] = "1"
	store.values[OptionShowAdminBar] = "1"
	svc := newTestService(store, fakeDB{version: "3.45.1"}, nil)

	for name, ctx := range map[string]context.Context{
		"editor":    editorCtx(),
		"anonymous": context.Background(),
	} {
		if got := svc.AdminBarText(ctx); got != "" {
			t.Errorf("%s: AdminBarText() = %q, want empty", name, got)
		}
		if got := svc.FooterText(ctx, "default"); got != "" {
			t.Errorf("%s: FooterText() = %q, want empty", name, got)
		}
	}
}

func TestTexts_EmptyWhenDisabled(t *testing.T) {
	store := newMemStore()
	store.values[OptionShowFooter] = "0"
	svc := newTestService(store, fakeDB{version: "3.45.1"}, nil)

	if got := svc.AdminBarText(adminCtx()); got != "" {
		t.Fatalf("AdminBarText() = %q, admin bar is off by default", got)
	}
	if got := svc.FooterText(adminCtx(), "default"); got != "" {
		t.Fatalf("FooterText() = %q, footer was disabled", got)
	}
}

func TestAdminBarText(t *testing.T) {
	store := newMemStore()
	store.values[OptionShowAdminBar] = "1"
	svc := newTestService(store, fakeDB{version: "3.45.1"}, update.StaticSource{{Version: "6.5"}})

	got := svc.AdminBarText(adminCtx())
	want := template.HTML("VersionInfo 6.4 | Go 1.22.5 | Web Server nginx/1.25 | SQLite 3.45.1")
	if got != want {
		t.Fatalf("AdminBarText() = %q, want %q", got, want)
	}

	bar := host.NewAdminBar()
	svc.AddAdminBarNode(adminCtx(), bar)
	node, ok := bar.Node(AdminBarNodeID)
	if !ok || node.Parent != AdminBarParent || node.Title != want {
		t.Fatalf("admin bar node = %+v, %v", node, ok)
	}

	empty := host.NewAdminBar()
	svc.AddAdminBarNode(editorCtx(), empty)
	if len(empty.Nodes()) != 0 {
		t.Fatalf("node added for non-admin")
	}
}

func TestFooterText_UpdateSuffix(t *testing.T) {
	tests := []struct {
		name    string
		updates update.Source
		want    string
	}{
		{"single newer", update.StaticSource{{Version: "6.5"}}, "VersionInfo 6.4 (Get Version 6.5) | Go"},
		{"first qualifying wins", update.StaticSource{{Version: "6.5"}, {Version: "6.6"}}, "6.4 (Get Version 6.5) |"},
		{"skips older entries", update.StaticSource{{Version: "6.3"}, {Version: "6.4"}, {Version: "6.4.2"}, {Version: "6.5"}}, "6.4 (Get Version 6.4.2) |"},
		{"semantic not lexical", update.StaticSource{{Version: "6.10"}}, "6.4 (Get Version 6.10) |"},
		{"none", update.StaticSource(nil), "VersionInfo 6.4 | Go"},
		{"all older or equal", update.StaticSource{{Version: "6.4"}, {Version: "6.3.1"}}, "VersionInfo 6.4 | Go"},
		{"source failure", failingSource{}, "VersionInfo 6.4 | Go"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newMemStore(), fakeDB{version: "3.45.1"}, tt.updates)
			got := stripTags(svc.FooterText(adminCtx(), ""))
			if !strings.Contains(got, tt.want) {
				t.Fatalf("FooterText() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestFooterText_LinkMarkup(t *testing.T) {
	svc := newTestService(newMemStore(), fakeDB{version: "3.45.1"}, update.StaticSource{{Version: "6.5"}})
	got := string(svc.FooterText(adminCtx(), ""))
	want := `VersionInfo 6.4 (<a href="/admin/update-core">Get Version 6.5</a>) | Go 1.22.5 | Web Server nginx/1.25 | SQLite 3.45.1`
	if got != want {
		t.Fatalf("FooterText() = %q, want %q", got, want)
	}
}

func TestDatabaseFailureFallback(t *testing.T) {
	store := newMemStore()
	store.values[OptionShowAdminBar] = "1"
	svc := newTestService(store, fakeDB{err: errors.New("connection refused"), raw: "3.45.0"}, nil)

	if got := svc.AdminBarText(adminCtx()); !strings.HasSuffix(string(got), "SQLite Error fetching version") {
		t.Fatalf("AdminBarText() = %q", got)
	}
	if got := svc.FooterText(adminCtx(), ""); !strings.HasSuffix(string(got), "SQLite Error fetching version") {
		t.Fatalf("FooterText() = %q", got)
	}
}

func TestMissingServerSoftware(t *testing.T) {
	store := newMemStore()
	store.values[OptionShowAdminBar] = "1"
	svc := newTestService(store, fakeDB{version: "16.2"}, nil)
	svc.env = host.Environment{Platform: "6.4", Runtime: "1.22.5"}

	if got := svc.AdminBarText(adminCtx()); !strings.Contains(string(got), "Web Server Unknown |") {
		t.Fatalf("AdminBarText() = %q", got)
	}
}

func TestEscaping(t *testing.T) {
	store := newMemStore()
	store.values[OptionShowAdminBar] = "1"
	svc := New(Options{
		Settings: store,
		Env:      host.Environment{Platform: `6.4"`, Runtime: "1.22", Server: "<b>srv</b> & co"},
		DB:       fakeDB{version: "<1>"},
		Auth:     host.NewRoleAuthorizer(),
		Logger:   zerolog.Nop(),
		Labels:   Labels{Platform: "A&B", Runtime: "Go", Database: "DB"},
	})

	got := string(svc.AdminBarText(adminCtx()))
	want := "A&amp;B 6.4&#34; | Go 1.22 | Web Server srv &amp; co | DB &lt;1&gt;"
	if got != want {
		t.Fatalf("AdminBarText() = %q, want %q", got, want)
	}
}

func TestDashboardWidget(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, fakeDB{err: errors.New("down"), raw: "3.45.0"}, nil)

	dash := host.NewDashboard()
	svc.SetupDashboard(adminCtx(), dash)
	if len(dash.Widgets()) != 0 {
		t.Fatalf("widget registered while disabled")
	}

	store.values[OptionShowDashboardWidget] = "1"
	dash = host.NewDashboard()
	svc.SetupDashboard(editorCtx(), dash)
	if len(dash.Widgets()) != 0 {
		t.Fatalf("widget registered for non-admin")
	}

	dash = host.NewDashboard()
	svc.SetupDashboard(adminCtx(), dash)
	widgets := dash.Widgets()
	if len(widgets) != 1 || widgets[0].ID != DashboardWidgetID || widgets[0].Title != "Version Info" {
		t.Fatalf("widgets = %+v", widgets)
	}

	body := string(widgets[0].Render(adminCtx()))
	want := "<ul>" +
		"<li><strong>VersionInfo Version:</strong> 6.4</li>" +
		"<li><strong>Go Version:</strong> 1.22.5</li>" +
		"<li><strong>Web Server:</strong> nginx/1.25</li>" +
		"<li><strong>SQLite Version:</strong> 3.45.0</li>" +
		"</ul>"
	if body != want {
		t.Fatalf("widget body = %q, want %q", body, want)
	}
}

func newPlatform(t *testing.T, store *memStore) (*host.Platform, *Service) {
	t.Helper()
	nonces := host.NewNonces([]byte("test-secret"), time.Hour)
	p := host.NewPlatform(store, nonces)
	svc := newTestService(store, fakeDB{version: "3.45.1"}, nil)
	svc.settings = p.Settings
	p.Load(context.Background(), svc)
	return p, svc
}

func pageRequest(p *host.Platform, method string, form url.Values) *host.PageRequest {
	return &host.PageRequest{
		Ctx:        adminCtx(),
		Method:     method,
		Form:       form,
		Nonces:     p.Nonces.For(1, "session"),
		Settings:   p.Settings,
		OptionsURL: "/admin/options",
		Referer:    "/admin/options-general?page=" + SettingsSlug,
	}
}

func TestRenderSettingsPage_RejectsBadNonce(t *testing.T) {
	store := newMemStore()
	p, svc := newPlatform(t, store)

	tests := []struct {
		name string
		form url.Values
	}{
		{"missing", url.Values{OptionShowAdminBar: {"1"}}},
		{"invalid", url.Values{NonceField: {"deadbeef"}, OptionShowAdminBar: {"1"}}},
		{"other action", url.Values{NonceField: {p.Nonces.For(1, "session").Create("other")}}},
		{"other session", url.Values{NonceField: {p.Nonces.For(1, "stolen").Create(NonceAction)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := svc.RenderSettingsPage(pageRequest(p, http.MethodPost, tt.form))
			var die *host.DieError
			if !errors.As(err, &die) {
				t.Fatalf("err = %v, want DieError", err)
			}
			if die.Status != http.StatusForbidden || die.Message != "Security check failed." {
				t.Fatalf("DieError = %+v", die)
			}
			if out != "" {
				t.Fatalf("page rendered on failed nonce: %q", out)
			}
			if store.sets != 0 {
				t.Fatalf("store modified on failed nonce")
			}
		})
	}
}

func TestRenderSettingsPage_Form(t *testing.T) {
	store := newMemStore()
	p, svc := newPlatform(t, store)

	out, err := svc.RenderSettingsPage(pageRequest(p, http.MethodGet, nil))
	if err != nil {
		t.Fatalf("RenderSettingsPage: %v", err)
	}
	html := string(out)
	for _, want := range []string{
		`<form method="post" action="/admin/options">`,
		`name="option_page" value="version_info_settings_group"`,
		`name="version_info_settings_nonce"`,
		`name="_wpnonce"`,
		`name="version_info_show_footer" value="1" checked="checked"`,
		`name="version_info_show_admin_bar" value="1" />`,
		`name="version_info_show_dashboard_widget" value="1" />`,
		`type="submit"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("settings page missing %q", want)
		}
	}

	binder := p.Nonces.For(1, "session")
	form := url.Values{NonceField: {binder.Create(NonceAction)}}
	if _, err := svc.RenderSettingsPage(pageRequest(p, http.MethodPost, form)); err != nil {
		t.Fatalf("valid nonce rejected: %v", err)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	combos := []Preferences{
		{},
		{ShowFooter: true},
		{ShowAdminBar: true, ShowDashboardWidget: true},
		{ShowFooter: true, ShowAdminBar: true, ShowDashboardWidget: true},
	}
	for _, want := range combos {
		store := newMemStore()
		p, svc := newPlatform(t, store)

		form := url.Values{}
		if want.ShowFooter {
			form.Set(OptionShowFooter, "1")
		}
		if want.ShowAdminBar {
			form.Set(OptionShowAdminBar, "1")
		}
		if want.ShowDashboardWidget {
			form.Set(OptionShowDashboardWidget, "1")
		}
		if err := p.Settings.Save(context.Background(), SettingsGroup, form); err != nil {
			t.Fatalf("Save: %v", err)
		}

		if got := svc.Preferences(context.Background()); got != want {
			t.Fatalf("Preferences() = %+v, want %+v", got, want)
		}

		out, err := svc.RenderSettingsPage(pageRequest(p, http.MethodGet, nil))
		if err != nil {
			t.Fatalf("RenderSettingsPage: %v", err)
		}
		checks := map[string]bool{
			OptionShowFooter:          want.ShowFooter,
			OptionShowAdminBar:        want.ShowAdminBar,
			OptionShowDashboardWidget: want.ShowDashboardWidget,
		}
		for key, checked := range checks {
			marker := `name="` + key + `" value="1" checked="checked"`
			if strings.Contains(string(out), marker) != checked {
				t.Fatalf("%s checked = %v, want %v", key, !checked, checked)
			}
		}
	}
}

func TestRegister(t *testing.T) {
	store := newMemStore()
	p, _ := newPlatform(t, store)

	if got := p.Settings.Keys(SettingsGroup); len(got) != 3 {
		t.Fatalf("registered keys = %v", got)
	}
	page, ok := p.Menu.Page(SettingsSlug)
	if !ok || page.Capability != host.CapManageOptions || page.MenuTitle != "Version Info" || page.PageTitle != "Version Info Settings" {
		t.Fatalf("options page = %+v, %v", page, ok)
	}
	if d, ok := p.Settings.Default(OptionShowDashboardWidget); !ok || d != false {
		t.Fatalf("widget default = %v, %v", d, ok)
	}

	// Footer runs at 11: after a filter at 10, before one at 12.
	p.Hooks.UpdateFooter.Add(10, func(context.Context, template.HTML) template.HTML { return "replaced" })
	p.Hooks.UpdateFooter.Add(12, func(_ context.Context, cur template.HTML) template.HTML { return cur + " [late]" })
	got := string(p.Footer(adminCtx()))
	if !strings.HasPrefix(got, "VersionInfo 6.4 | ") || !strings.HasSuffix(got, " [late]") {
		t.Fatalf("Footer() = %q", got)
	}
}

func TestGermanLocale(t *testing.T) {
	store := newMemStore()
	store.values[OptionShowAdminBar] = "1"
	svc := newTestService(store, fakeDB{err: errors.New("down")}, nil)
	svc.locale = "de"
	svc.LoadTextDomain(context.Background(), struct{}{})

	got := string(svc.AdminBarText(adminCtx()))
	if !strings.Contains(got, "Webserver nginx/1.25") || !strings.HasSuffix(got, "Fehler beim Abrufen der Version") {
		t.Fatalf("AdminBarText() = %q", got)
	}
}
