package versioninfo

import (
	"bytes"
	"context"
	"html/template"
	"net/http"

	"versioninfo/host"
)

// RegisterSettings declares the three options in the settings group.
func (s *Service) RegisterSettings(_ context.Context, r *host.SettingsRegistry) {
	d := DefaultPreferences()
	sanitize := func(input any) any { return ValidateBool(input) }

	r.Register(SettingsGroup, OptionShowFooter, host.SettingArgs{Sanitize: sanitize, Default: d.ShowFooter})
	r.Register(SettingsGroup, OptionShowAdminBar, host.SettingArgs{Sanitize: sanitize, Default: d.ShowAdminBar})
	r.Register(SettingsGroup, OptionShowDashboardWidget, host.SettingArgs{Sanitize: sanitize, Default: d.ShowDashboardWidget})
}

// AddSettingsPage lists the settings screen under the Settings menu.
func (s *Service) AddSettingsPage(_ context.Context, menu *host.AdminMenu) {
	menu.AddOptionsPage(host.OptionsPage{
		PageTitle:  s.printer.T("Version Info Settings"),
		MenuTitle:  s.printer.T("Version Info"),
		Capability: host.CapManageOptions,
		Slug:       SettingsSlug,
		Render:     s.RenderSettingsPage,
	})
}

var settingsPage = template.Must(template.New("settings").Parse(`<div class="wrap">
<h1>{{.Title}}</h1>
<form method="post" action="{{.Action}}">
{{.GroupFields}}
{{.NonceField}}
<table class="form-table">
{{- range .Rows}}
<tr>
<th>{{.Label}}</th>
<td><input type="checkbox" name="{{.Key}}" value="1"{{if .Checked}} checked="checked"{{end}} /></td>
</tr>
{{- end}}
</table>
<p class="submit"><input type="submit" name="submit" id="submit" class="button button-primary" value="{{.Submit}}" /></p>
</form>
</div>
`))

type settingsRow struct {
	Key     string
	Label   string
	Checked bool
}

// RenderSettingsPage renders the settings form. A POST must carry a valid
// nonce for NonceAction; otherwise the request dies with 403 and nothing is
// rendered.
func (s *Service) RenderSettingsPage(req *host.PageRequest) (template.HTML, error) {
	if req.IsPost() {
		nonce := req.Form.Get(NonceField)
		if nonce == "" || !req.Nonces.Verify(nonce, NonceAction) {
			s.log.Warn().Msg("settings form nonce check failed")
			return "", &host.DieError{
				Status:  http.StatusForbidden,
				Title:   "Error",
				Message: s.printer.T("Security check failed."),
			}
		}
	}

	ctx := req.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	prefs := s.Preferences(ctx)

	var groupFields template.HTML
	if req.Settings != nil {
		groupFields = req.Settings.Fields(SettingsGroup, req.Nonces, req.Referer)
	}

	data := struct {
		Title       string
		Action      string
		GroupFields template.HTML
		NonceField  template.HTML
		Rows        []settingsRow
		Submit      string
	}{
		Title:       s.printer.T("Version Info Settings"),
		Action:      req.OptionsURL,
		GroupFields: groupFields,
		NonceField:  req.Nonces.Field(NonceAction, NonceField),
		Rows: []settingsRow{
			{Key: OptionShowAdminBar, Label: s.printer.T("Show Version Info in Admin Bar"), Checked: prefs.ShowAdminBar},
			{Key: OptionShowDashboardWidget, Label: s.printer.T("Show Version Info as Dashboard Widget"), Checked: prefs.ShowDashboardWidget},
			{Key: OptionShowFooter, Label: s.printer.T("Show Version Info in Footer"), Checked: prefs.ShowFooter},
		},
		Submit: s.printer.T("Save Changes"),
	}

	var buf bytes.Buffer
	if err := settingsPage.Execute(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
