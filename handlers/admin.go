package handlers

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"versioninfo/host"
	"versioninfo/update"

	"github.com/gin-gonic/gin"
)

const (
	optionsGeneralPath = "/admin/options-general"
	optionsSavePath    = "/admin/options"
	updateCorePath     = "/admin/update-core"
)

type menuItem struct {
	Title   string
	Href    string
	Current bool
}

type adminView struct {
	Lang        string
	SiteName    string
	Title       string
	User        *host.User
	AdminBar    []host.AdminBarNode
	Menu        []menuItem
	Notice      string
	Content     template.HTML
	Footer      template.HTML
	LogoutNonce string
	LogOut      string
}

// renderAdmin wraps content in the admin chrome. The admin bar and footer
// hooks run here for every admin page.
func (h *Handler) renderAdmin(c *gin.Context, status int, title, current string, content template.HTML) {
	ctx := c.Request.Context()
	h.render(c, status, "layout", adminView{
		Lang:        h.printer.Language().String(),
		SiteName:    h.siteName,
		Title:       title,
		User:        currentUser(c),
		AdminBar:    h.platform.AdminBar(ctx).Nodes(),
		Menu:        h.menu(ctx, current),
		Notice:      h.notice(c),
		Content:     content,
		Footer:      h.platform.Footer(ctx),
		LogoutNonce: h.nonces(c).Create(LogoutNonceAction),
		LogOut:      h.printer.T("Log Out"),
	})
}

func (h *Handler) notice(c *gin.Context) string {
	if c.Query("settings-updated") == "true" {
		return h.printer.T("Settings saved.")
	}
	return ""
}

func (h *Handler) menu(ctx context.Context, current string) []menuItem {
	items := []menuItem{{Title: h.printer.T("Dashboard"), Href: "/admin/", Current: current == "dashboard"}}
	if h.authz.CurrentUserCan(ctx, host.CapUpdateCore) {
		items = append(items, menuItem{Title: h.printer.T("Updates"), Href: updateCorePath, Current: current == "update-core"})
	}
	for _, p := range h.platform.Menu.Pages() {
		if !h.authz.CurrentUserCan(ctx, p.Capability) {
			continue
		}
		items = append(items, menuItem{
			Title:   p.MenuTitle,
			Href:    optionsGeneralPath + "?page=" + url.QueryEscape(p.Slug),
			Current: current == p.Slug,
		})
	}
	return items
}

func (h *Handler) notAllowed() *host.DieError {
	return &host.DieError{Status: http.StatusForbidden, Title: "Error", Message: h.printer.T("Sorry, you are not allowed to access this page.")}
}

func (h *Handler) expiredLink() *host.DieError {
	return &host.DieError{Status: http.StatusForbidden, Title: "Error", Message: h.printer.T("The link you followed has expired.")}
}

type widgetView struct {
	ID    string
	Title string
	Body  template.HTML
}

// Dashboard renders the admin dashboard and its widgets
func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	var widgets []widgetView
	for _, w := range h.platform.Dashboard(ctx).Widgets() {
		widgets = append(widgets, widgetView{ID: w.ID, Title: w.Title, Body: w.Render(ctx)})
	}

	title := h.printer.T("Dashboard")
	content, err := h.renderPart("dashboard", gin.H{"Title": title, "Widgets": widgets})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.renderAdmin(c, http.StatusOK, title, "dashboard", content)
}

// OptionsPage renders a registered options page for GET and POST
func (h *Handler) OptionsPage(c *gin.Context) {
	slug := c.Query("page")
	page, ok := h.platform.Menu.Page(slug)
	if !ok || !h.authz.CurrentUserCan(c.Request.Context(), page.Capability) {
		h.die(c, h.notAllowed())
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		h.die(c, &host.DieError{Status: http.StatusBadRequest, Title: "Error", Message: err.Error()})
		return
	}

	content, err := page.Render(&host.PageRequest{
		Ctx:        c.Request.Context(),
		Method:     c.Request.Method,
		Form:       c.Request.PostForm,
		Nonces:     h.nonces(c),
		Settings:   h.platform.Settings,
		OptionsURL: optionsSavePath,
		Referer:    optionsGeneralPath + "?page=" + url.QueryEscape(slug),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.renderAdmin(c, http.StatusOK, page.PageTitle, slug, content)
}

// SaveOptions is the generic options-save endpoint settings forms post to
func (h *Handler) SaveOptions(c *gin.Context) {
	ctx := c.Request.Context()
	// PostForm parses the body, filling c.Request.PostForm
	group := c.PostForm("option_page")

	if !h.nonces(c).Verify(c.PostForm("_wpnonce"), host.OptionsNonceAction(group)) {
		h.die(c, h.expiredLink())
		return
	}
	if !h.authz.CurrentUserCan(ctx, host.CapManageOptions) {
		h.die(c, h.notAllowed())
		return
	}

	if err := h.platform.Settings.Save(ctx, group, c.Request.PostForm); err != nil {
		if errors.Is(err, host.ErrUnknownSettingsGroup) {
			h.die(c, &host.DieError{Status: http.StatusBadRequest, Title: "Error", Message: err.Error()})
			return
		}
		h.fail(c, err)
		return
	}
	h.log.Info().Str("group", group).Str("login", currentUser(c).Login).Msg("settings saved")

	target := safeRedirect(c.PostForm("_wp_http_referer"), "/admin/")
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	c.Redirect(http.StatusFound, target+sep+"settings-updated=true")
}

// UpdateCore lists the available platform updates
func (h *Handler) UpdateCore(c *gin.Context) {
	ctx := c.Request.Context()
	if !h.authz.CurrentUserCan(ctx, host.CapUpdateCore) {
		h.die(c, h.notAllowed())
		return
	}

	data := gin.H{
		"Title":        h.printer.T("Updates"),
		"CurrentLabel": h.printer.Sprintf("%s Version:", h.siteName) + " " + h.platformVersion,
		"Latest":       h.printer.T("You are using the latest version."),
	}

	updates, err := h.updates.CoreUpdates(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("core update check failed")
		data["Error"] = err.Error()
	} else {
		var newer []update.Descriptor
		for _, u := range updates {
			if update.IsNewer(u.Version, h.platformVersion) {
				newer = append(newer, u)
			}
		}
		data["Updates"] = newer
	}

	content, err := h.renderPart("update_core", data)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.renderAdmin(c, http.StatusOK, h.printer.T("Updates"), "update-core", content)
}
