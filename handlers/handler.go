package handlers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"versioninfo/host"
	"versioninfo/i18n"
	"versioninfo/service"
	"versioninfo/update"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static/*
var staticFiles embed.FS

// SessionCookie is the name of the console session cookie
const SessionCookie = "versioninfo_session"

// Options configures a Handler
type Options struct {
	Platform        *host.Platform
	Auth            *service.AuthService
	Authorizer      host.Authorizer
	DB              *gorm.DB
	Updates         update.Source
	PlatformName    string
	PlatformVersion string
	Locale          string
	SecureCookies   bool
	Logger          zerolog.Logger
}

// Handler serves the admin console
type Handler struct {
	platform        *host.Platform
	auth            *service.AuthService
	authz           host.Authorizer
	db              *gorm.DB
	updates         update.Source
	siteName        string
	platformVersion string
	printer         *i18n.Printer
	secureCookies   bool
	log             zerolog.Logger
	tmpl            *template.Template
}

// New constructs the console handler
func New(opts Options) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}
	if opts.Updates == nil {
		opts.Updates = update.StaticSource(nil)
	}
	if opts.Authorizer == nil {
		opts.Authorizer = host.NewRoleAuthorizer()
	}
	if opts.PlatformName == "" {
		opts.PlatformName = "VersionInfo"
	}
	return &Handler{
		platform:        opts.Platform,
		auth:            opts.Auth,
		authz:           opts.Authorizer,
		db:              opts.DB,
		updates:         opts.Updates,
		siteName:        opts.PlatformName,
		platformVersion: opts.PlatformVersion,
		printer:         i18n.NewPrinter(opts.Locale),
		secureCookies:   opts.SecureCookies,
		log:             opts.Logger.With().Str("component", "handlers").Logger(),
		tmpl:            tmpl,
	}, nil
}

func (h *Handler) render(c *gin.Context, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.Error().Err(err).Str("template", name).Msg("failed to render template")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) renderPart(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// die renders a terminal error page and aborts the handler chain
func (h *Handler) die(c *gin.Context, d *host.DieError) {
	status := d.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	title := d.Title
	if title == "" {
		title = "Error"
	}
	h.log.Warn().Int("status", status).Str("path", c.Request.URL.Path).Str("message", d.Message).Msg("request aborted")
	h.render(c, status, "die", gin.H{
		"Lang":    h.printer.Language().String(),
		"Title":   title,
		"Message": d.Message,
	})
	c.Abort()
}

// fail renders err, using its status when it is a DieError
func (h *Handler) fail(c *gin.Context, err error) {
	var d *host.DieError
	if errors.As(err, &d) {
		h.die(c, d)
		return
	}
	h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	h.die(c, &host.DieError{Status: http.StatusInternalServerError, Message: err.Error()})
}
