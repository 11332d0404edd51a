package handlers

import (
	"errors"
	"net/http"
	"strings"

	"versioninfo/service"

	"github.com/gin-gonic/gin"
)

// LogoutNonceAction protects the logout form
const LogoutNonceAction = "log-out"

type loginView struct {
	Lang          string
	SiteName      string
	Title         string
	Error         string
	Login         string
	RedirectTo    string
	UsernameLabel string
	PasswordLabel string
	CodeLabel     string
}

func (h *Handler) loginView(c *gin.Context) loginView {
	return loginView{
		Lang:          h.printer.Language().String(),
		SiteName:      h.siteName,
		Title:         h.printer.T("Log In"),
		RedirectTo:    safeRedirect(c.Query("redirect_to"), "/admin/"),
		UsernameLabel: h.printer.T("Username"),
		PasswordLabel: h.printer.T("Password"),
		CodeLabel:     h.printer.T("Authentication code"),
	}
}

// LoginPage renders the login form
func (h *Handler) LoginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login", h.loginView(c))
}

// Login authenticates the form and starts a session
func (h *Handler) Login(c *gin.Context) {
	view := h.loginView(c)
	view.Login = strings.TrimSpace(c.PostForm("log"))
	view.RedirectTo = safeRedirect(c.PostForm("redirect_to"), "/admin/")

	user, err := h.auth.Authenticate(c.Request.Context(), c.ClientIP(), view.Login, c.PostForm("pwd"), strings.TrimSpace(c.PostForm("authcode")))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRateLimited):
			view.Error = h.printer.T("Too many login attempts. Try again later.")
			h.render(c, http.StatusTooManyRequests, "login", view)
		case errors.Is(err, service.ErrInvalidCredentials):
			view.Error = h.printer.T("Invalid username or password.")
			h.render(c, http.StatusUnauthorized, "login", view)
		default:
			h.fail(c, err)
		}
		return
	}

	sess, err := h.auth.CreateSession(c.Request.Context(), user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.log.Info().Str("login", user.Login).Msg("user logged in")
	h.setSessionCookie(c, sess.ID, int(sess.ExpiresAt.Sub(sess.CreatedAt).Seconds()))
	c.Redirect(http.StatusFound, view.RedirectTo)
}

// Logout ends the caller's session
func (h *Handler) Logout(c *gin.Context) {
	if !h.nonces(c).Verify(c.PostForm("_wpnonce"), LogoutNonceAction) {
		h.die(c, h.expiredLink())
		return
	}
	if err := h.auth.DeleteSession(c.Request.Context(), c.GetString(ctxSessionID)); err != nil {
		h.fail(c, err)
		return
	}
	h.setSessionCookie(c, "", -1)
	c.Redirect(http.StatusFound, "/login?loggedout=true")
}
