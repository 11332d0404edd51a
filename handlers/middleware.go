package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"versioninfo/host"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	requestIDHeader = "X-Request-ID"
	ctxSessionID    = "session_id"
)

// RequestLogger logs each request with a request id
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Set("request_id", id)

		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}
		event.
			Str("request_id", id).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

// requireLogin resolves the session cookie to a user and stores it in the
// request context. Anonymous callers are redirected to the login page.
func (h *Handler) requireLogin(c *gin.Context) {
	sessionID, _ := c.Cookie(SessionCookie)
	sess, user, err := h.auth.SessionUser(c.Request.Context(), sessionID)
	if err != nil {
		target := "/login?redirect_to=" + url.QueryEscape(c.Request.URL.RequestURI())
		c.Redirect(http.StatusFound, target)
		c.Abort()
		return
	}

	u := &host.User{ID: user.ID, Login: user.Login, Role: user.Role}
	c.Request = c.Request.WithContext(host.WithUser(c.Request.Context(), u))
	c.Set(ctxSessionID, sess.ID)
	c.Next()
}

func currentUser(c *gin.Context) *host.User {
	return host.UserFromContext(c.Request.Context())
}

// nonces returns the nonce binder for the logged-in caller
func (h *Handler) nonces(c *gin.Context) host.NonceBinder {
	u := currentUser(c)
	if u == nil {
		return host.NonceBinder{}
	}
	return h.platform.Nonces.For(u.ID, c.GetString(ctxSessionID))
}

func (h *Handler) setSessionCookie(c *gin.Context, id string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeRedirect keeps redirects inside the admin area
func safeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/admin") || strings.HasPrefix(target, "//") {
		return fallback
	}
	return target
}
