package handlers

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterOptions configures NewRouter
type RouterOptions struct {
	// CORSAllowedOrigins enables CORS for the listed origins when non-empty
	CORSAllowedOrigins []string
	// AllowCIDRs and DenyCIDRs restrict which clients reach the login and
	// admin pages
	AllowCIDRs []string
	DenyCIDRs  []string
}

// NewRouter builds the gin engine serving h
func NewRouter(h *Handler, opts RouterOptions) (*gin.Engine, error) {
	r := gin.New()
	r.Use(RequestLogger(h.log), gin.Recovery())

	if len(opts.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", requestIDHeader},
			ExposeHeaders:    []string{"Content-Length", requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, err
	}
	r.StaticFS("/static", http.FS(staticFS))

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/admin/")
	})
	r.GET("/health", h.HealthCheck)

	acl, err := NewAccessList(opts.AllowCIDRs, opts.DenyCIDRs)
	if err != nil {
		return nil, err
	}
	console := r.Group("/")
	if acl != nil {
		console.Use(acl.Middleware())
	}
	console.GET("/login", h.LoginPage)
	console.POST("/login", h.Login)
	console.POST("/logout", h.requireLogin, h.Logout)

	admin := console.Group("/admin", h.requireLogin)
	{
		admin.GET("/", h.Dashboard)
		admin.GET("/options-general", h.OptionsPage)
		admin.POST("/options-general", h.OptionsPage)
		admin.POST("/options", h.SaveOptions)
		admin.GET("/update-core", h.UpdateCore)
	}

	return r, nil
}
