package handlers

import (
	"net/http"
	"time"

	"versioninfo/database"
	"versioninfo/version"

	"github.com/gin-gonic/gin"
)

// HealthCheck health endpoint
func (h *Handler) HealthCheck(c *gin.Context) {
	dbHealthy := database.Up(c.Request.Context(), h.db)

	health := gin.H{
		"status":               "healthy",
		"timestamp":            time.Now().Unix(),
		"version":              version.GetFullVersion(),
		"db_healthy":           dbHealthy,
		"sqlite_busy_errors":   database.SQLiteBusyErrorsTotal(),
		"sqlite_locked_errors": database.SQLiteLockedErrorsTotal(),
		"registered_hooks":     h.hookCount(),
	}

	if !dbHealthy {
		health["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) hookCount() int {
	hk := h.platform.Hooks
	return hk.PluginsLoaded.Len() + hk.AdminInit.Len() + hk.AdminMenu.Len() +
		hk.AdminBarMenu.Len() + hk.DashboardSetup.Len() + hk.UpdateFooter.Len()
}
