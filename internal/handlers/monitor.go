package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Monitor snapshot
// @Description  Advances the simulation to now and returns state, temperatures, electrical readings, outputs and session.
// @Tags         monitor
// @Produce      json
// @Success      200  {object}  models.MonitorSnapshot
// @Router       /api/v1/monitor [get]
func (h *Handler) getMonitor(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitoring.Snapshot(c.Request.Context()))
}

// @Summary      Session history
// @Description  Archived heating runs, newest first.
// @Tags         monitor
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, sessions"
// @Router       /api/v1/sessions [get]
func (h *Handler) getSessions(c *gin.Context) {
	sessions := h.services.Monitoring.Sessions(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"count":    len(sessions),
		"sessions": sessions,
	})
}
