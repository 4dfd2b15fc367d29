package handlers

import (
	"errors"
	"io"
	"net/http"

	"heating_board/internal/simulation"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusStarted  = "started"
	statusStopped  = "stopped"
	statusCleared  = "cleared"
	statusShutdown = "shutdown"
	statusIdle     = "idle"
	statusSaved    = "saved"

	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		if httpCode >= http.StatusInternalServerError {
			h.log.Errorw(logKey, fields...)
		} else {
			h.log.Infow(logKey, fields...)
		}
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondError maps engine sentinels to status codes. Client errors carry the error text;
// server errors carry only userMsg.
func (h *Handler) respondError(c *gin.Context, userMsg, logKey string, err error, kv ...interface{}) {
	code := statusFor(err)
	msg := userMsg
	if code < http.StatusInternalServerError {
		msg = err.Error()
	}
	h.logAndJSONError(c, code, msg, logKey, err, kv...)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, simulation.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, simulation.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, simulation.ErrAlreadyRunning):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// bindOptionalJSON decodes a JSON body when one is present. An empty body leaves dst untouched.
func bindOptionalJSON(c *gin.Context, dst interface{}) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}
