package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"heating_board/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errSetState    = "failed to change device state"
	errStartDevice = "failed to start device"
	errSetOutput   = "failed to switch output"
	errSetRelay    = "failed to switch relay"
)

// SetStateRequest is the body of POST /device/state.
type SetStateRequest struct {
	// Idle | Running | Shutdown | Error (case-insensitive)
	State string `json:"state" binding:"required" example:"Running"`
}

// SwitchRequest is the body of the output and relay switches.
type SwitchRequest struct {
	On *bool `json:"on" binding:"required" example:"true"`
}

// AccessRequest is the body of POST /device/outputs/{index}/access.
type AccessRequest struct {
	Allowed *bool `json:"allowed" binding:"required" example:"true"`
}

// respondWithState writes status plus the current device state.
func (h *Handler) respondWithState(c *gin.Context, status string) {
	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"state":  h.services.Device.State(c.Request.Context()),
	})
}

func outputIndex(c *gin.Context) (int, error) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return 0, fmt.Errorf("invalid output index %q", c.Param("index"))
	}
	return idx, nil
}

// @Summary      Get device state
// @Tags         device
// @Produce      json
// @Success      200  {object}  map[string]string  "state"
// @Router       /api/v1/device/state [get]
func (h *Handler) getDeviceState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.services.Device.State(c.Request.Context())})
}

// @Summary      Set device state
// @Description  Setting the current state is a no-op. Leaving Running archives the session; Shutdown releases every output.
// @Tags         device
// @Accept       json
// @Produce      json
// @Param        body  body      SetStateRequest  true  "Target state"
// @Success      200   {object}  map[string]string  "state"
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/device/state [post]
func (h *Handler) setDeviceState(c *gin.Context) {
	var req SetStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	st, err := h.services.Device.SetState(c.Request.Context(), req.State)
	if err != nil {
		h.respondError(c, errSetState, "device_set_state_failed", err, "state", req.State)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": st})
}

// @Summary      Start device
// @Description  Enters Running, closes the relay and turns on odd allowed outputs if none are on.
// @Tags         device
// @Produce      json
// @Success      200  {object}  map[string]string  "status, state"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/device/start [post]
func (h *Handler) startDevice(c *gin.Context) {
	if err := h.services.Device.Start(c.Request.Context()); err != nil {
		h.respondError(c, errStartDevice, "device_start_failed", err)
		return
	}
	h.respondWithState(c, statusStarted)
}

// @Summary      Shut down device
// @Tags         device
// @Produce      json
// @Success      200  {object}  map[string]string  "status, state"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/device/shutdown [post]
func (h *Handler) shutdownDevice(c *gin.Context) {
	if err := h.services.Device.Shutdown(c.Request.Context()); err != nil {
		h.respondError(c, errSetState, "device_shutdown_failed", err)
		return
	}
	h.respondWithState(c, statusShutdown)
}

// @Summary      Abort to idle
// @Tags         device
// @Produce      json
// @Success      200  {object}  map[string]string  "status, state"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/device/idle [post]
func (h *Handler) idleDevice(c *gin.Context) {
	if err := h.services.Device.Idle(c.Request.Context()); err != nil {
		h.respondError(c, errSetState, "device_idle_failed", err)
		return
	}
	h.respondWithState(c, statusIdle)
}

// @Summary      List outputs
// @Tags         device
// @Produce      json
// @Success      200  {array}  models.OutputChannel
// @Router       /api/v1/device/outputs [get]
func (h *Handler) getOutputs(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Device.Outputs(c.Request.Context()))
}

// @Summary      Switch an output
// @Tags         device
// @Accept       json
// @Produce      json
// @Param        index  path      int            true  "Output index (1..10)"
// @Param        body   body      SwitchRequest  true  "Switch payload"
// @Success      200    {array}   models.OutputChannel
// @Failure      400    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/device/outputs/{index} [post]
func (h *Handler) setOutput(c *gin.Context) {
	idx, err := outputIndex(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req SwitchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Device.SetOutput(ctx, service.OutputParams{Index: idx, On: *req.On}); err != nil {
		h.respondError(c, errSetOutput, "output_set_failed", err, "index", idx)
		return
	}
	c.JSON(http.StatusOK, h.services.Device.Outputs(ctx))
}

// @Summary      Set output access
// @Description  The flag is advisory: a blocked output can still be energized.
// @Tags         device
// @Accept       json
// @Produce      json
// @Param        index  path      int            true  "Output index (1..10)"
// @Param        body   body      AccessRequest  true  "Access payload"
// @Success      200    {array}   models.OutputChannel
// @Failure      400    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/device/outputs/{index}/access [post]
func (h *Handler) setOutputAccess(c *gin.Context) {
	idx, err := outputIndex(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req AccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Device.SetOutputAccess(ctx, service.OutputParams{Index: idx, On: *req.Allowed}); err != nil {
		h.respondError(c, errSetOutput, "output_access_failed", err, "index", idx)
		return
	}
	c.JSON(http.StatusOK, h.services.Device.Outputs(ctx))
}

// @Summary      Switch the relay
// @Tags         device
// @Accept       json
// @Produce      json
// @Param        body  body      SwitchRequest  true  "Switch payload"
// @Success      200   {object}  map[string]bool  "relay"
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/device/relay [post]
func (h *Handler) setRelay(c *gin.Context) {
	var req SwitchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Device.SetRelay(c.Request.Context(), *req.On); err != nil {
		h.respondError(c, errSetRelay, "relay_set_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"relay": *req.On})
}
