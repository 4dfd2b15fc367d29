package handlers

import (
	"net/http"

	"heating_board/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errWireTestStart = "failed to start wire test"
	errWireTestStop  = "failed to stop wire test"
)

// WireTestStartRequest is the body of POST /wire-test/start. Zero fields take defaults.
type WireTestStartRequest struct {
	TargetC   float64 `json:"target_c" example:"120"`
	WireIndex int     `json:"wire_index" example:"1"`
}

// @Summary      Start wire test
// @Tags         wire-test
// @Accept       json
// @Produce      json
// @Param        body  body      WireTestStartRequest  false  "Target and wire"
// @Success      200   {object}  models.WireTestStatus
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/wire-test/start [post]
func (h *Handler) startWireTest(c *gin.Context) {
	var req WireTestStartRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	st, err := h.services.WireTest.Start(c.Request.Context(), service.WireTestParams{
		TargetC:   req.TargetC,
		WireIndex: req.WireIndex,
	})
	if err != nil {
		h.respondError(c, errWireTestStart, "wire_test_start_failed", err, "wire", req.WireIndex)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Stop wire test
// @Tags         wire-test
// @Produce      json
// @Success      200  {object}  models.WireTestStatus
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/wire-test/stop [post]
func (h *Handler) stopWireTest(c *gin.Context) {
	st, err := h.services.WireTest.Stop(c.Request.Context())
	if err != nil {
		h.respondError(c, errWireTestStop, "wire_test_stop_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Wire test status
// @Description  Temperatures are null while no test runs.
// @Tags         wire-test
// @Produce      json
// @Success      200  {object}  models.WireTestStatus
// @Router       /api/v1/wire-test/status [get]
func (h *Handler) getWireTestStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.WireTest.Status(c.Request.Context()))
}
