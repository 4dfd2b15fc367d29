package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"heating_board/internal/service"

	"github.com/gin-gonic/gin"
)

const errUpdateControls = "failed to update controls"

// materialValue accepts a material name ("slate") or its dashboard code (3).
type materialValue string

func (m *materialValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*m = materialValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*m = materialValue(n.String())
	return nil
}

// UpdateControlsRequest is a partial update; omitted fields keep their value.
type UpdateControlsRequest struct {
	// wood | epoxy | concrete | slate | marble | granite, or code 0..5
	FloorMaterial    *materialValue `json:"floor_material,omitempty" swaggertype:"string" example:"slate"`
	FloorThicknessMm *float64       `json:"floor_thickness_mm,omitempty" example:"35"`
	FloorMaxC        *float64       `json:"floor_max_c,omitempty" example:"35"`
	NichromeFinalC   *float64       `json:"nichrome_final_c,omitempty" example:"120"`
	WireTauSec       *float64       `json:"wire_tau_s,omitempty" example:"35"`
	WireKLoss        *float64       `json:"wire_k_loss,omitempty" example:"0.9"`
	WireThermalC     *float64       `json:"wire_c,omitempty" example:"31.5"`
	MaxPowerW        *float64       `json:"max_power_w,omitempty" example:"2400"`
}

func (r UpdateControlsRequest) params() service.ControlsParams {
	p := service.ControlsParams{
		FloorThicknessMm: r.FloorThicknessMm,
		FloorMaxC:        r.FloorMaxC,
		NichromeFinalC:   r.NichromeFinalC,
		WireTauSec:       r.WireTauSec,
		WireKLoss:        r.WireKLoss,
		WireThermalC:     r.WireThermalC,
		MaxPowerW:        r.MaxPowerW,
	}
	if r.FloorMaterial != nil {
		s := string(*r.FloorMaterial)
		p.FloorMaterial = &s
	}
	return p
}

// @Summary      Get controls
// @Tags         controls
// @Produce      json
// @Success      200  {object}  models.Controls
// @Router       /api/v1/controls [get]
func (h *Handler) getControls(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Settings.Controls(c.Request.Context()))
}

// @Summary      Update controls
// @Description  Partial update of the floor, nichrome and wire model settings. The result is persisted.
// @Tags         controls
// @Accept       json
// @Produce      json
// @Param        body  body      UpdateControlsRequest  true  "Fields to change"
// @Success      200   {object}  models.Controls
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/controls [patch]
func (h *Handler) updateControls(c *gin.Context) {
	var req UpdateControlsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctrl, err := h.services.Settings.UpdateControls(c.Request.Context(), req.params())
	if err != nil {
		h.respondError(c, errUpdateControls, "controls_update_failed", err)
		return
	}
	c.JSON(http.StatusOK, ctrl)
}
