package handlers

import (
	"net/http"

	"heating_board/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	errModelSuggest = "failed to fit thermal model"
	errModelSave    = "failed to save thermal model"
)

// @Summary      Suggest thermal model
// @Description  Fits tau/k/C to the live or newest archived run. When the data is insufficient the current controls are returned with fitted=false.
// @Tags         model
// @Produce      json
// @Success      200  {object}  models.ModelSuggestion
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/model/suggest [get]
func (h *Handler) suggestModel(c *gin.Context) {
	sug, err := h.services.Model.Suggest(c.Request.Context())
	if err != nil {
		h.respondError(c, errModelSuggest, "model_suggest_failed", err)
		return
	}
	c.JSON(http.StatusOK, sug)
}

// @Summary      Save thermal model
// @Description  Stores finite positive wire_tau, wire_k_loss and wire_c into the board controls.
// @Tags         model
// @Accept       json
// @Produce      json
// @Param        body  body      models.ModelEstimate  true  "Estimate"
// @Success      200   {object}  map[string]interface{}  "status, controls"
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/model/save [post]
func (h *Handler) saveModel(c *gin.Context) {
	var est models.ModelEstimate
	if err := c.ShouldBindJSON(&est); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctrl, err := h.services.Model.Save(c.Request.Context(), est)
	if err != nil {
		h.respondError(c, errModelSave, "model_save_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSaved, "controls": ctrl})
}
