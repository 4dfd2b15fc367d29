package handlers

import (
	"net/http"
	"strconv"

	"heating_board/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errCalibStart   = "failed to start calibration"
	errCalibStop    = "failed to stop calibration"
	errCalibClear   = "failed to clear calibration"
	errCalibPage    = "failed to load calibration data"
	errCalibHistory = "failed to load calibration history"
)

// CalibrationStartRequest is the body of POST /calibration/start. Every field is optional.
type CalibrationStartRequest struct {
	// model | ntc | floor (default model)
	Mode       string  `json:"mode" example:"model"`
	IntervalMs int     `json:"interval_ms" example:"500"`
	MaxSamples int     `json:"max_samples" example:"1200"`
	TargetC    float64 `json:"target_c" example:"120"`
	WireIndex  int     `json:"wire_index" example:"1"`
	// Unix seconds; 0 uses the server clock
	Epoch int64 `json:"epoch" example:"1735689600"`
}

// CalibrationStopRequest is the optional body of POST /calibration/stop.
type CalibrationStopRequest struct {
	Epoch int64 `json:"epoch" example:"1735689720"`
}

// @Summary      Start calibration
// @Description  Starts a recorder run. Mode "model" also drives a wire test on wire_index toward target_c.
// @Tags         calibration
// @Accept       json
// @Produce      json
// @Param        body  body      CalibrationStartRequest  false  "Run parameters"
// @Success      200   {object}  map[string]interface{}  "status, meta"
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/calibration/start [post]
func (h *Handler) startCalibration(c *gin.Context) {
	var req CalibrationStartRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	meta, err := h.services.Calibration.Start(c.Request.Context(), service.CalibrationParams{
		Mode:       req.Mode,
		IntervalMs: req.IntervalMs,
		MaxSamples: req.MaxSamples,
		TargetC:    req.TargetC,
		WireIndex:  req.WireIndex,
		Epoch:      req.Epoch,
	})
	if err != nil {
		h.respondError(c, errCalibStart, "calibration_start_failed", err, "mode", req.Mode)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusStarted, "meta": meta})
}

// @Summary      Stop calibration
// @Description  Archives the live run. Stopping an idle recorder returns the current meta unchanged.
// @Tags         calibration
// @Accept       json
// @Produce      json
// @Param        body  body      CalibrationStopRequest  false  "Stop epoch"
// @Success      200   {object}  map[string]interface{}  "status, meta"
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/calibration/stop [post]
func (h *Handler) stopCalibration(c *gin.Context) {
	var req CalibrationStopRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	meta, err := h.services.Calibration.Stop(c.Request.Context(), req.Epoch)
	if err != nil {
		h.respondError(c, errCalibStop, "calibration_stop_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusStopped, "meta": meta})
}

// @Summary      Clear calibration
// @Description  Stops any run, empties the buffer and deletes the whole calibration history.
// @Tags         calibration
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/calibration/clear [post]
func (h *Handler) clearCalibration(c *gin.Context) {
	if err := h.services.Calibration.Clear(c.Request.Context()); err != nil {
		h.respondError(c, errCalibClear, "calibration_clear_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusCleared})
}

// @Summary      Calibration status
// @Tags         calibration
// @Produce      json
// @Success      200  {object}  models.CalibrationMeta
// @Router       /api/v1/calibration/status [get]
func (h *Handler) getCalibrationStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Calibration.Status(c.Request.Context()))
}

// @Summary      Calibration samples
// @Description  Returns samples[offset : offset+count] of the live buffer.
// @Tags         calibration
// @Produce      json
// @Param        offset  query     int  false  "First sample"  default(0)
// @Param        count   query     int  false  "Page size"     default(200)
// @Success      200     {object}  models.CalibrationPage
// @Failure      400     {object}  map[string]string
// @Router       /api/v1/calibration/data [get]
func (h *Handler) getCalibrationPage(c *gin.Context) {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'offset'"})
		return
	}
	count, err := strconv.Atoi(c.DefaultQuery("count", strconv.Itoa(service.DefaultPageCount)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'count'"})
		return
	}
	page, err := h.services.Calibration.Page(c.Request.Context(), offset, count)
	if err != nil {
		h.respondError(c, errCalibPage, "calibration_page_failed", err, "offset", offset, "count", count)
		return
	}
	c.JSON(http.StatusOK, page)
}

// @Summary      Calibration history
// @Description  Archived runs, newest first.
// @Tags         calibration
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, items"
// @Router       /api/v1/calibration/history [get]
func (h *Handler) listCalibrationHistory(c *gin.Context) {
	items := h.services.Calibration.HistoryList(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"count": len(items),
		"items": items,
	})
}

// @Summary      Calibration history file
// @Tags         calibration
// @Produce      json
// @Param        name  path      string  true  "Run name"  example(calib_1735689600_0)
// @Success      200   {object}  models.CalibrationHistoryEntry
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/calibration/history/{name} [get]
func (h *Handler) getCalibrationHistoryFile(c *gin.Context) {
	name := c.Param("name")
	entry, err := h.services.Calibration.HistoryFile(c.Request.Context(), name)
	if err != nil {
		h.respondError(c, errCalibHistory, "calibration_history_failed", err, "name", name)
		return
	}
	c.JSON(http.StatusOK, entry)
}
