package handlers

import (
	"net/http"

	"heating_board/internal/logger"
	"heating_board/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	metrics  http.Handler
}

// NewHandler constructs a new HTTP handler with dependencies.
// metrics may be nil, in which case /metrics is not registered.
func NewHandler(services *service.Service, log *logger.Logger, metrics http.Handler) *Handler {
	return &Handler{services: services, log: log, metrics: metrics}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}

	h.registerAPIRoutes(router)

	// Live monitor stream (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerDeviceRoutes(api)
		h.registerMonitorRoutes(api)
		h.registerCalibrationRoutes(api)
		h.registerWireTestRoutes(api)
		h.registerModelRoutes(api)
		h.registerControlsRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerDeviceRoutes(api *gin.RouterGroup) {
	device := api.Group("/device")
	{
		device.GET("/state", h.getDeviceState)
		// Body example: {"state":"Running"}
		device.POST("/state", h.setDeviceState)
		device.POST("/start", h.startDevice)
		device.POST("/shutdown", h.shutdownDevice)
		device.POST("/idle", h.idleDevice)
		device.GET("/outputs", h.getOutputs)
		device.POST("/outputs/:index", h.setOutput)
		device.POST("/outputs/:index/access", h.setOutputAccess)
		device.POST("/relay", h.setRelay)
	}
}

func (h *Handler) registerMonitorRoutes(api *gin.RouterGroup) {
	api.GET("/monitor", h.getMonitor)
	api.GET("/sessions", h.getSessions)
}

func (h *Handler) registerCalibrationRoutes(api *gin.RouterGroup) {
	calib := api.Group("/calibration")
	{
		calib.POST("/start", h.startCalibration)
		calib.POST("/stop", h.stopCalibration)
		calib.POST("/clear", h.clearCalibration)
		calib.GET("/status", h.getCalibrationStatus)
		calib.GET("/data", h.getCalibrationPage)
		calib.GET("/history", h.listCalibrationHistory)
		calib.GET("/history/:name", h.getCalibrationHistoryFile)
	}
}

func (h *Handler) registerWireTestRoutes(api *gin.RouterGroup) {
	wt := api.Group("/wire-test")
	{
		wt.POST("/start", h.startWireTest)
		wt.POST("/stop", h.stopWireTest)
		wt.GET("/status", h.getWireTestStatus)
	}
}

func (h *Handler) registerModelRoutes(api *gin.RouterGroup) {
	model := api.Group("/model")
	{
		model.GET("/suggest", h.suggestModel)
		model.POST("/save", h.saveModel)
	}
}

func (h *Handler) registerControlsRoutes(api *gin.RouterGroup) {
	api.GET("/controls", h.getControls)
	api.PATCH("/controls", h.updateControls)
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
