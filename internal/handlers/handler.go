package handlers

import (
	"net/http"

	"github.com/NNikoGG/water-quality-monitoring/internal/feed"
	"github.com/NNikoGG/water-quality-monitoring/internal/logger"
	"github.com/NNikoGG/water-quality-monitoring/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services, the realtime feed, and logging.
type Handler struct {
	services *service.Service
	feed     *feed.Hub
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, hub *feed.Hub, log *logger.Logger) *Handler {
	return &Handler{services: services, feed: hub, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health and metrics endpoints
	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Realtime feed over WebSocket (HTTP upgrade) — same port
	router.GET("/ws", h.wsFeed)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerReadingRoutes(api)
		h.registerPredictionRoutes(api)
	}
}

func (h *Handler) registerReadingRoutes(api *gin.RouterGroup) {
	readings := api.Group("/readings")
	{
		// Write path of the external sensor ingestion system.
		readings.POST("", h.ingestReading)
		readings.GET("", h.getWindow)
		readings.GET("/latest", h.getLatest)
		readings.GET("/summary", h.getSummary)
		readings.GET("/export", h.exportCSV)
	}
}

func (h *Handler) registerPredictionRoutes(api *gin.RouterGroup) {
	predictions := api.Group("/predictions")
	{
		predictions.GET("/forecast", h.getForecast)
		predictions.GET("/corrosion", h.getCorrosion)
		predictions.GET("/quality", h.getQuality)
		predictions.POST("/corrosion/simulate", h.simulateCorrosion)
		predictions.POST("/quality/simulate", h.simulateQuality)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
