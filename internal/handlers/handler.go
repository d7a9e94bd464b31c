package handlers

import (
	"ventilation_dashboard/internal/hub"
	"ventilation_dashboard/internal/logger"
	"ventilation_dashboard/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services, the live hub, and logging.
type Handler struct {
	services *service.Service
	hub      *hub.Hub
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, h *hub.Hub, log *logger.Logger) *Handler {
	return &Handler{services: services, hub: h, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// WebSocket upgrade for the live dashboard feed — same port. The
	// browser WebSocket API cannot set an Authorization header, so this
	// endpoint stays outside the protected group.
	router.GET("/ws", h.wsConnect)

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
		h.registerControlRoutes(api)
		h.registerSensorRoutes(api)
	}
}

func (h *Handler) registerControlRoutes(api *gin.RouterGroup) {
	api.POST("/fan", h.setFan)
	api.GET("/fan/status", h.getFanStatus)
	api.POST("/mode", h.setMode)
	api.POST("/thresholds", h.setThresholds)
	api.GET("/state", h.getState)
}

func (h *Handler) registerSensorRoutes(api *gin.RouterGroup) {
	api.GET("/sensors/:metric", h.getSensorSeries)
	api.POST("/query", h.querySeries)
}
