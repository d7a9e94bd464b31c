package handlers

import (
	"errors"
	"net/http"

	"ventilation_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK  = "ok"
	statusSet = "set"

	errSetFan        = "failed to send fan command"
	errSetMode       = "failed to send mode command"
	errSetThresholds = "failed to send thresholds command"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Respond with a status and the current device state.
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, extra gin.H) {
	resp := gin.H{"status": status, "state": h.services.Monitoring.State()}
	for k, v := range extra {
		resp[k] = v
	}
	c.JSON(http.StatusOK, resp)
}

// Request DTO for switching the fan. Pointer so false binds.
type fanRequest struct {
	On *bool `json:"on" binding:"required"`
}

// Request DTO for switching the operating mode.
type modeRequest struct {
	Mode string `json:"mode" binding:"required"` // automatico | manual
}

// Request DTO for replacing the alert thresholds. Both values required.
type thresholdsRequest struct {
	CO2         *float64 `json:"co2" binding:"required"`
	Temperature *float64 `json:"temperatura" binding:"required"`
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

// @Summary      Switch the fan on or off
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        body  body  object{on=bool}  true  "Fan command"
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/fan [post]
// @Security     BearerAuth
func (h *Handler) setFan(c *gin.Context) {
	var req fanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	if err := h.services.Control.SetFan(c.Request.Context(), *req.On); err != nil {
		h.logAndJSONError(c, http.StatusBadGateway, errSetFan, "fan_command_failed", err, "on", *req.On)
		return
	}
	h.respondWithStatusAndState(c, statusSet, gin.H{"on": *req.On})
}

// @Summary      Switch operating mode
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        body  body  object{mode=string}  true  "automatico or manual"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/mode [post]
// @Security     BearerAuth
func (h *Handler) setMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	if err := h.services.Control.SetMode(c.Request.Context(), req.Mode); err != nil {
		if errors.Is(err, service.ErrInvalidMode) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusBadGateway, errSetMode, "mode_command_failed", err, "mode", req.Mode)
		return
	}
	h.respondWithStatusAndState(c, statusSet, gin.H{"mode": req.Mode})
}

// @Summary      Replace alert thresholds
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        body  body  object{co2=number,temperatura=number}  true  "Threshold pair"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/thresholds [post]
// @Security     BearerAuth
func (h *Handler) setThresholds(c *gin.Context) {
	var req thresholdsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	if err := h.services.Control.SetThresholds(c.Request.Context(), *req.CO2, *req.Temperature); err != nil {
		if errors.Is(err, service.ErrInvalidThresholds) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusBadGateway, errSetThresholds, "thresholds_command_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusSet, gin.H{})
}

// @Summary      Current fan status
// @Tags         control
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/fan/status [get]
// @Security     BearerAuth
func (h *Handler) getFanStatus(c *gin.Context) {
	st := h.services.Monitoring.State()
	c.JSON(http.StatusOK, gin.H{"status": st.FanStatus, "mode": st.FanMode})
}

// @Summary      Full device state snapshot
// @Tags         control
// @Produce      json
// @Success      200  {object}  models.DeviceState
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitoring.State())
}
