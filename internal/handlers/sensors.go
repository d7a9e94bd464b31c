package handlers

import (
	"errors"
	"net/http"

	"ventilation_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

const errQuerySeries = "failed to query series"

// Request DTO for the free-form range query.
type queryRequest struct {
	Metric string `json:"metric" binding:"required"` // co2 | humidity | pressure | temperature
	Start  string `json:"start,omitempty"`           // RFC3339, default -24h
	End    string `json:"end,omitempty"`             // RFC3339, default now
}

// @Summary      Recent series for one sensor chart
// @Tags         sensors
// @Produce      json
// @Param        metric  path  string  true  "co2 | humidity | pressure | temperature"
// @Success      200  {object}  service.SensorSeries
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/sensors/{metric} [get]
// @Security     BearerAuth
func (h *Handler) getSensorSeries(c *gin.Context) {
	metric := c.Param("metric")
	res, err := h.services.History.SensorSeries(c.Request.Context(), metric)
	if err != nil {
		if errors.Is(err, service.ErrUnknownMetric) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusBadGateway, errQuerySeries, "sensor_series_failed", err, "metric", metric)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary      Range query with dynamic aggregation window
// @Tags         sensors
// @Accept       json
// @Produce      json
// @Param        body  body  queryRequest  true  "Metric and optional RFC3339 range"
// @Success      200  {object}  service.QueryResult
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/query [post]
// @Security     BearerAuth
func (h *Handler) querySeries(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	res, err := h.services.History.Query(c.Request.Context(), service.QueryParams{
		Metric: req.Metric,
		Start:  req.Start,
		End:    req.End,
	})
	if err != nil {
		if errors.Is(err, service.ErrUnknownMetric) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusBadGateway, errQuerySeries, "series_query_failed", err, "metric", req.Metric)
		return
	}
	c.JSON(http.StatusOK, res)
}
