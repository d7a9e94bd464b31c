package service

import (
	"time"

	"ventilation_dashboard/internal/models"
)

// SignUpParams is the input for creating an account.
type SignUpParams struct {
	Username  string
	Email     string
	FirstName string
	Password  string
	Role      string
}

// QueryParams selects a metric and time range for a history query.
// Start and End are RFC3339; empty means the default range (last 24h up
// to now).
type QueryParams struct {
	Metric string
	Start  string
	End    string
}

// QueryResult carries the aggregated series plus the window that was
// applied, so the UI can label the chart resolution.
type QueryResult struct {
	Window string             `json:"window"`
	Points []models.DataPoint `json:"points"`
}

// SensorSeries is the fixed recent window served to the per-sensor
// dashboard charts.
type SensorSeries struct {
	Points []models.DataPoint `json:"points"`
	// ShowAlert is set for CO2 when any value in the window exceeds the
	// current threshold.
	ShowAlert   bool      `json:"show_alert,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}
