package models

// Fan operating modes. The wire values are the ones the device firmware
// speaks, so they are kept verbatim.
const (
	ModeAutomatic = "automatico"
	ModeManual    = "manual"
)

// Thresholds holds the alert limits for CO2 (ppm) and temperature (°C).
type Thresholds struct {
	CO2         float64 `json:"co2"`
	Temperature float64 `json:"temperatura"`
}

// ThresholdUpdate is a partial thresholds payload: only non-nil fields
// overwrite the current value.
type ThresholdUpdate struct {
	CO2         *float64 `json:"co2,omitempty"`
	Temperature *float64 `json:"temperatura,omitempty"`
}

// ButtonStatus mirrors the on/off buttons of the dashboard UI. It is a
// shared last-writer-wins value across all open tabs, not a validated
// hardware state: both fields may be true, or both false.
type ButtonStatus struct {
	OnStatus  bool `json:"onStatus"`
	OffStatus bool `json:"offStatus"`
}

// DeviceState is the authoritative in-memory view of the device.
// It lives for the process lifetime and is rebuilt from the next
// incoming message after a restart.
type DeviceState struct {
	FanStatus      bool         `json:"fan_status"`
	FanMode        string       `json:"fan_mode"`
	Thresholds     Thresholds   `json:"thresholds"`
	ButtonStatus   ButtonStatus `json:"button_status"`
	CO2AlertActive bool         `json:"co2_alert_active"`
}
