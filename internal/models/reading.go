package models

import "time"

// SensorReading is one decoded telemetry sample. Timestamp is the
// ingestion wall-clock, not the device clock.
type SensorReading struct {
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	CO2         float64   `json:"co2"`
	Pressure    float64   `json:"pressure"`
	Location    string    `json:"location"`
	Timestamp   time.Time `json:"timestamp"`
}

// DataPoint is a single value of a time series returned by range queries.
type DataPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}
