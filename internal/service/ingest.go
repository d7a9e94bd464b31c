package service

import (
	"encoding/json"
	"time"

	"ventilation_dashboard/internal/bus"
	"ventilation_dashboard/internal/hub"
	"ventilation_dashboard/internal/logger"
	"ventilation_dashboard/internal/models"
	"ventilation_dashboard/internal/repository"
	"ventilation_dashboard/internal/state"
)

const defaultLocation = "sensor1"

// IngestService decodes inbound bus messages and dispatches them:
// telemetry fans out to the time-series writer, the live clients, and
// the alert evaluator; state topics update the store and re-broadcast.
// Per-message isolation: a decode or processing failure on one message
// never affects subsequent ones.
type IngestService struct {
	state    *state.Store
	hub      Broadcaster
	readings repository.Readings
	alerts   Alerts
	location string
	log      *logger.Logger

	// now is stubbed in tests.
	now func() time.Time
}

func NewIngestService(st *state.Store, b Broadcaster, readings repository.Readings, alerts Alerts, location string, log *logger.Logger) *IngestService {
	if location == "" {
		location = defaultLocation
	}
	return &IngestService{
		state:    st,
		hub:      b,
		readings: readings,
		alerts:   alerts,
		location: location,
		log:      log,
		now:      time.Now,
	}
}

// Handle processes one inbound message. Malformed payloads are logged
// and dropped; nothing here ever panics or blocks on I/O.
func (s *IngestService) Handle(topic string, payload []byte) {
	switch topic {
	case bus.TopicSensors:
		s.handleSensors(payload)
	case bus.TopicStatus:
		var p bus.StatusPayload
		if !s.decode(topic, payload, &p) {
			return
		}
		s.state.ApplyFanStatus(p.Status)
		s.hub.Broadcast(hub.MsgFanStatus, map[string]any{"status": p.Status})
	case bus.TopicMode:
		var p bus.ModePayload
		if !s.decode(topic, payload, &p) {
			return
		}
		if p.Modo != models.ModeAutomatic && p.Modo != models.ModeManual {
			s.log.Warnw("mqtt_invalid_mode", "topic", topic, "mode", p.Modo)
			return
		}
		s.state.ApplyFanMode(p.Modo)
		s.hub.Broadcast(hub.MsgMode, map[string]any{"mode": p.Modo})
	case bus.TopicThresholds:
		var p bus.ThresholdsPayload
		if !s.decode(topic, payload, &p) {
			return
		}
		// Partial merge; the broadcast carries the full merged object.
		st := s.state.ApplyThresholds(models.ThresholdUpdate{CO2: p.CO2, Temperature: p.Temperatura})
		s.hub.Broadcast(hub.MsgThresholds, map[string]any{
			"co2":         st.Thresholds.CO2,
			"temperatura": st.Thresholds.Temperature,
		})
	default:
		s.log.Debugw("mqtt_topic_ignored", "topic", topic)
	}
}

func (s *IngestService) handleSensors(payload []byte) {
	var p bus.SensorPayload
	if !s.decode(bus.TopicSensors, payload, &p) {
		return
	}

	reading := models.SensorReading{
		Temperature: p.Temperatura,
		Humidity:    p.Humedad,
		CO2:         p.CO2,
		Pressure:    p.Presion,
		Location:    s.location,
		Timestamp:   s.now().UTC(),
	}

	// Fire and forget: the writer logs its own failures.
	s.readings.Write(reading)

	ts := reading.Timestamp.Format(time.RFC3339)
	s.hub.Broadcast(hub.MsgCO2, map[string]any{"value": reading.CO2, "time": ts})
	s.hub.Broadcast(hub.MsgHumidity, map[string]any{"value": reading.Humidity, "time": ts})
	s.hub.Broadcast(hub.MsgPressure, map[string]any{"value": reading.Pressure, "time": ts})
	s.hub.Broadcast(hub.MsgTemperature, map[string]any{"value": reading.Temperature, "time": ts})

	s.alerts.Evaluate(reading.CO2)
}

// decode unmarshals payload into dst, logging and dropping on failure.
func (s *IngestService) decode(topic string, payload []byte, dst any) bool {
	if err := json.Unmarshal(payload, dst); err != nil {
		s.log.Warnw("mqtt_decode_failed", "topic", topic, "err", err)
		return false
	}
	return true
}
