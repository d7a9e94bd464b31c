// Package bus provides the MQTT transport: topic definitions, wire
// payloads, and a Publisher abstraction so the command path can be
// exercised in tests without a broker.
package bus

// Topics the backend subscribes to. The device publishes telemetry and
// echoes every accepted command on the matching status topic.
const (
	TopicSensors    = "iot/sensores"
	TopicStatus     = "iot/status"
	TopicMode       = "iot/modo"
	TopicThresholds = "iot/umbrales"
	TopicFanControl = "iot/control"
)

// SubscribeTopics is the fixed set re-subscribed on every (re)connect.
func SubscribeTopics() []string {
	return []string{TopicSensors, TopicStatus, TopicMode, TopicThresholds}
}

// SensorPayload is the telemetry message on TopicSensors. The JSON keys
// are the ones the field devices emit.
type SensorPayload struct {
	Temperatura float64 `json:"temperatura"`
	Humedad     float64 `json:"humedad"`
	CO2         float64 `json:"co2"`
	Presion     float64 `json:"presion"`
}

// StatusPayload carries the fan on/off state on TopicStatus.
type StatusPayload struct {
	Status bool `json:"status"`
}

// ModePayload carries the operating mode on TopicMode, both as a device
// echo and as an operator command.
type ModePayload struct {
	Modo string `json:"modo"`
}

// ThresholdsPayload is a partial thresholds message on TopicThresholds:
// absent keys keep their current value.
type ThresholdsPayload struct {
	CO2         *float64 `json:"co2,omitempty"`
	Temperatura *float64 `json:"temperatura,omitempty"`
}

// FanCommand is the operator command on TopicFanControl.
type FanCommand struct {
	Ventilador bool `json:"ventilador"`
}

// MessageHandler receives every inbound message. Implementations must
// never panic on malformed payloads: decode failures are logged and the
// message dropped.
type MessageHandler func(topic string, payload []byte)

// Publisher sends operator commands to the bus. Publish returns once the
// transport acknowledges the publish attempt (at-most-once to the
// device); it never retries.
type Publisher interface {
	Publish(topic string, payload any) error
}
