package service

import (
	"context"
	"errors"
	"fmt"

	"ventilation_dashboard/internal/bus"
	"ventilation_dashboard/internal/hub"
	"ventilation_dashboard/internal/logger"
	"ventilation_dashboard/internal/models"
	"ventilation_dashboard/internal/state"
)

// Validation errors, surfaced to the operator as 400s.
var (
	ErrInvalidMode       = errors.New(`invalid mode: must be "automatico" or "manual"`)
	ErrInvalidThresholds = errors.New("invalid thresholds: co2 and temperatura must be positive numbers")
)

// ControlService publishes operator commands and applies the optimistic
// local update. The device later echoes the accepted state on its status
// topic and the ingest path applies it again; both applications are
// unconditional replacements, so the double apply is harmless.
type ControlService struct {
	publisher bus.Publisher
	state     *state.Store
	hub       Broadcaster
	log       *logger.Logger
}

func NewControlService(p bus.Publisher, st *state.Store, b Broadcaster, log *logger.Logger) *ControlService {
	return &ControlService{publisher: p, state: st, hub: b, log: log}
}

// SetFan turns the fan on or off. On publish success the fan status and
// the UI button mirror are updated and broadcast immediately.
func (s *ControlService) SetFan(_ context.Context, on bool) error {
	if err := s.publisher.Publish(bus.TopicFanControl, bus.FanCommand{Ventilador: on}); err != nil {
		s.log.Errorw("fan_command_publish_failed", "on", on, "err", err)
		return fmt.Errorf("send fan command: %w", err)
	}

	s.state.ApplyFanStatus(on)
	s.state.ApplyButtonStatus(models.ButtonStatus{OnStatus: on, OffStatus: !on})

	s.hub.Broadcast(hub.MsgFanStatus, map[string]any{"status": on})
	s.hub.Broadcast(hub.MsgButtonStatus, map[string]any{"onStatus": on, "offStatus": !on})
	return nil
}

// SetMode switches between automatic and manual operation.
func (s *ControlService) SetMode(_ context.Context, mode string) error {
	if mode != models.ModeAutomatic && mode != models.ModeManual {
		return ErrInvalidMode
	}
	if err := s.publisher.Publish(bus.TopicMode, bus.ModePayload{Modo: mode}); err != nil {
		s.log.Errorw("mode_command_publish_failed", "mode", mode, "err", err)
		return fmt.Errorf("send mode command: %w", err)
	}

	s.state.ApplyFanMode(mode)
	s.hub.Broadcast(hub.MsgMode, map[string]any{"mode": mode})
	return nil
}

// SetThresholds replaces both alert limits. Operator updates always
// carry the full pair; partial updates only arrive from the bus.
func (s *ControlService) SetThresholds(_ context.Context, co2, temperature float64) error {
	if co2 <= 0 || temperature <= 0 {
		return ErrInvalidThresholds
	}
	payload := bus.ThresholdsPayload{CO2: &co2, Temperatura: &temperature}
	if err := s.publisher.Publish(bus.TopicThresholds, payload); err != nil {
		s.log.Errorw("thresholds_command_publish_failed", "co2", co2, "temperatura", temperature, "err", err)
		return fmt.Errorf("send thresholds command: %w", err)
	}

	st := s.state.ApplyThresholds(models.ThresholdUpdate{CO2: &co2, Temperature: &temperature})
	s.hub.Broadcast(hub.MsgThresholds, map[string]any{
		"co2":         st.Thresholds.CO2,
		"temperatura": st.Thresholds.Temperature,
	})
	return nil
}
