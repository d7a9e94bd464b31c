package service

import (
	"ventilation_dashboard/internal/models"
	"ventilation_dashboard/internal/state"
)

// MonitoringService exposes the device state snapshot to the HTTP layer.
type MonitoringService struct {
	state *state.Store
}

func NewMonitoringService(st *state.Store) *MonitoringService {
	return &MonitoringService{state: st}
}

// State returns the current snapshot. Total: the store always has a
// value, rebuilt from inbound messages after a restart.
func (s *MonitoringService) State() models.DeviceState {
	return s.state.Snapshot()
}
