// Package state owns the process-wide device state. All mutation is
// funneled through the Store API so observers never see a partial write.
package state

import (
	"sync"

	"ventilation_dashboard/internal/models"
)

// Startup defaults, matching what the device assumes after power-on.
const (
	defaultCO2Threshold  = 800.0
	defaultTempThreshold = 25.0
)

// Store holds the single DeviceState instance. Every apply operation is a
// total, unconditional replacement of the targeted field(s), so replaying
// the same update (optimistic apply followed by the bus echo) is safe.
type Store struct {
	mu sync.RWMutex
	s  models.DeviceState
}

func NewStore() *Store {
	return &Store{
		s: models.DeviceState{
			FanStatus: false,
			FanMode:   models.ModeAutomatic,
			Thresholds: models.Thresholds{
				CO2:         defaultCO2Threshold,
				Temperature: defaultTempThreshold,
			},
			ButtonStatus: models.ButtonStatus{OnStatus: false, OffStatus: true},
		},
	}
}

// Snapshot returns a copy of the full current state.
func (st *Store) Snapshot() models.DeviceState {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s
}

// ApplyFanStatus replaces the fan status and returns the new snapshot.
func (st *Store) ApplyFanStatus(on bool) models.DeviceState {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.FanStatus = on
	return st.s
}

// ApplyFanMode replaces the fan mode and returns the new snapshot.
// Callers validate the mode before reaching the store.
func (st *Store) ApplyFanMode(mode string) models.DeviceState {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.FanMode = mode
	return st.s
}

// ApplyThresholds merges the provided fields into the current thresholds.
// Fields left nil in the update keep their current value.
func (st *Store) ApplyThresholds(u models.ThresholdUpdate) models.DeviceState {
	st.mu.Lock()
	defer st.mu.Unlock()
	if u.CO2 != nil {
		st.s.Thresholds.CO2 = *u.CO2
	}
	if u.Temperature != nil {
		st.s.Thresholds.Temperature = *u.Temperature
	}
	return st.s
}

// ApplyButtonStatus replaces the UI button mirror. No invariant ties the
// two flags together; the value is passed through as reported.
func (st *Store) ApplyButtonStatus(b models.ButtonStatus) models.DeviceState {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.ButtonStatus = b
	return st.s
}

// SetCO2Alert sets the hysteresis latch and reports whether the value
// actually transitioned. The check-and-set is atomic so two concurrent
// readings crossing the threshold trigger exactly one alert episode.
func (st *Store) SetCO2Alert(active bool) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s.CO2AlertActive == active {
		return false
	}
	st.s.CO2AlertActive = active
	return true
}
