package service

import (
	"context"
	"time"

	"ventilation_dashboard/internal/logger"
	"ventilation_dashboard/internal/repository"
	"ventilation_dashboard/internal/state"
)

const recipientLookupTimeout = 5 * time.Second

// AlertService watches CO2 readings against the configured threshold.
// The store's latch gives hysteresis: one notification batch per
// threshold-crossing episode, no matter how high the value climbs while
// the episode lasts. The all-clear transition is silent.
type AlertService struct {
	state    *state.Store
	users    repository.Authorization
	notifier Notifier
	log      *logger.Logger
}

func NewAlertService(st *state.Store, users repository.Authorization, n Notifier, log *logger.Logger) *AlertService {
	return &AlertService{state: st, users: users, notifier: n, log: log}
}

// Evaluate runs on every sensor reading. Cheap when nothing crosses:
// one snapshot read and a comparison.
func (s *AlertService) Evaluate(co2 float64) {
	threshold := s.state.Snapshot().Thresholds.CO2

	if co2 <= threshold {
		// Latch clears silently once the level drops back.
		s.state.SetCO2Alert(false)
		return
	}

	// SetCO2Alert reports whether this call actually latched, so only
	// the reading that crosses the threshold triggers the batch.
	if !s.state.SetCO2Alert(true) {
		return
	}
	s.notifyAll(co2)
}

// notifyAll mails every registered recipient, one goroutine each.
// Individual failures are logged and never block the other recipients.
func (s *AlertService) notifyAll(co2 float64) {
	ctx, cancel := context.WithTimeout(context.Background(), recipientLookupTimeout)
	defer cancel()

	recipients, err := s.users.ListRecipients(ctx)
	if err != nil {
		s.log.Errorw("alert_recipients_lookup_failed", "err", err)
		return
	}
	s.log.Infow("co2_alert_triggered", "co2", co2, "recipients", len(recipients))

	for _, u := range recipients {
		u := u
		go func() {
			name := u.FirstName
			if name == "" {
				name = u.Username
			}
			if err := s.notifier.SendCO2Alert(u.Email, name, co2); err != nil {
				s.log.Errorw("co2_alert_send_failed", "email", u.Email, "err", err)
			}
		}()
	}
}
