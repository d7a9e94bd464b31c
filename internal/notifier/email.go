// Package notifier delivers user-facing email: CO2 alerts and account
// welcome messages.
package notifier

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Email sends through an SMTP relay via gomail. One dialer is reused for
// every message.
type Email struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmail(cfg Config) *Email {
	return &Email{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendCO2Alert mails one recipient about an over-threshold CO2 reading.
func (e *Email) SendCO2Alert(to, name string, ppm float64) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", e.from, "Sensor Alerts - Ventilation Dashboard")
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Alert: elevated CO2 level")
	m.SetBody("text/html", fmt.Sprintf(
		`<h2>Hello, %s</h2>
<p>A carbon dioxide (CO2) level above the configured safety threshold has been detected.</p>
<p style="font-size: 18px;"><b>Recorded value:</b> <span style="color: #d93025; font-weight: bold;">%.2f PPM</span></p>
<p>Please take precautions, such as ventilating the area.</p>`,
		name, ppm))
	if err := e.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send co2 alert to %s: %w", to, err)
	}
	return nil
}

// SendWelcome mails a newly created account its first-login instructions.
func (e *Email) SendWelcome(to, name, username string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", e.from, "Support - Ventilation Dashboard")
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Welcome - your account is ready")
	m.SetBody("text/html", fmt.Sprintf(
		`<h2>Welcome, %s</h2>
<p>Your account has been created.</p>
<p><b>Username:</b> %s</p>
<p>Sign in with the password you registered and review the dashboard settings.</p>`,
		name, username))
	if err := e.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send welcome mail to %s: %w", to, err)
	}
	return nil
}
