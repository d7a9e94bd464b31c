package service

import (
	"context"

	"ventilation_dashboard/internal/bus"
	"ventilation_dashboard/internal/logger"
	"ventilation_dashboard/internal/models"
	"ventilation_dashboard/internal/repository"
	"ventilation_dashboard/internal/state"
)

// Broadcaster pushes one typed message to every live dashboard client.
// Satisfied by *hub.Hub; faked in tests.
type Broadcaster interface {
	Broadcast(msgType string, fields map[string]any)
}

// Notifier delivers user-facing email.
type Notifier interface {
	SendCO2Alert(to, name string, ppm float64) error
	SendWelcome(to, name, username string) error
}

type Authorization interface {
	SignUp(ctx context.Context, p SignUpParams) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Control dispatches operator commands: publish to the bus first, then
// optimistically apply the same change locally so the UI updates without
// waiting for the device echo.
type Control interface {
	SetFan(ctx context.Context, on bool) error
	SetMode(ctx context.Context, mode string) error
	SetThresholds(ctx context.Context, co2, temperature float64) error
}

// Monitoring exposes the current device state snapshot.
type Monitoring interface {
	State() models.DeviceState
}

// History serves time-series range queries for the dashboard charts.
type History interface {
	Query(ctx context.Context, p QueryParams) (QueryResult, error)
	SensorSeries(ctx context.Context, metric string) (SensorSeries, error)
}

// Alerts evaluates CO2 readings against the threshold and the hysteresis
// latch, notifying users once per threshold-crossing episode.
type Alerts interface {
	Evaluate(co2 float64)
}

// Ingest processes every inbound bus message.
type Ingest interface {
	Handle(topic string, payload []byte)
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Control
	Monitoring
	History
	Alerts
	Ingest
	Authorization
}

// Deps carries everything the sub-services are wired from.
type Deps struct {
	Repos      *repository.Repository
	State      *state.Store
	Hub        Broadcaster
	Publisher  bus.Publisher
	Notifier   Notifier
	Log        *logger.Logger
	SigningKey string
	// Location tags every persisted sensor point.
	Location string
}

func NewService(d Deps) *Service {
	alerts := NewAlertService(d.State, d.Repos.Auth, d.Notifier, d.Log)
	return &Service{
		Control:       NewControlService(d.Publisher, d.State, d.Hub, d.Log),
		Monitoring:    NewMonitoringService(d.State),
		History:       NewHistoryService(d.Repos.Readings, d.State),
		Alerts:        alerts,
		Ingest:        NewIngestService(d.State, d.Hub, d.Repos.Readings, alerts, d.Location, d.Log),
		Authorization: NewAuthService(d.Repos.Auth, d.Notifier, d.Log, d.SigningKey),
	}
}
