package repository

import (
	"context"
	"database/sql"

	"ventilation_dashboard/internal/models"
)

type Authorization interface {
	Create(ctx context.Context, u models.User) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// ListRecipients returns every user with an email address, for alert
	// notification fan-out.
	ListRecipients(ctx context.Context) ([]models.User, error)
}

// Readings is the time-series store. Write is fire-and-forget: failures
// are logged by the implementation and never surface to the caller.
type Readings interface {
	Write(r models.SensorReading)
	// Series runs a range+filter query for one field. start and stop are
	// Flux time expressions (RFC3339 or relative like "-24h" / "now()").
	// An empty window skips aggregation; otherwise values are averaged
	// per window (e.g. "1m").
	Series(ctx context.Context, field, start, stop, window string) ([]models.DataPoint, error)
}

type Repository struct {
	Auth     Authorization
	Readings Readings
}

func NewRepository(db *sql.DB, readings Readings) *Repository {
	return &Repository{
		Auth:     NewUserRepository(db),
		Readings: readings,
	}
}
