package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ventilation_dashboard/internal/repository"
	"ventilation_dashboard/internal/state"
)

// ErrUnknownMetric rejects queries for fields that are not persisted.
var ErrUnknownMetric = errors.New("unknown metric")

// metricFields maps the API metric names to the persisted field names.
var metricFields = map[string]string{
	"co2":         "co2",
	"humidity":    "humedad",
	"pressure":    "presion",
	"temperature": "temperatura",
}

// sensorWindows fixes the recent range and point count served to each
// dashboard chart.
var sensorWindows = map[string]struct {
	start string
	limit int
}{
	"co2":         {start: "-1h", limit: 10},
	"humidity":    {start: "-24h", limit: 8},
	"pressure":    {start: "-1h", limit: 10},
	"temperature": {start: "-1h", limit: 10},
}

// HistoryService serves time-series queries for the dashboard charts.
// The state store supplies the current CO2 threshold for the chart's
// alert badge.
type HistoryService struct {
	readings repository.Readings
	state    *state.Store

	now func() time.Time
}

func NewHistoryService(readings repository.Readings, st *state.Store) *HistoryService {
	return &HistoryService{readings: readings, state: st, now: time.Now}
}

// Query runs a range query with a dynamic aggregation window sized to
// the requested span, so charts stay at a sane resolution regardless of
// how much history is requested.
func (s *HistoryService) Query(ctx context.Context, p QueryParams) (QueryResult, error) {
	field, ok := metricFields[p.Metric]
	if !ok {
		return QueryResult{}, fmt.Errorf("%w: %q", ErrUnknownMetric, p.Metric)
	}

	start := p.Start
	if start == "" {
		start = "-24h"
	}
	stop := p.End
	if stop == "" {
		stop = "now()"
	}

	window := windowFor(p.Start, p.End)
	points, err := s.readings.Series(ctx, field, start, stop, window)
	if err != nil {
		return QueryResult{}, err
	}
	return QueryResult{Window: window, Points: points}, nil
}

// SensorSeries returns the fixed recent window for one sensor chart.
func (s *HistoryService) SensorSeries(ctx context.Context, metric string) (SensorSeries, error) {
	field, ok := metricFields[metric]
	if !ok {
		return SensorSeries{}, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	w := sensorWindows[metric]

	points, err := s.readings.Series(ctx, field, w.start, "now()", "")
	if err != nil {
		return SensorSeries{}, err
	}
	if len(points) > w.limit {
		points = points[len(points)-w.limit:]
	}

	out := SensorSeries{Points: points, LastUpdated: s.now().UTC()}
	if metric == "co2" {
		threshold := s.state.Snapshot().Thresholds.CO2
		for _, pt := range points {
			if pt.Value > threshold {
				out.ShowAlert = true
				break
			}
		}
	}
	return out, nil
}

// windowFor sizes the aggregation window to the span between start and
// end. Unparseable or missing bounds fall back to the 24h default.
func windowFor(start, end string) string {
	if start == "" || end == "" {
		return "1m"
	}
	from, err1 := time.Parse(time.RFC3339, start)
	to, err2 := time.Parse(time.RFC3339, end)
	if err1 != nil || err2 != nil || to.Before(from) {
		return "1m"
	}

	span := to.Sub(from)
	switch {
	case span <= 6*time.Hour:
		return "30s"
	case span <= 24*time.Hour:
		return "1m"
	case span <= 7*24*time.Hour:
		return "15m"
	case span <= 30*24*time.Hour:
		return "1h"
	default:
		return "1d"
	}
}

var _ History = (*HistoryService)(nil)
