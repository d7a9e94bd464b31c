package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ventilation_dashboard/internal/models"
	"ventilation_dashboard/internal/state"
)

func newTestHistory(t *testing.T, rd *fakeReadings) (*HistoryService, *state.Store) {
	t.Helper()
	st := state.NewStore()
	svc := NewHistoryService(rd, st)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }
	return svc, st
}

func TestHistory_QueryDefaults(t *testing.T) {
	rd := &fakeReadings{series: []models.DataPoint{{Value: 1}, {Value: 2}}}
	svc, _ := newTestHistory(t, rd)

	res, err := svc.Query(context.Background(), QueryParams{Metric: "humidity"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rd.lastField != "humedad" || rd.lastStart != "-24h" || rd.lastStop != "now()" {
		t.Fatalf("unexpected query args %q %q %q", rd.lastField, rd.lastStart, rd.lastStop)
	}
	if res.Window != "1m" || len(res.Points) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestHistory_QueryRejectsUnknownMetric(t *testing.T) {
	svc, _ := newTestHistory(t, &fakeReadings{})

	if _, err := svc.Query(context.Background(), QueryParams{Metric: "altitude"}); !errors.Is(err, ErrUnknownMetric) {
		t.Fatalf("expected ErrUnknownMetric, got %v", err)
	}
	if _, err := svc.SensorSeries(context.Background(), "altitude"); !errors.Is(err, ErrUnknownMetric) {
		t.Fatalf("expected ErrUnknownMetric, got %v", err)
	}
}

func TestHistory_WindowScalesWithSpan(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		span time.Duration
		want string
	}{
		{time.Hour, "30s"},
		{6 * time.Hour, "30s"},
		{12 * time.Hour, "1m"},
		{3 * 24 * time.Hour, "15m"},
		{20 * 24 * time.Hour, "1h"},
		{90 * 24 * time.Hour, "1d"},
	}

	for _, tc := range cases {
		rd := &fakeReadings{}
		svc, _ := newTestHistory(t, rd)
		res, err := svc.Query(context.Background(), QueryParams{
			Metric: "co2",
			Start:  base.Format(time.RFC3339),
			End:    base.Add(tc.span).Format(time.RFC3339),
		})
		if err != nil {
			t.Fatalf("span %v: unexpected error: %v", tc.span, err)
		}
		if res.Window != tc.want {
			t.Fatalf("span %v: expected window %q, got %q", tc.span, tc.want, res.Window)
		}
	}
}

func TestHistory_WindowFallsBackOnBadBounds(t *testing.T) {
	rd := &fakeReadings{}
	svc, _ := newTestHistory(t, rd)

	res, err := svc.Query(context.Background(), QueryParams{Metric: "co2", Start: "yesterday", End: "today"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Window != "1m" {
		t.Fatalf("expected fallback window 1m, got %q", res.Window)
	}
}

func TestHistory_SensorSeriesTrimsToLimit(t *testing.T) {
	points := make([]models.DataPoint, 15)
	for i := range points {
		points[i] = models.DataPoint{Value: float64(i)}
	}
	rd := &fakeReadings{series: points}
	svc, _ := newTestHistory(t, rd)

	res, err := svc.SensorSeries(context.Background(), "co2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Points) != 10 {
		t.Fatalf("expected 10 points, got %d", len(res.Points))
	}
	// Most recent points survive the trim.
	if res.Points[0].Value != 5 || res.Points[9].Value != 14 {
		t.Fatalf("unexpected trim %v", res.Points)
	}
	if rd.lastStart != "-1h" || rd.lastWindow != "" {
		t.Fatalf("unexpected query args %q %q", rd.lastStart, rd.lastWindow)
	}
}

func TestHistory_SensorSeriesCO2AlertBadge(t *testing.T) {
	rd := &fakeReadings{series: []models.DataPoint{{Value: 600}, {Value: 850}}}
	svc, _ := newTestHistory(t, rd)

	res, err := svc.SensorSeries(context.Background(), "co2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.ShowAlert {
		t.Fatal("expected alert badge when a point exceeds the threshold")
	}

	// Other metrics never set the badge, whatever the values.
	rd2 := &fakeReadings{series: []models.DataPoint{{Value: 9999}}}
	svc2, _ := newTestHistory(t, rd2)
	res2, err := svc2.SensorSeries(context.Background(), "temperature")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res2.ShowAlert {
		t.Fatal("alert badge is CO2 only")
	}
}
