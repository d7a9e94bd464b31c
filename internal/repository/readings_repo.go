package repository

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"ventilation_dashboard/internal/logger"
	"ventilation_dashboard/internal/models"
)

// measurement is the fixed measurement name for sensor points.
const measurement = "sensores"

// locationTag tags every point with the reporting sensor's location.
const locationTag = "ubicacion"

// ReadingsInflux persists sensor readings to InfluxDB and serves range
// queries. Writes go through the non-blocking write API: ingestion is
// never backpressured by the store, and write failures are drained from
// the error channel and logged.
type ReadingsInflux struct {
	writeAPI api.WriteAPI
	queryAPI api.QueryAPI
	bucket   string
	log      *logger.Logger
}

var _ Readings = (*ReadingsInflux)(nil)

func NewReadingsInflux(client influxdb2.Client, org, bucket string, log *logger.Logger) *ReadingsInflux {
	r := &ReadingsInflux{
		writeAPI: client.WriteAPI(org, bucket),
		queryAPI: client.QueryAPI(org),
		bucket:   bucket,
		log:      log,
	}
	go func() {
		for err := range r.writeAPI.Errors() {
			r.log.Errorw("influx_write_failed", "err", err)
		}
	}()
	return r
}

// Write appends one point per reading: four float fields, tagged by
// location, timestamped at ingestion time. Fire and forget.
func (r *ReadingsInflux) Write(rd models.SensorReading) {
	p := influxdb2.NewPoint(
		measurement,
		map[string]string{locationTag: rd.Location},
		map[string]any{
			"temperatura": rd.Temperature,
			"humedad":     rd.Humidity,
			"co2":         rd.CO2,
			"presion":     rd.Pressure,
		},
		rd.Timestamp,
	)
	r.writeAPI.WritePoint(p)
}

// Series queries one field over [start, stop], optionally averaged per
// window, returning points in ascending time order.
func (r *ReadingsInflux) Series(ctx context.Context, field, start, stop, window string) ([]models.DataPoint, error) {
	flux := fmt.Sprintf(`from(bucket: %q)
  |> range(start: %s, stop: %s)
  |> filter(fn: (r) => r._measurement == %q and r._field == %q)`,
		r.bucket, start, stop, measurement, field)
	if window != "" {
		flux += fmt.Sprintf("\n  |> aggregateWindow(every: %s, fn: mean, createEmpty: false)", window)
	}
	flux += "\n  |> sort(columns: [\"_time\"])"

	result, err := r.queryAPI.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("query %s series: %w", field, err)
	}

	var points []models.DataPoint
	for result.Next() {
		rec := result.Record()
		v, ok := rec.Value().(float64)
		if !ok {
			continue
		}
		points = append(points, models.DataPoint{Time: rec.Time(), Value: v})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read %s series: %w", field, err)
	}
	return points, nil
}

// Flush forces any buffered points out; called on shutdown.
func (r *ReadingsInflux) Flush() {
	r.writeAPI.Flush()
}
