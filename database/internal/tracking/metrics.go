package tracking

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	dbMeterName = "bricksql/database"

	metricDBCalls    = "db.client.calls"
	metricDBDuration = "db.client.operation.duration"
	metricDBRows     = "db.client.rows.returned"
)

// instruments holds the client metric instruments of one tracked executor.
// A nil instrument is skipped when recording.
type instruments struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
	rows     metric.Int64Counter
}

// logMetricError reports an instrument that could not be created.
// Metrics failures never break query execution.
func logMetricError(name string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to initialize metric %s: %v\n", name, err)
	}
}

func newInstruments(provider metric.MeterProvider) instruments {
	meter := provider.Meter(dbMeterName)

	var (
		inst instruments
		err  error
	)

	inst.calls, err = meter.Int64Counter(
		metricDBCalls,
		metric.WithDescription("Total number of database client calls"),
	)
	logMetricError(metricDBCalls, err)

	inst.duration, err = meter.Float64Histogram(
		metricDBDuration,
		metric.WithDescription("Duration of database operations in milliseconds"),
		metric.WithUnit("ms"),
	)
	logMetricError(metricDBDuration, err)

	inst.rows, err = meter.Int64Counter(
		metricDBRows,
		metric.WithDescription("Number of rows returned by database queries"),
	)
	logMetricError(metricDBRows, err)

	return inst
}

// record emits one call: counter (with error flag), duration and returned rows.
func (i instruments) record(ctx context.Context, vendor, query string, elapsed time.Duration, rows int, err error) {
	attrs := metric.WithAttributes(
		attribute.String("db.system", dbSystem(vendor)),
		attribute.String("db.operation.name", operationName(query)),
		attribute.Bool("error", err != nil),
	)

	if i.calls != nil {
		i.calls.Add(ctx, 1, attrs)
	}
	if i.duration != nil {
		i.duration.Record(ctx, float64(elapsed.Nanoseconds())/float64(time.Millisecond), attrs)
	}
	if i.rows != nil && err == nil {
		i.rows.Add(ctx, int64(rows), attrs)
	}
}
