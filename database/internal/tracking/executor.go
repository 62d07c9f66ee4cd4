package tracking

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/gaborage/bricksql/database/types"
	"github.com/gaborage/bricksql/logger"
)

const (
	dbTracerName      = "bricksql/database"
	maxDBQueryAttrLen = 2000
)

// Option customizes a tracked Executor.
type Option func(*options)

type options struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithTracerProvider sets the provider spans are created from. Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithMeterProvider sets the provider metrics are recorded to. Defaults to the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// Executor wraps another types.Executor and tracks every call.
type Executor struct {
	next    types.Executor
	tc      Context
	tracer  trace.Tracer
	metrics instruments
}

// NewExecutor returns next decorated with logging, tracing and metrics.
func NewExecutor(next types.Executor, tc Context, opts ...Option) *Executor {
	o := options{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if tc.Logger == nil {
		tc.Logger = logger.NewNop()
	}

	return &Executor{
		next:    next,
		tc:      tc,
		tracer:  o.tracerProvider.Tracer(dbTracerName),
		metrics: newInstruments(o.meterProvider),
	}
}

// Execute runs the query on the wrapped executor and records the outcome.
func (e *Executor) Execute(ctx context.Context, query string, args []any) ([]types.Row, error) {
	start := time.Now()

	ctx, span := e.startSpan(ctx, query, start)
	rows, err := e.next.Execute(ctx, query, args)
	e.endSpan(span, len(rows), err)

	e.track(ctx, query, args, start, len(rows), err)
	return rows, err
}

// Unwrap returns the decorated executor.
func (e *Executor) Unwrap() types.Executor {
	return e.next
}

func (e *Executor) startSpan(ctx context.Context, query string, start time.Time) (context.Context, trace.Span) {
	operation := operationName(query)

	ctx, span := e.tracer.Start(ctx, fmt.Sprintf("db.%s", operation),
		trace.WithTimestamp(start),
		trace.WithSpanKind(trace.SpanKindClient),
	)

	attrs := []attribute.KeyValue{
		attribute.String("db.system", dbSystem(e.tc.Vendor)),
		semconv.DBQueryText(TruncateString(query, maxDBQueryAttrLen)),
	}
	if operation != defaultOperation {
		attrs = append(attrs, semconv.DBOperationName(operation))
	}
	span.SetAttributes(attrs...)

	return ctx, span
}

func (e *Executor) endSpan(span trace.Span, rows int, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("db.response.returned_rows", rows))
	}
	span.End()
}

// track records metrics and emits one log event for a completed call:
// error on failure, warn above the slow query threshold, debug otherwise.
func (e *Executor) track(ctx context.Context, query string, args []any, start time.Time, rows int, err error) {
	elapsed := time.Since(start)
	tc := e.tc

	e.metrics.record(ctx, tc.Vendor, query, elapsed, rows, err)

	fields := map[string]any{
		"vendor":      tc.Vendor,
		"duration_ms": elapsed.Milliseconds(),
		"query":       TruncateString(query, tc.MaxQueryLength),
		"rows":        rows,
	}
	if tc.LogParameters && len(args) > 0 {
		fields["args"] = SanitizeArgs(args, tc.MaxQueryLength)
	}
	log := tc.Logger.WithFields(fields)

	switch {
	case err != nil:
		log.Error().Err(err).Msg("Database operation error")
	case tc.slow(elapsed):
		log.Warn().Msgf("Slow database operation detected (%s)", elapsed)
	default:
		log.Debug().Msg("Database operation executed")
	}
}
