package database

import (
	"context"

	"github.com/gaborage/bricksql/config"
	"github.com/gaborage/bricksql/database/internal/tracking"
	"github.com/gaborage/bricksql/database/types"
	"github.com/gaborage/bricksql/logger"
)

// Re-export the internal tracking implementation as the public API
type (
	TrackedExecutor = tracking.Executor
	TrackingContext = tracking.Context
	TrackingOption  = tracking.Option
)

// Re-export internal functions as public API
var (
	NewTrackedExecutor  = tracking.NewExecutor
	NewTrackingContext  = tracking.NewContext
	WithTracerProvider  = tracking.WithTracerProvider
	WithMeterProvider   = tracking.WithMeterProvider
)

// Re-export internal constants
const (
	DefaultSlowQueryThreshold = tracking.DefaultSlowQueryThreshold
	DefaultMaxQueryLength     = tracking.DefaultMaxQueryLength
)

// TrackedConnection is a Connection whose Execute calls are logged, traced and measured.
type TrackedConnection struct {
	types.Connection
	exec *tracking.Executor
}

var _ types.Connection = (*TrackedConnection)(nil)

// NewTrackedConnection wraps conn with query tracking configured from cfg.
func NewTrackedConnection(conn types.Connection, log logger.Logger, cfg *config.DatabaseConfig, opts ...TrackingOption) *TrackedConnection {
	return &TrackedConnection{
		Connection: conn,
		exec:       tracking.NewExecutor(conn, tracking.NewContext(log, conn.DatabaseType(), cfg), opts...),
	}
}

// Execute runs the query through the tracking decorator.
func (c *TrackedConnection) Execute(ctx context.Context, query string, args []any) ([]types.Row, error) {
	return c.exec.Execute(ctx, query, args)
}
