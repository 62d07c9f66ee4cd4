// Package tracking decorates an execution primitive with structured query
// logs, slow query detection, OpenTelemetry spans and client metrics.
package tracking

import (
	"time"

	"github.com/gaborage/bricksql/config"
	"github.com/gaborage/bricksql/logger"
)

// Defaults applied by NewContext.
const (
	DefaultSlowQueryThreshold = 200 * time.Millisecond
	DefaultMaxQueryLength     = 1000
)

// Context is what every tracked call is logged against.
type Context struct {
	Logger logger.Logger
	Vendor string

	// SlowQueryThreshold raises the log level to warn above it. Zero disables.
	SlowQueryThreshold time.Duration
	// MaxQueryLength truncates logged SQL and arguments. Zero logs them whole.
	MaxQueryLength int
	// LogParameters adds sanitized bind arguments to every log event.
	LogParameters bool
}

// NewContext reads the database.query section of cfg. A nil cfg or
// non-positive values keep the package defaults.
func NewContext(log logger.Logger, vendor string, cfg *config.DatabaseConfig) Context {
	tc := Context{
		Logger:             log,
		Vendor:             vendor,
		SlowQueryThreshold: DefaultSlowQueryThreshold,
		MaxQueryLength:     DefaultMaxQueryLength,
	}
	if cfg == nil {
		return tc
	}

	q := cfg.Query
	if q.Slow.Threshold > 0 {
		tc.SlowQueryThreshold = q.Slow.Threshold
	}
	if q.Log.MaxLength > 0 {
		tc.MaxQueryLength = q.Log.MaxLength
	}
	tc.LogParameters = q.Log.Parameters
	return tc
}

// slow reports whether elapsed crosses the configured threshold.
func (tc Context) slow(elapsed time.Duration) bool {
	return tc.SlowQueryThreshold > 0 && elapsed > tc.SlowQueryThreshold
}
