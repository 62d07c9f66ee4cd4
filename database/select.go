// Package database is the public entry point of bricksql: it builds
// dialect-aware multi-table SELECT statements, runs them through an
// execution primitive and hydrates the rows into per-table objects.
//
// Basic usage:
//
//	q := database.NewSelect(schema, conn, database.WithDialect(database.MySQL))
//	if err := q.From("Users"); err != nil { ... }
//	if err := q.Join(database.JoinLeft, "Users", "Roles", "role_id", "id"); err != nil { ... }
//	if err := q.Where("Users", "id", database.OpEq, 7); err != nil { ... }
//	if err := q.Limit(10, 0); err != nil { ... }
//	res, err := q.Fetch(ctx)
package database

import (
	"github.com/gaborage/bricksql/config"
	"github.com/gaborage/bricksql/database/internal/builder"
	"github.com/gaborage/bricksql/database/types"
	"github.com/gaborage/bricksql/logger"
)

// Re-export the builder types as the public API
type (
	Select    = builder.Select
	Dialect   = builder.Dialect
	Operator  = builder.Operator
	Connector = builder.Connector
	JoinKind  = builder.JoinKind
	Direction = builder.Direction
	Result    = builder.Result
	Record    = builder.Record
	Entry     = builder.Entry
)

// Comparison operators.
const (
	OpEq     = builder.OpEq
	OpLte    = builder.OpLte
	OpLt     = builder.OpLt
	OpGt     = builder.OpGt
	OpGte    = builder.OpGte
	OpNotEq  = builder.OpNotEq
	OpIn     = builder.OpIn
	OpNotIn  = builder.OpNotIn
	OpIsNull = builder.OpIsNull
)

// Predicate connectors.
const (
	And = builder.And
	Or  = builder.Or
)

// Join kinds.
const (
	JoinInner = builder.JoinInner
	JoinLeft  = builder.JoinLeft
	JoinRight = builder.JoinRight
	JoinOuter = builder.JoinOuter
	JoinPlain = builder.JoinPlain
)

// Sort directions.
const (
	Asc  = builder.Asc
	Desc = builder.Desc
)

// NewDialect re-exports the dialect constructor.
var NewDialect = builder.NewDialect

// Option configures a Select at construction.
type Option func(*builder.Config)

// WithDialect selects the SQL dialect by vendor name. Defaults to mysql.
// With mssql, paginated selects must also call Order: SQL Server rejects
// OFFSET ... FETCH without ORDER BY.
func WithDialect(vendor string) Option {
	return func(c *builder.Config) {
		c.Vendor = vendor
	}
}

// WithLogger sets the logger that receives per-Fetch debug output.
func WithLogger(log logger.Logger) Option {
	return func(c *builder.Config) {
		c.Logger = log
	}
}

// WithQuotedIdentifiers quotes table names, aliases and field names with the
// dialect's quote style. Without it, aliases past Z can collide with keywords (AS, BY, IN).
func WithQuotedIdentifiers() Option {
	return func(c *builder.Config) {
		c.QuoteIdentifiers = true
	}
}

// WithStrictParentheses makes rendering fail with types.ErrUnbalancedParentheses
// when group markers in WHERE or HAVING do not balance.
func WithStrictParentheses() Option {
	return func(c *builder.Config) {
		c.StrictParentheses = true
	}
}

// WithConfig applies the dialect and rendering switches of cfg.
func WithConfig(cfg *config.DatabaseConfig) Option {
	return func(c *builder.Config) {
		if cfg == nil {
			return
		}
		if cfg.Type != "" {
			c.Vendor = cfg.Type
		}
		c.QuoteIdentifiers = cfg.QuoteIdentifiers
		c.StrictParentheses = cfg.StrictParentheses
	}
}

// NewSelect creates an empty builder that resolves tables through schema and
// runs statements through exec.
func NewSelect(schema types.SchemaProvider, exec types.Executor, opts ...Option) *Select {
	var cfg builder.Config
	for _, opt := range opts {
		opt(&cfg)
	}
	return builder.NewSelect(schema, exec, cfg)
}
