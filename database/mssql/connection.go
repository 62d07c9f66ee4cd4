// Package mssql provides the Microsoft SQL Server execution primitive.
//
// Rendered statements use "?" placeholders; they are rebound to the
// driver's "@pN" form right before they are sent.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/microsoft/go-mssqldb" // registers the "sqlserver" driver

	"github.com/gaborage/bricksql/config"
	"github.com/gaborage/bricksql/database/internal/rows"
	"github.com/gaborage/bricksql/database/types"
	"github.com/gaborage/bricksql/logger"
)

const driverName = "sqlserver"

// Connection implements types.Connection for SQL Server.
type Connection struct {
	db     *sql.DB
	config *config.DatabaseConfig
	logger logger.Logger
}

var _ types.Connection = (*Connection)(nil)

var (
	openMSSQLDB = sql.Open
	pingMSSQLDB = func(ctx context.Context, db *sql.DB) error {
		return db.PingContext(ctx)
	}
)

// DSN builds a sqlserver:// URL for cfg. An explicit connection string wins.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.ConnectionString != "" {
		return cfg.ConnectionString
	}

	u := &url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(cfg.Username, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
	}
	q := url.Values{}
	q.Set("database", cfg.Database)
	u.RawQuery = q.Encode()
	return u.String()
}

// Rebind rewrites "?" placeholders to "@p1", "@p2", ... in order.
func Rebind(query string) (string, error) {
	return sq.AtP.ReplacePlaceholders(query)
}

// NewConnection opens a pooled SQL Server connection and verifies it with a ping.
func NewConnection(cfg *config.DatabaseConfig, log logger.Logger) (*Connection, error) {
	db, err := openMSSQLDB(driverName, DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQL Server database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Pool.Max.Connections)
	if cfg.Pool.Idle.Connections > 0 {
		db.SetMaxIdleConns(cfg.Pool.Idle.Connections)
	}
	db.SetConnMaxLifetime(cfg.Pool.Lifetime.Max)
	db.SetConnMaxIdleTime(cfg.Pool.Idle.Time)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pingMSSQLDB(ctx, db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Failed to close SQL Server connection after ping failure")
		}
		return nil, fmt.Errorf("failed to ping SQL Server database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Connected to SQL Server database")

	return &Connection{db: db, config: cfg, logger: log}, nil
}

// Execute rebinds the placeholders of query and returns its rows keyed by column label.
func (c *Connection) Execute(ctx context.Context, query string, args []any) ([]types.Row, error) {
	bound, err := Rebind(query)
	if err != nil {
		return nil, fmt.Errorf("failed to rebind placeholders: %w", err)
	}
	return rows.Query(ctx, c.db, bound, args)
}

// Health checks database connectivity
func (c *Connection) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Stats returns database connection statistics
func (c *Connection) Stats() (map[string]any, error) {
	stats := c.db.Stats()
	return map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration,
	}, nil
}

// Close closes the database connection
func (c *Connection) Close() error {
	c.logger.Info().Msg("Closing SQL Server database connection")
	return c.db.Close()
}

// DatabaseType returns the database type
func (c *Connection) DatabaseType() string {
	return types.MSSQL
}
