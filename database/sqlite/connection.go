// Package sqlite provides the SQLite execution primitive on the pure Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/gaborage/bricksql/config"
	"github.com/gaborage/bricksql/database/internal/rows"
	"github.com/gaborage/bricksql/database/types"
	"github.com/gaborage/bricksql/logger"
)

const (
	driverName = "sqlite"
	memoryPath = ":memory:"
)

// Connection implements types.Connection for SQLite.
type Connection struct {
	db     *sql.DB
	config *config.DatabaseConfig
	logger logger.Logger
}

var _ types.Connection = (*Connection)(nil)

var openSQLiteDB = sql.Open

// DSN returns the driver data source name for cfg.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.ConnectionString != "" {
		return cfg.ConnectionString
	}
	if cfg.Path == "" {
		return memoryPath
	}
	return cfg.Path
}

// NewConnection opens a SQLite database file, or an in-memory database
// when the path is empty or ":memory:".
func NewConnection(cfg *config.DatabaseConfig, log logger.Logger) (*Connection, error) {
	dsn := DSN(cfg)

	db, err := openSQLiteDB(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Every pooled connection to :memory: would see its own empty database.
	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	} else {
		db.SetMaxOpenConns(cfg.Pool.Max.Connections)
		if cfg.Pool.Idle.Connections > 0 {
			db.SetMaxIdleConns(cfg.Pool.Idle.Connections)
		}
		db.SetConnMaxLifetime(cfg.Pool.Lifetime.Max)
		db.SetConnMaxIdleTime(cfg.Pool.Idle.Time)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Failed to close SQLite database after ping failure")
		}
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	log.Info().Str("path", dsn).Msg("Opened SQLite database")

	return &Connection{db: db, config: cfg, logger: log}, nil
}

// DB exposes the underlying handle, e.g. to create fixtures.
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Execute runs a SELECT and returns its rows keyed by column label.
func (c *Connection) Execute(ctx context.Context, query string, args []any) ([]types.Row, error) {
	return rows.Query(ctx, c.db, query, args)
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
	}, nil
}

// Close closes the database connection
func (c *Connection) Close() error {
	return c.db.Close()
}

// DatabaseType returns the database type
func (c *Connection) DatabaseType() string {
	return types.SQLite
}

func isMemory(dsn string) bool {
	return dsn == memoryPath || strings.Contains(dsn, "mode=memory") || strings.HasPrefix(dsn, "file::memory:")
}
