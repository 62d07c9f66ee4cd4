package database

import (
	"fmt"

	"github.com/gaborage/bricksql/config"
	"github.com/gaborage/bricksql/database/mssql"
	"github.com/gaborage/bricksql/database/mysql"
	"github.com/gaborage/bricksql/database/sqlite"
	"github.com/gaborage/bricksql/database/types"
	"github.com/gaborage/bricksql/logger"
)

var (
	openMySQL  = func(cfg *config.DatabaseConfig, log logger.Logger) (types.Connection, error) { return mysql.NewConnection(cfg, log) }
	openMSSQL  = func(cfg *config.DatabaseConfig, log logger.Logger) (types.Connection, error) { return mssql.NewConnection(cfg, log) }
	openSQLite = func(cfg *config.DatabaseConfig, log logger.Logger) (types.Connection, error) { return sqlite.NewConnection(cfg, log) }
)

// NewConnection opens the connection selected by cfg.Type and returns it
// wrapped with performance tracking. If cfg.Type is unsupported an error is
// returned; if the driver fails to initialize, that error is returned.
func NewConnection(cfg *config.DatabaseConfig, log logger.Logger, opts ...TrackingOption) (*TrackedConnection, error) {
	if log == nil {
		log = logger.NewNop()
	}

	var (
		conn types.Connection
		err  error
	)

	switch cfg.Type {
	case MySQL:
		conn, err = openMySQL(cfg, log)
	case MSSQL:
		conn, err = openMSSQL(cfg, log)
	case SQLite:
		conn, err = openSQLite(cfg, log)
	default:
		return nil, ValidateDatabaseType(cfg.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", cfg.Type, err)
	}

	return NewTrackedConnection(conn, log, cfg, opts...), nil
}
