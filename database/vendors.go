package database

import (
	"fmt"
	"slices"

	"github.com/gaborage/bricksql/database/types"
)

// Re-export vendor identifiers so callers only need the database package.
const (
	MySQL  = types.MySQL
	MSSQL  = types.MSSQL
	SQLite = types.SQLite
)

// GetSupportedDatabaseTypes returns the vendors NewConnection can open.
func GetSupportedDatabaseTypes() []string {
	return []string{MySQL, MSSQL, SQLite}
}

// ValidateDatabaseType returns nil if dbType can be opened by NewConnection.
func ValidateDatabaseType(dbType string) error {
	supported := GetSupportedDatabaseTypes()
	if !slices.Contains(supported, dbType) {
		return fmt.Errorf("unsupported database type: %s (supported: %v)", dbType, supported)
	}
	return nil
}
