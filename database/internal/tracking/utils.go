package tracking

import (
	"fmt"
	"strings"
)

const (
	defaultOperation = "query"

	dbSystemMySQL  = "mysql"
	dbSystemMSSQL  = "microsoft.sql_server"
	dbSystemSQLite = "sqlite"
)

// TruncateString truncates value to at most maxLen runes, ending in "..." when
// there is room for it. maxLen <= 0 disables truncation.
func TruncateString(value string, maxLen int) string {
	if maxLen <= 0 {
		return value
	}
	r := []rune(value)
	if len(r) <= maxLen {
		return value
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// SanitizeArgs returns a loggable copy of args. Strings and formatted values
// are truncated to maxLen runes; byte slices become "<bytes len=N>".
func SanitizeArgs(args []any, maxLen int) []any {
	if len(args) == 0 {
		return nil
	}
	sanitized := make([]any, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case string:
			sanitized[i] = TruncateString(v, maxLen)
		case []byte:
			sanitized[i] = fmt.Sprintf("<bytes len=%d>", len(v))
		case nil:
			sanitized[i] = nil
		default:
			sanitized[i] = TruncateString(fmt.Sprintf("%v", v), maxLen)
		}
	}
	return sanitized
}

// operationName returns the lowercase leading SQL verb, or "query".
func operationName(query string) string {
	parts := strings.Fields(query)
	if len(parts) == 0 {
		return defaultOperation
	}

	operation := strings.ToLower(parts[0])
	switch operation {
	case "select", "insert", "update", "delete", "with":
		return operation
	default:
		return defaultOperation
	}
}

// dbSystem maps a vendor name to its OpenTelemetry db.system value.
func dbSystem(vendor string) string {
	vendor = strings.ToLower(vendor)
	switch {
	case strings.HasPrefix(vendor, "mysql"), strings.HasPrefix(vendor, "mariadb"):
		return dbSystemMySQL
	case strings.HasPrefix(vendor, "mssql"), strings.HasPrefix(vendor, "sqlserver"):
		return dbSystemMSSQL
	case strings.HasPrefix(vendor, "sqlite"):
		return dbSystemSQLite
	default:
		return vendor
	}
}
