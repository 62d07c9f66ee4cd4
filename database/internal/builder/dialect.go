package builder

import (
	"strings"

	dbtypes "github.com/gaborage/bricksql/database/types"
)

// Dialect renders the vendor-specific parts of a statement: identifier
// quoting and pagination. It is chosen once per builder.
type Dialect struct {
	vendor string
	family string
}

// NewDialect resolves vendor to its dialect family. Driver-style names such
// as "mysql8", "sqlite3" or "sqlserver" map onto their family; anything else
// keeps its name and gets no identifier quoting.
func NewDialect(vendor string) Dialect {
	return Dialect{vendor: vendor, family: dialectFamily(vendor)}
}

func dialectFamily(vendor string) string {
	v := strings.ToLower(strings.TrimSpace(vendor))
	switch {
	case strings.HasPrefix(v, dbtypes.MySQL), strings.HasPrefix(v, "mariadb"):
		return dbtypes.MySQL
	case strings.HasPrefix(v, dbtypes.MSSQL), strings.HasPrefix(v, "sqlserver"):
		return dbtypes.MSSQL
	case strings.HasPrefix(v, dbtypes.SQLite):
		return dbtypes.SQLite
	default:
		return v
	}
}

// Vendor returns the vendor string the dialect was created with.
func (d Dialect) Vendor() string {
	return d.vendor
}

// Family returns the resolved dialect family (mysql, mssql, sqlite or the raw vendor).
func (d Dialect) Family() string {
	return d.family
}

// QuoteIdentifier quotes a single identifier for the dialect.
//
//	mysql:  `name`   (backticks doubled)
//	mssql:  [name]   (closing brackets doubled)
//	sqlite: "name"   (double quotes doubled)
func (d Dialect) QuoteIdentifier(name string) string {
	switch d.family {
	case dbtypes.MySQL:
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	case dbtypes.MSSQL:
		return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
	case dbtypes.SQLite:
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	default:
		return name
	}
}

// Pagination returns the pagination fragment and its parameters.
// Both forms take the offset first and the limit second. The mssql form is
// only valid after an ORDER BY clause.
func (d Dialect) Pagination(limit, offset int) (fragment string, args []any) {
	switch d.family {
	case dbtypes.MSSQL:
		return "OFFSET ? ROWS FETCH NEXT ? ROWS ONLY", []any{offset, limit}
	default:
		return "LIMIT ?, ?", []any{offset, limit}
	}
}
