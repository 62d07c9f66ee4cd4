package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/bricksql/config"
	"github.com/gaborage/bricksql/database/types"
	"github.com/gaborage/bricksql/logger"
)

const selectUsersByID = "SELECT A.id AS A_id, A.name AS A_name FROM Users A WHERE A.id = ? LIMIT ?, ?"

func testConfig() *config.DatabaseConfig {
	cfg := &config.DatabaseConfig{
		Type:     config.MySQL,
		Host:     "db.internal",
		Port:     3306,
		Database: "app",
		Username: "reader",
		Password: "s3cret",
	}
	cfg.Pool.Max.Connections = 10
	cfg.Pool.Idle.Connections = 2
	cfg.Pool.Lifetime.Max = time.Minute
	return cfg
}

func stubOpen(t *testing.T, db *sql.DB, ping error) *string {
	t.Helper()

	var dsn string
	origOpen, origPing := openMySQLDB, pingMySQLDB
	openMySQLDB = func(driver, source string) (*sql.DB, error) {
		assert.Equal(t, driverName, driver)
		dsn = source
		return db, nil
	}
	pingMySQLDB = func(context.Context, *sql.DB) error { return ping }
	t.Cleanup(func() {
		openMySQLDB, pingMySQLDB = origOpen, origPing
	})
	return &dsn
}

func TestDSN(t *testing.T) {
	dsn := DSN(testConfig())
	assert.True(t, strings.HasPrefix(dsn, "reader:s3cret@tcp(db.internal:3306)/app?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")

	cfg := testConfig()
	cfg.ConnectionString = "root@unix(/tmp/mysql.sock)/app"
	assert.Equal(t, "root@unix(/tmp/mysql.sock)/app", DSN(cfg))
}

func TestNewConnection(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	dsn := stubOpen(t, db, nil)

	conn, err := NewConnection(testConfig(), logger.NewNop())
	require.NoError(t, err)
	assert.Contains(t, *dsn, "tcp(db.internal:3306)/app")
	assert.Equal(t, types.MySQL, conn.DatabaseType())

	mock.ExpectQuery(selectUsersByID).
		WithArgs(7, 0, 10).
		WillReturnRows(sqlmock.NewRows([]string{"A_id", "A_name"}).AddRow(int64(7), "ada"))

	got, err := conn.Execute(context.Background(), selectUsersByID, []any{7, 0, 10})
	require.NoError(t, err)
	assert.Equal(t, []types.Row{{"A_id": int64(7), "A_name": "ada"}}, got)

	stats, err := conn.Stats()
	require.NoError(t, err)
	assert.Equal(t, 10, stats["max_open_connections"])

	mock.ExpectClose()
	require.NoError(t, conn.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewConnectionZeroIdleKeepsPoolWarm(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	stubOpen(t, db, nil)

	cfg := testConfig()
	cfg.Pool.Idle.Connections = 0
	conn, err := NewConnection(cfg, logger.NewNop())
	require.NoError(t, err)

	mock.ExpectQuery(selectUsersByID).
		WithArgs(7, 0, 10).
		WillReturnRows(sqlmock.NewRows([]string{"A_id"}).AddRow(int64(7)))

	got, err := conn.Execute(context.Background(), selectUsersByID, []any{7, 0, 10})
	require.NoError(t, err)
	assert.Equal(t, []types.Row{{"A_id": int64(7)}}, got)

	mock.ExpectClose()
	require.NoError(t, conn.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewConnectionPingFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	stubOpen(t, db, errors.New("connection refused"))
	mock.ExpectClose()

	conn, err := NewConnection(testConfig(), logger.NewNop())
	assert.Nil(t, conn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping MySQL database")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionHealth(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	c := &Connection{db: db, config: testConfig(), logger: logger.NewNop()}

	mock.ExpectPing()
	require.NoError(t, c.Health(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("gone away"))
	assert.Error(t, c.Health(context.Background()))
}

func TestExecuteReturnsDriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	c := &Connection{db: db, config: testConfig(), logger: logger.NewNop()}
	boom := errors.New("Error 1146: Table 'app.Users' doesn't exist")
	mock.ExpectQuery("SELECT").WillReturnError(boom)

	_, err = c.Execute(context.Background(), selectUsersByID, []any{7, 0, 10})
	assert.ErrorIs(t, err, boom)
}
