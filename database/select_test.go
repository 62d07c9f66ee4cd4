package database

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/bricksql/config"
	"github.com/gaborage/bricksql/database/schema"
	dbtest "github.com/gaborage/bricksql/database/testing"
	"github.com/gaborage/bricksql/database/types"
	"github.com/gaborage/bricksql/logger"
)

type user struct {
	ID     int64  `db:"id"`
	Name   string `db:"name"`
	RoleID int64  `db:"role_id"`
}

type role struct {
	ID    int64  `db:"id"`
	Title string `db:"title"`
}

func newRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	r := schema.NewRegistry()
	require.NoError(t, schema.RegisterStruct[user](r, "Users"))
	require.NoError(t, schema.RegisterStruct[role](r, "Roles"))
	return r
}

func TestNewSelectOptions(t *testing.T) {
	db := dbtest.NewTestDB(MSSQL)
	q := NewSelect(newRegistry(t), db, WithDialect(MSSQL), WithQuotedIdentifiers(), WithStrictParentheses())

	require.NoError(t, q.From("Users"))
	require.NoError(t, q.SelectFields("Users", "id"))
	require.NoError(t, q.Limit(5, 0))
	q.WhereGroupStart()
	require.NoError(t, q.Where("Users", "id", OpEq, 1))

	_, _, err := q.ToSQL()
	require.ErrorIs(t, err, types.ErrUnbalancedParentheses)

	q.WhereGroupEnd()
	sql, args, err := q.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT [A].[id] AS A_id FROM [Users] [A] WHERE ( [A].[id] = ? ) OFFSET ? ROWS FETCH NEXT ? ROWS ONLY", sql)
	assert.Equal(t, []any{1, 0, 5}, args)
}

func TestNewSelectWithConfig(t *testing.T) {
	cfg := &config.DatabaseConfig{Type: SQLite, QuoteIdentifiers: true}
	q := NewSelect(newRegistry(t), dbtest.NewTestDB(SQLite), WithDialect(MySQL), WithConfig(cfg), WithConfig(nil))

	assert.Equal(t, SQLite, q.Dialect().Family())
	require.NoError(t, q.From("Roles"))
	sql, _, err := q.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, `SELECT "A"."id" AS A_id, "A"."title" AS A_title FROM "Roles" "A"`, sql)
}

func TestNewSelectDefaultsToMySQL(t *testing.T) {
	q := NewSelect(newRegistry(t), dbtest.NewTestDB(MySQL))
	assert.Equal(t, MySQL, q.Dialect().Family())
}

func TestSelectFetchHydratesStructs(t *testing.T) {
	db := dbtest.NewTestDB(MySQL).StrictSQLMatching()
	db.ExpectQuery("SELECT A.id AS A_id, A.name AS A_name, A.role_id AS A_role_id, B.id AS B_id, B.title AS B_title " +
		"FROM Users A LEFT JOIN Roles B ON A.role_id = B.id WHERE A.id = ? LIMIT ?, ?").
		WithArgs(7, 0, 10).
		WillReturnRows(dbtest.NewRowSet("A_id", "A_name", "A_role_id", "B_id", "B_title").
			AddRow(int64(7), []byte("Alice"), int64(3), int64(3), "admin"))

	var buf bytes.Buffer
	q := NewSelect(newRegistry(t), db, WithLogger(logger.NewWithWriter(&buf, "debug", false)))
	require.NoError(t, q.From("Users"))
	require.NoError(t, q.Join(JoinLeft, "Users", "Roles", "role_id", "id"))
	require.NoError(t, q.Where("Users", "id", OpEq, 7))
	require.NoError(t, q.Limit(10, 0))

	res, err := q.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.Len())

	u, ok := res.Records[0].Object("Users")
	require.True(t, ok)
	assert.Equal(t, &user{ID: 7, Name: "Alice", RoleID: 3}, u)

	r, ok := res.Records[0].Object("Roles")
	require.True(t, ok)
	assert.Equal(t, &role{ID: 3, Title: "admin"}, r)

	dbtest.AssertExpectationsMet(t, db)
	assert.Contains(t, buf.String(), `"message":"select fetched"`)
	assert.Contains(t, buf.String(), `"query_id"`)
}

func TestFetchAll(t *testing.T) {
	db := dbtest.NewTestDB(SQLite)
	db.ExpectQuery("FROM Users A").WillReturnRows(dbtest.NewRowSet("A_id", "A_name", "A_role_id").AddRow(1, "a", 2))
	db.ExpectQuery("FROM Roles A").WillReturnRows(dbtest.NewRowSet("A_id", "A_title").AddRow(2, "ops").AddRow(3, "dev"))

	reg := newRegistry(t)
	users := NewSelect(reg, db, WithDialect(SQLite))
	require.NoError(t, users.From("Users"))
	roles := NewSelect(reg, db, WithDialect(SQLite))
	require.NoError(t, roles.From("Roles"))

	results, err := FetchAll(context.Background(), users, roles)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Len())
	assert.Equal(t, 2, results[1].Len())
	dbtest.AssertQueryCount(t, db, "SELECT", 2)
}

func TestFetchAllReturnsFirstError(t *testing.T) {
	boom := errors.New("lock wait timeout")
	db := dbtest.NewTestDB(MySQL)
	db.ExpectQuery("FROM Users A").WillDelay(time.Minute)
	db.ExpectQuery("FROM Roles A").WillReturnError(boom)

	reg := newRegistry(t)
	users := NewSelect(reg, db)
	require.NoError(t, users.From("Users"))
	roles := NewSelect(reg, db)
	require.NoError(t, roles.From("Roles"))

	results, err := FetchAll(context.Background(), users, roles)
	require.Error(t, err)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, types.ErrQueryExecutionFailed)
}

func TestFetchAllEmpty(t *testing.T) {
	results, err := FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}
