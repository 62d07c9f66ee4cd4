package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbtypes "github.com/gaborage/bricksql/database/types"
)

func testTables() []dbtypes.TableRef {
	return []dbtypes.TableRef{
		dbtypes.NewTableRef("Users", "A", []string{"id", "name"}),
		dbtypes.NewTableRef("Roles", "B", []string{"id"}),
	}
}

func TestHydrateModelMode(t *testing.T) {
	h := hydrator{schema: newFakeSchema(), tables: testTables(), selected: map[string][]string{}}

	result, err := h.hydrate([]dbtypes.Row{
		{"A_id": 1, "A_name": "x", "B_id": 2, "COUNT(*)": 5},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Len())
	assert.False(t, result.Raw())

	rec := result.Records[0]
	assert.Nil(t, rec.Values)
	assert.Equal(t, []Entry{
		{Table: "Users", Alias: "A", Object: fakeRow{Table: "Users", Fields: map[string]any{"id": 1, "name": "x"}}},
		{Table: "Roles", Alias: "B", Object: fakeRow{Table: "Roles", Fields: map[string]any{"id": 2}}},
	}, rec.Entries)

	obj, ok := rec.Object("Roles")
	require.True(t, ok)
	assert.Equal(t, "Roles", obj.(fakeRow).Table)
	_, ok = rec.Object("Posts")
	assert.False(t, ok)
}

func TestHydrateHonoursSelectedFields(t *testing.T) {
	h := hydrator{
		schema:   newFakeSchema(),
		tables:   testTables(),
		selected: map[string][]string{"A": {"name"}},
	}

	result, err := h.hydrate([]dbtypes.Row{{"A_id": 1, "A_name": "x", "B_id": 2}})
	require.NoError(t, err)

	obj, _ := result.Records[0].Object("Users")
	assert.Equal(t, map[string]any{"name": "x"}, obj.(fakeRow).Fields)
}

func TestHydrateMissingColumnsAreOmitted(t *testing.T) {
	h := hydrator{schema: newFakeSchema(), tables: testTables(), selected: map[string][]string{}}

	result, err := h.hydrate([]dbtypes.Row{{"A_id": 1}})
	require.NoError(t, err)

	users, _ := result.Records[0].Object("Users")
	roles, _ := result.Records[0].Object("Roles")
	assert.Equal(t, map[string]any{"id": 1}, users.(fakeRow).Fields)
	assert.Empty(t, roles.(fakeRow).Fields)
}

func TestHydrateRawMode(t *testing.T) {
	h := hydrator{schema: newFakeSchema(), tables: testTables(), selected: map[string][]string{}, raw: true}
	rows := []dbtypes.Row{
		{"A_id": 1, "COUNT(*)": 3},
		{"A_id": 2, "COUNT(*)": 4},
	}

	result, err := h.hydrate(rows)
	require.NoError(t, err)
	assert.True(t, result.Raw())
	require.Equal(t, 2, result.Len())
	assert.Equal(t, rows[0], result.Records[0].Values)
	assert.Equal(t, rows[1], result.Records[1].Values)
	assert.Nil(t, result.Records[0].Entries)
}

func TestHydrateEmptyRows(t *testing.T) {
	h := hydrator{schema: newFakeSchema(), tables: testTables(), selected: map[string][]string{}}

	result, err := h.hydrate(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Len())
	assert.NotNil(t, result.Records)
}

func TestHydrateConstructorFailure(t *testing.T) {
	schema := newFakeSchema()
	schema.failTable = "Roles"
	h := hydrator{schema: schema, tables: testTables(), selected: map[string][]string{}}

	_, err := h.hydrate([]dbtypes.Row{{"A_id": 1}, {"A_id": 2}})
	require.ErrorIs(t, err, dbtypes.ErrHydrationFailed)
	assert.Contains(t, err.Error(), "row 0, table Roles")
	assert.Contains(t, err.Error(), "constructor exploded")
}
