package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbtypes "github.com/gaborage/bricksql/database/types"
)

func TestBuildPredicate(t *testing.T) {
	var nilPtr *int
	var nilMap map[string]int

	tests := []struct {
		name  string
		op    Operator
		value any
		sql   string
		args  []any
		err   error
	}{
		{name: "equals", op: OpEq, value: 7, sql: "A.id = ?", args: []any{7}},
		{name: "less or equal", op: OpLte, value: 7, sql: "A.id <= ?", args: []any{7}},
		{name: "less", op: OpLt, value: 7, sql: "A.id < ?", args: []any{7}},
		{name: "greater", op: OpGt, value: 7, sql: "A.id > ?", args: []any{7}},
		{name: "greater or equal", op: OpGte, value: 7, sql: "A.id >= ?", args: []any{7}},
		{name: "not equal", op: OpNotEq, value: "x", sql: "A.id != ?", args: []any{"x"}},
		{name: "is null ignores value", op: OpIsNull, value: 7, sql: "A.id IS NULL"},
		{name: "is null with nil", op: OpIsNull, value: nil, sql: "A.id IS NULL"},
		{name: "in scalar", op: OpIn, value: 3, sql: "A.id = ?", args: []any{3}},
		{name: "not in scalar", op: OpNotIn, value: 3, sql: "A.id != ?", args: []any{3}},
		{name: "in list", op: OpIn, value: []int{1, 2, 3}, sql: "A.id IN (?,?,?)", args: []any{1, 2, 3}},
		{name: "in array", op: OpIn, value: [2]string{"a", "b"}, sql: "A.id IN (?,?)", args: []any{"a", "b"}},
		{name: "not in list", op: OpNotIn, value: []any{1, "x"}, sql: "A.id NOT IN (?,?)", args: []any{1, "x"}},
		{name: "bytes are scalar", op: OpIn, value: []byte("ab"), sql: "A.id = ?", args: []any{[]byte("ab")}},
		{name: "empty in list", op: OpIn, value: []int{}, err: dbtypes.ErrEmptyInList},
		{name: "empty not in list", op: OpNotIn, value: []string(nil), err: dbtypes.ErrEmptyInList},
		{name: "nil value", op: OpEq, value: nil, err: dbtypes.ErrNullNotAllowed},
		{name: "nil pointer", op: OpGt, value: nilPtr, err: dbtypes.ErrNullNotAllowed},
		{name: "nil map", op: OpIn, value: nilMap, err: dbtypes.ErrNullNotAllowed},
		{name: "nil bytes", op: OpEq, value: []byte(nil), err: dbtypes.ErrNullNotAllowed},
		{name: "nil bytes in", op: OpIn, value: []byte(nil), err: dbtypes.ErrNullNotAllowed},
		{name: "nil int slice", op: OpEq, value: []int(nil), err: dbtypes.ErrNullNotAllowed},
		{name: "nil int slice compared", op: OpGt, value: []int(nil), err: dbtypes.ErrNullNotAllowed},
		{name: "nil in list", op: OpIn, value: []int(nil), err: dbtypes.ErrEmptyInList},
		{name: "unknown operator", op: Operator("LIKE"), value: "x", err: dbtypes.ErrUnknownOperator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := buildPredicate("A.id", tt.op, tt.value)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				assert.Empty(t, sql)
				assert.Nil(t, args)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestPredicateBuilderConnectors(t *testing.T) {
	var pb predicateBuilder
	require.NoError(t, pb.add("A.a", OpEq, 1, Or))
	require.NoError(t, pb.add("A.b", OpEq, 2, And))
	require.NoError(t, pb.add("A.c", OpIsNull, nil, Or))

	assert.Equal(t, "A.a = ? AND A.b = ? OR A.c IS NULL", pb.SQL())
	assert.Equal(t, []any{1, 2}, pb.Args())
}

func TestPredicateBuilderDefaultsToAnd(t *testing.T) {
	var pb predicateBuilder
	require.NoError(t, pb.add("A.a", OpEq, 1, ""))
	require.NoError(t, pb.add("A.b", OpEq, 2, ""))

	assert.Equal(t, "A.a = ? AND A.b = ?", pb.SQL())
}

func TestPredicateBuilderGroups(t *testing.T) {
	var pb predicateBuilder
	require.NoError(t, pb.add("A.a", OpEq, 1, And))
	pb.open()
	require.NoError(t, pb.add("A.b", OpEq, 2, Or))
	require.NoError(t, pb.add("A.c", OpEq, 3, And))
	pb.close()

	assert.Equal(t, "A.a = ? OR ( A.b = ? AND A.c = ? )", pb.SQL())
	assert.Equal(t, []any{1, 2, 3}, pb.Args())
	assert.True(t, pb.balanced())
}

func TestPredicateBuilderLeadingGroup(t *testing.T) {
	var pb predicateBuilder
	pb.open()
	require.NoError(t, pb.add("A.a", OpEq, 1, Or))
	require.NoError(t, pb.add("A.b", OpEq, 2, Or))
	pb.close()
	require.NoError(t, pb.add("A.c", OpEq, 3, And))

	assert.Equal(t, "( A.a = ? OR A.b = ? ) AND A.c = ?", pb.SQL())
}

func TestPredicateBuilderUnbalancedIsPermitted(t *testing.T) {
	var pb predicateBuilder
	pb.open()
	require.NoError(t, pb.add("A.a", OpEq, 1, And))

	assert.Equal(t, "( A.a = ?", pb.SQL())
	assert.False(t, pb.balanced())

	var closing predicateBuilder
	closing.close()
	closing.open()
	assert.Equal(t, ") (", closing.SQL())
	assert.False(t, closing.balanced())
}

func TestPredicateBuilderErrorLeavesStateUnchanged(t *testing.T) {
	var pb predicateBuilder
	require.NoError(t, pb.add("A.a", OpEq, 1, And))

	err := pb.add("A.b", OpIn, []int{}, And)
	require.ErrorIs(t, err, dbtypes.ErrEmptyInList)

	err = pb.add("A.b", OpEq, 1, Connector("XOR"))
	require.ErrorIs(t, err, dbtypes.ErrUnknownOperator)

	assert.Equal(t, "A.a = ?", pb.SQL())
	assert.Equal(t, []any{1}, pb.Args())
}

func TestPredicateBuilderArgsIsCopy(t *testing.T) {
	var pb predicateBuilder
	require.NoError(t, pb.add("A.a", OpEq, 1, And))

	args := pb.Args()
	args[0] = 99
	assert.Equal(t, []any{1}, pb.Args())
}

func TestOperatorValid(t *testing.T) {
	for _, op := range []Operator{OpEq, OpLte, OpLt, OpGt, OpGte, OpNotEq, OpIn, OpNotIn, OpIsNull} {
		assert.True(t, op.Valid(), op)
	}
	assert.False(t, Operator("LIKE").Valid())
	assert.False(t, Operator("").Valid())
}
