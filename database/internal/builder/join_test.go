package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbtypes "github.com/gaborage/bricksql/database/types"
)

func TestJoinKindKeyword(t *testing.T) {
	tests := []struct {
		kind JoinKind
		want string
	}{
		{JoinInner, "INNER JOIN"},
		{JoinLeft, "LEFT JOIN"},
		{JoinRight, "RIGHT JOIN"},
		{JoinOuter, "OUTER JOIN"},
		{JoinPlain, "JOIN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := tt.kind.keyword()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := JoinKind("CROSS").keyword()
	assert.ErrorIs(t, err, dbtypes.ErrUnknownJoinKind)
}

func TestJoinClauseSQL(t *testing.T) {
	jc := joinClause{
		keyword:     "LEFT JOIN",
		rightTable:  "Roles",
		rightAlias:  "B",
		leftColumn:  "A.role_id",
		rightColumn: "B.id",
		operator:    OpGte,
	}
	assert.Equal(t, "LEFT JOIN Roles B ON A.role_id >= B.id", jc.SQL())
}

// The IS NULL form only tests the left column; the right table takes no part
// in the condition.
func TestJoinClauseIsNullDropsRightSide(t *testing.T) {
	jc := joinClause{
		keyword:     "LEFT JOIN",
		rightTable:  "Roles",
		rightAlias:  "B",
		leftColumn:  "A.role_id",
		rightColumn: "B.id",
		operator:    OpIsNull,
	}
	assert.Equal(t, "LEFT JOIN Roles B ON A.role_id IS NULL", jc.SQL())
}

func TestValidateJoinOperator(t *testing.T) {
	for _, op := range []Operator{OpEq, OpLte, OpLt, OpGt, OpGte, OpNotEq, OpIsNull} {
		assert.NoError(t, validateJoinOperator(op), op)
	}
	assert.ErrorIs(t, validateJoinOperator(OpIn), dbtypes.ErrInvalidJoinOperator)
	assert.ErrorIs(t, validateJoinOperator(OpNotIn), dbtypes.ErrInvalidJoinOperator)
	assert.ErrorIs(t, validateJoinOperator(Operator("~")), dbtypes.ErrUnknownOperator)
}
