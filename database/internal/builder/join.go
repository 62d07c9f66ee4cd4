package builder

import (
	"fmt"

	dbtypes "github.com/gaborage/bricksql/database/types"
)

// JoinKind selects the JOIN keyword. JoinPlain renders a bare JOIN.
type JoinKind string

const (
	JoinInner JoinKind = "INNER"
	JoinLeft  JoinKind = "LEFT"
	JoinRight JoinKind = "RIGHT"
	JoinOuter JoinKind = "OUTER"
	JoinPlain JoinKind = ""
)

func (k JoinKind) keyword() (string, error) {
	switch k {
	case JoinPlain:
		return "JOIN", nil
	case JoinInner, JoinLeft, JoinRight, JoinOuter:
		return string(k) + " JOIN", nil
	default:
		return "", fmt.Errorf("%w: %q", dbtypes.ErrUnknownJoinKind, k)
	}
}

// joinClause is one JOIN in issue order. Columns and table are already
// rendered for the dialect.
type joinClause struct {
	keyword     string
	rightTable  string
	rightAlias  string
	leftColumn  string
	rightColumn string
	operator    Operator
}

// SQL renders "<KIND> JOIN <table> <alias> ON <left> <op> <right>".
// An IS NULL join drops the right-hand side and tests only the left column.
func (jc joinClause) SQL() string {
	on := jc.leftColumn + " " + string(jc.operator)
	if jc.operator != OpIsNull {
		on += " " + jc.rightColumn
	}
	return jc.keyword + " " + jc.rightTable + " " + jc.rightAlias + " ON " + on
}

func validateJoinOperator(op Operator) error {
	if !op.Valid() {
		return fmt.Errorf("%w: %q", dbtypes.ErrUnknownOperator, op)
	}
	if op == OpIn || op == OpNotIn {
		return fmt.Errorf("%w: %s", dbtypes.ErrInvalidJoinOperator, op)
	}
	return nil
}
