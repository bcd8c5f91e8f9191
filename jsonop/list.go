package jsonop

import (
	"github.com/lattice-sql/pgjsonql/compileerr"
	"github.com/lattice-sql/pgjsonql/sqlfrag"
)

// compileList handles in/notIn: a disjunction (in) or conjunction
// (notIn) of text equalities against the path's text extraction, one per
// element. An empty list is the vacuous case: "in" can never match (FALSE),
// "notIn" always holds (TRUE), mirroring the scalar in/notIn.
func compileList(left LeftExprs, value any, insensitive, negate bool) (sqlfrag.Fragment, error) {
	items, ok := value.([]any)
	if !ok {
		return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrInvalidValueForOperator, "in/notIn requires an array")
	}
	if len(items) == 0 {
		if negate {
			return sqlfrag.New("TRUE", nil), nil
		}
		return sqlfrag.New("FALSE", nil), nil
	}

	sqlOp := "="
	joiner := " OR "
	if negate {
		sqlOp = "!="
		joiner = " AND "
	}

	var frags []sqlfrag.Fragment
	for _, item := range items {
		f, err := compileTextEquality(left.Text, sqlOp, item, insensitive)
		if err != nil {
			return sqlfrag.Fragment{}, err
		}
		frags = append(frags, f)
	}

	joined := sqlfrag.Join(joiner, frags...)
	return sqlfrag.Wrap("(", joined, ")"), nil
}
