package jsonop

import (
	"github.com/lattice-sql/pgjsonql/sqlfrag"
	"github.com/lattice-sql/pgjsonql/valuecodec"
)

// compileCompare handles gt/gte/lt/lte: both sides cast to jsonb,
// with an additional jsonb_typeof guard so a non-numeric node never
// satisfies the comparison.
func compileCompare(left LeftExprs, sqlOp string, value any) (sqlfrag.Fragment, error) {
	text, err := valuecodec.EncodeJSONB(value)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}

	b := sqlfrag.NewBuilder()
	b.AppendFragment(left.JSONB)
	b.WriteString(" ").WriteString(sqlOp).WriteString(" ")
	b.WriteParam(text)
	b.WriteString("::jsonb AND jsonb_typeof(")
	b.AppendFragment(left.JSONB)
	b.WriteString(") = 'number'")
	t, params := b.Build()
	return sqlfrag.New(t, params), nil
}
