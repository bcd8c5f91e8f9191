package jsonop

import (
	"github.com/lattice-sql/pgjsonql/compileerr"
	"github.com/lattice-sql/pgjsonql/sqlfrag"
	"github.com/lattice-sql/pgjsonql/valuecodec"
)

// compileArrayContains handles array_contains: the value is
// always an array. Insensitive mode is restricted to a single string
// element (an EXISTS over jsonb_array_elements_text, since `@>` has no
// case-folding notion); the plain case is a structural containment test
// guarded by jsonb_typeof.
func compileArrayContains(left LeftExprs, value any, insensitive bool) (sqlfrag.Fragment, error) {
	items, ok := value.([]any)
	if !ok {
		return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrInvalidValueForOperator, "array_contains requires an array value")
	}
	if len(items) == 0 {
		return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrInvalidValueForOperator, "array_contains requires a non-empty array value")
	}

	if insensitive {
		if len(items) != 1 {
			return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrInvalidValueForOperator, "array_contains in insensitive mode requires exactly one element")
		}
		s, ok := items[0].(string)
		if !ok {
			return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrInvalidValueForOperator, "array_contains in insensitive mode requires a string element")
		}
		b := sqlfrag.NewBuilder()
		b.WriteString("EXISTS (SELECT 1 FROM jsonb_array_elements_text(")
		b.AppendFragment(left.JSONB)
		b.WriteString(") e WHERE LOWER(e) = LOWER(")
		b.WriteParam(s)
		b.WriteString("))")
		t, params := b.Build()
		return sqlfrag.New(t, params), nil
	}

	text, err := valuecodec.EncodeJSONB(items)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}
	b := sqlfrag.NewBuilder()
	b.AppendFragment(left.JSONB)
	b.WriteString(" @> ")
	b.WriteParam(text)
	b.WriteString("::jsonb AND jsonb_typeof(")
	b.AppendFragment(left.JSONB)
	b.WriteString(") = 'array'")
	t, params := b.Build()
	return sqlfrag.New(t, params), nil
}

// compileArrayEdge handles array_starts_with/array_ends_with:
// index is the Postgres "->" subscript text ("0" or "-1", the latter
// relying on the same negative-index-from-end support #>/#>> have).
func compileArrayEdge(left LeftExprs, value any, insensitive bool, index string) (sqlfrag.Fragment, error) {
	if insensitive {
		s, ok := value.(string)
		if !ok {
			return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrInvalidValueForOperator, "array edge operator in insensitive mode requires a string value")
		}
		b := sqlfrag.NewBuilder()
		b.WriteString("LOWER((")
		b.AppendFragment(left.JSONB)
		b.WriteString(")->>").WriteString(index).WriteString(") = LOWER(")
		b.WriteParam(s)
		b.WriteString(")")
		t, params := b.Build()
		return sqlfrag.New(t, params), nil
	}

	text, err := valuecodec.EncodeJSONB(value)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}
	b := sqlfrag.NewBuilder()
	b.WriteString("(")
	b.AppendFragment(left.JSONB)
	b.WriteString(")->").WriteString(index).WriteString(" = ")
	b.WriteParam(text)
	b.WriteString("::jsonb")
	t, params := b.Build()
	return sqlfrag.New(t, params), nil
}
