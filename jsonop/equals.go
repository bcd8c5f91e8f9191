package jsonop

import (
	"fmt"

	"github.com/lattice-sql/pgjsonql/sqlfrag"
	"github.com/lattice-sql/pgjsonql/valuecodec"
)

// compileEquals: at the root path the
// whole document is compared as JSONB regardless of value shape; at a
// non-empty path an object/array value compares as JSONB, a primitive value
// compares as text (optionally folded through LOWER).
func compileEquals(left LeftExprs, value any, insensitive bool) (sqlfrag.Fragment, error) {
	if left.PathEmpty || valuecodec.IsCollection(value) {
		return compileJSONBEquality(left.JSONB, "=", value)
	}
	return compileTextEquality(left.Text, "=", value, insensitive)
}

// compileNot emits "not" as text inequality against the
// stringified value.
func compileNot(left LeftExprs, value any, insensitive bool) (sqlfrag.Fragment, error) {
	return compileTextEquality(left.Text, "!=", value, insensitive)
}

// compileJSONBEquality compares left (a jsonb-cast expression) against
// value's JSON encoding, cast to jsonb.
func compileJSONBEquality(left sqlfrag.Fragment, sqlOp string, value any) (sqlfrag.Fragment, error) {
	text, err := valuecodec.EncodeJSONB(value)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}

	b := sqlfrag.NewBuilder()
	b.AppendFragment(left)
	b.WriteString(" ").WriteString(sqlOp).WriteString(" ")
	b.WriteParam(text)
	b.WriteString("::jsonb")
	t, params := b.Build()
	return sqlfrag.New(t, params), nil
}

// compileTextEquality compares left (a #>> text-extraction expression)
// against value stringified into the form Postgres's text extraction would
// produce, optionally folding both sides through LOWER. The fold happens in
// SQL, not in Go: the bound parameter always keeps the caller's original
// casing so it reads back unchanged.
func compileTextEquality(left sqlfrag.Fragment, sqlOp string, value any, insensitive bool) (sqlfrag.Fragment, error) {
	text, err := stringifyForText(value)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}

	b := sqlfrag.NewBuilder()
	if insensitive {
		b.WriteString("LOWER(")
		b.AppendFragment(left)
		b.WriteString(") ").WriteString(sqlOp).WriteString(" LOWER(")
		b.WriteParam(text)
		b.WriteString(")")
	} else {
		b.AppendFragment(left)
		b.WriteString(" ").WriteString(sqlOp).WriteString(" ")
		b.WriteParam(text)
	}
	t, params := b.Build()
	return sqlfrag.New(t, params), nil
}

// stringifyForText renders value the way a #>> text extraction would
// produce it: objects/arrays as their canonical JSON text, everything else
// via its natural Go formatting.
func stringifyForText(value any) (string, error) {
	if valuecodec.IsCollection(value) {
		return valuecodec.EncodeJSONB(value)
	}
	if s, ok := value.(string); ok {
		return s, nil
	}
	return fmt.Sprint(value), nil
}
