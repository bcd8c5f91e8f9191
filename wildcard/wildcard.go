// Package wildcard compiles a JSON operator against a path containing one
// or more `*` segments into a guarded EXISTS over jsonb_array_elements,
// recursing once per nested wildcard. The per-operator leaf condition
// itself is built by jsonop, the same table the non-wildcard compiler uses,
// so no operator logic is duplicated here.
package wildcard

import (
	"fmt"

	"github.com/lattice-sql/pgjsonql/compileerr"
	"github.com/lattice-sql/pgjsonql/jsonop"
	"github.com/lattice-sql/pgjsonql/jsonref"
	"github.com/lattice-sql/pgjsonql/pathlang"
	"github.com/lattice-sql/pgjsonql/sqlfrag"
)

// unsupported lists the operator keys with no existential reading over
// array elements; they are rejected rather than silently miscompiled.
var unsupported = map[string]bool{
	"in":     true,
	"notIn":  true,
	"search": true,
}

// Compile builds the AND-joined predicate for every key in keys, each
// compiled independently as its own existential EXISTS over path's first
// (and, recursively, any further) wildcard.
func Compile(columnExpr string, path pathlang.Path, keys []string, filter map[string]any, insensitive bool) (sqlfrag.Fragment, error) {
	var frags []sqlfrag.Fragment
	for _, key := range keys {
		if unsupported[key] {
			return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrUnknownOperator, key+" is not supported against a wildcard path")
		}
		frag, err := compileLevel(columnExpr, path, 0, key, filter[key], insensitive)
		if err != nil {
			return sqlfrag.Fragment{}, err
		}
		frags = append(frags, frag)
	}
	return sqlfrag.Join(" AND ", frags...), nil
}

// compileLevel compiles one EXISTS/jsonb_array_elements level for remaining,
// which must contain at least one wildcard. depth names this level's
// correlation variable so nested wildcards never collide.
func compileLevel(baseExpr string, remaining pathlang.Path, depth int, op string, value any, insensitive bool) (sqlfrag.Fragment, error) {
	before, after, _ := remaining.SplitAtFirstWildcard()
	alias := elemAlias(depth)
	arrayExpr := jsonref.JSONBFragment(baseExpr, before)

	var leaf sqlfrag.Fragment
	var err error
	if after.HasWildcard() {
		leaf, err = compileLevel(alias, after, depth+1, op, value, insensitive)
	} else {
		leaf, err = jsonop.Compile(leafLeftExprs(alias, after), op, value, insensitive)
	}
	if err != nil {
		return sqlfrag.Fragment{}, err
	}

	b := sqlfrag.NewBuilder()
	b.WriteString("EXISTS (SELECT 1 FROM jsonb_array_elements(")
	b.AppendFragment(arrayExpr)
	b.WriteString(") AS ").WriteString(alias).WriteString(" WHERE ")
	b.AppendFragment(leaf)
	b.WriteString(" AND jsonb_typeof(")
	b.AppendFragment(arrayExpr)
	b.WriteString(") = 'array')")
	text, params := b.Build()
	return sqlfrag.New(text, params), nil
}

// leafLeftExprs builds the jsonop.LeftExprs for a leaf condition evaluated
// against elemExpr (a LATERAL correlation variable, already jsonb-typed),
// further subscripted by after when after is non-empty. PathEmpty stays
// false even for an empty after: the element is a sub-structure the
// wildcard located, not the root document, so primitive equality compares
// its text extraction.
func leafLeftExprs(elemExpr string, after pathlang.Path) jsonop.LeftExprs {
	return jsonop.LeftExprs{
		JSONB: jsonref.JSONBFragment(elemExpr, after),
		Text:  jsonref.TextFragment(elemExpr, after),
	}
}

// elemAlias returns the correlation name for a LATERAL jsonb_array_elements
// at the given nesting depth (0 for the outermost wildcard).
func elemAlias(depth int) string {
	return fmt.Sprintf("elem%d", depth)
}
