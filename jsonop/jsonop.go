// Package jsonop holds the JSON operator table: the per-operator SQL each
// recognized JSON filter key compiles to, written once against an abstract
// pair of left-hand expressions so both the plain (non-wildcard) compiler
// and the wildcard compiler's per-element condition share one dispatch
// instead of duplicating logic per operator.
package jsonop

import (
	"github.com/lattice-sql/pgjsonql/compileerr"
	"github.com/lattice-sql/pgjsonql/sqlfrag"
)

// LeftExprs is the pair of JSONB reference forms compiled for a path:
// JSONB is the `(... #> ARRAY[...])::jsonb` form used for structural
// comparisons, Text is the `... #>> ARRAY[...]` form used for text/pattern
// comparisons. PathEmpty records whether the originating path was the
// root/special path, which changes "equals"'s semantics.
type LeftExprs struct {
	JSONB     sqlfrag.Fragment
	Text      sqlfrag.Fragment
	PathEmpty bool
}

// specialPathOperators lists the operator keys allowed against the
// root/special path. equals and search compare the
// whole document; not compares the document's text extraction with !=.
// The remaining operators all
// presuppose a sub-structure the path addresses, so they are rejected at
// the root with ErrOperatorRequiresNonEmptyPath.
var specialPathOperators = map[string]bool{
	"equals": true,
	"not":    true,
	"search": true,
}

// SupportsSpecialPath reports whether op may be applied against the
// root/special JSON path.
func SupportsSpecialPath(op string) bool {
	return specialPathOperators[op]
}

// Compile dispatches op against left, returning the compiled predicate
// fragment. "search" is not handled here: it is delegated to a dedicated
// compiler that needs the searchLanguage/searchType/searchIn metadata
// jsonfilter carries, not just a value.
func Compile(left LeftExprs, op string, value any, insensitive bool) (sqlfrag.Fragment, error) {
	switch op {
	case "equals":
		return compileEquals(left, value, insensitive)
	case "not":
		return compileNot(left, value, insensitive)
	case "gt":
		return compileCompare(left, ">", value)
	case "gte":
		return compileCompare(left, ">=", value)
	case "lt":
		return compileCompare(left, "<", value)
	case "lte":
		return compileCompare(left, "<=", value)
	case "string_contains":
		return compilePattern(left, value, insensitive, true, true)
	case "string_starts_with":
		return compilePattern(left, value, insensitive, false, true)
	case "string_ends_with":
		return compilePattern(left, value, insensitive, true, false)
	case "array_contains":
		return compileArrayContains(left, value, insensitive)
	case "array_starts_with":
		return compileArrayEdge(left, value, insensitive, "0")
	case "array_ends_with":
		return compileArrayEdge(left, value, insensitive, "-1")
	case "in":
		return compileList(left, value, insensitive, false)
	case "notIn":
		return compileList(left, value, insensitive, true)
	default:
		return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrUnknownOperator, op)
	}
}
