// Package jsonref builds the two JSONB reference forms the operators use
// for a non-wildcard path: the "jsonb path" (cast to jsonb, for structural
// comparisons) and the "text path" (extracted as text, for pattern and
// equality comparisons against primitives). Every operator in jsonfilter
// builds its left-hand expression through this package so the #>/#>>
// encoding is written in exactly one place.
package jsonref

import (
	"fmt"
	"strconv"

	"github.com/lattice-sql/pgjsonql/identifier"
	"github.com/lattice-sql/pgjsonql/pathlang"
	"github.com/lattice-sql/pgjsonql/sqlfrag"
)

// ColumnExpr returns the double-quoted, alias-qualified column reference
// `"alias"."column"`, validating both identifiers.
func ColumnExpr(alias, column string) (string, error) {
	a, err := identifier.Quote(alias)
	if err != nil {
		return "", err
	}
	c, err := identifier.Quote(column)
	if err != nil {
		return "", err
	}
	return a + "." + c, nil
}

// segmentText renders a single non-wildcard Segment as the text Postgres's
// #>/#>> path arrays expect: a property name for Key, a base-10 index for
// Index, and "-1" for Last — PostgreSQL's jsonb path operators natively
// accept a negative index to mean "count from the end," so Last needs no
// special-casing beyond emitting that literal.
func segmentText(seg pathlang.Segment) string {
	switch seg.Kind {
	case pathlang.Key:
		return seg.Name
	case pathlang.Index:
		return strconv.Itoa(seg.Idx)
	case pathlang.Last:
		return "-1"
	default:
		panic(fmt.Sprintf("jsonref: segment kind %v must not reach a non-wildcard path array", seg.Kind))
	}
}

// WritePathArray writes "ARRAY[$n,$n+1,...]" to b, binding one parameter per
// segment. Panics if path contains a Wildcard segment: wildcard paths must
// be compiled by the wildcard compiler, never reach here directly. Exported
// so the wildcard compiler can address a LATERAL correlation variable (not
// a column reference) with the same per-segment parameter encoding.
func WritePathArray(b *sqlfrag.Builder, path pathlang.Path) {
	b.WriteString("ARRAY[")
	for i, seg := range path {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(b.Param(segmentText(seg)))
	}
	b.WriteString("]")
}

// JSONB writes the "jsonb path" form to b: `(columnExpr #> ARRAY[...])::jsonb`
// for a non-empty path, or `(columnExpr)::jsonb` for the empty/root path
// (the "special path").
func JSONB(b *sqlfrag.Builder, columnExpr string, path pathlang.Path) {
	if len(path) == 0 {
		b.WriteString("(").WriteString(columnExpr).WriteString(")::jsonb")
		return
	}
	b.WriteString("(").WriteString(columnExpr).WriteString(" #> ")
	WritePathArray(b, path)
	b.WriteString(")::jsonb")
}

// Text writes the "text path" form to b: `columnExpr #>> ARRAY[...]`. The
// empty/root path extracts the whole value as text via an explicitly typed
// empty array (a bare ARRAY[] has no inferable element type).
func Text(b *sqlfrag.Builder, columnExpr string, path pathlang.Path) {
	if len(path) == 0 {
		b.WriteString(columnExpr).WriteString(" #>> ARRAY[]::text[]")
		return
	}
	b.WriteString(columnExpr).WriteString(" #>> ")
	WritePathArray(b, path)
}

// SegmentsText renders path as the []string form searchcompiler binds
// as a single "$n::text[]" parameter, as opposed to the one-parameter-per-
// segment ARRAY[$n,$n+1,...] form JSONB/Text use. Panics on a wildcard
// segment, for the same reason segmentText does.
func SegmentsText(path pathlang.Path) []string {
	out := make([]string, len(path))
	for i, seg := range path {
		out[i] = segmentText(seg)
	}
	return out
}

// JSONBFragment and TextFragment are convenience wrappers that build a
// fresh Builder, write the reference, and return the result as a Fragment,
// for operators that compose several jsonref calls before handing the
// combined SQL up to their caller.
func JSONBFragment(columnExpr string, path pathlang.Path) sqlfrag.Fragment {
	b := sqlfrag.NewBuilder()
	JSONB(b, columnExpr, path)
	text, params := b.Build()
	return sqlfrag.New(text, params)
}

func TextFragment(columnExpr string, path pathlang.Path) sqlfrag.Fragment {
	b := sqlfrag.NewBuilder()
	Text(b, columnExpr, path)
	text, params := b.Build()
	return sqlfrag.New(text, params)
}
