package query

import (
	"github.com/lattice-sql/pgjsonql/fieldtype"
	"github.com/lattice-sql/pgjsonql/keyset"
	"github.com/lattice-sql/pgjsonql/orderby"
	"github.com/lattice-sql/pgjsonql/sqlfrag"
)

// Part is the compiled ORDER BY component keyset pagination walks; see
// keyset.Part.
type Part = keyset.Part

// CursorPayload is a decoded keyset cursor's JSON shape; see
// keyset.CursorPayload.
type CursorPayload = keyset.CursorPayload

// GenerateOrderByParts compiles orderBy into the cursor parts keyset
// pagination consumes: the same expressions GenerateOrderBy renders, plus
// the per-part metadata ExtractCursorValues and ComputeSortHash read. Use
// this rather than constructing Part values by hand so the running query's
// ORDER BY and its cursors can never disagree.
func GenerateOrderByParts(tableAlias string, fieldConfig fieldtype.Config, orderBy any) ([]Part, error) {
	return orderby.Parts(tableAlias, fieldConfig, orderBy)
}

// EncodeCursor builds the opaque cursor string for parts' current values
// and a tiebreaker value.
func EncodeCursor(parts []Part, values []any, tiebreaker string) (string, error) {
	return keyset.EncodeCursor(parts, values, tiebreaker)
}

// DecodeCursor decodes cursor and validates it against expectedHash.
func DecodeCursor(cursor, expectedHash string) (CursorPayload, bool) {
	return keyset.DecodeCursor(cursor, expectedHash)
}

// ComputeSortHash computes the sort hash a cursor is minted and validated
// against.
func ComputeSortHash(parts []Part) string {
	return keyset.SortHash(parts)
}

// ExtractCursorValues reads one cursor value per part out of a decoded
// result row.
func ExtractCursorValues(row map[string]any, parts []Part) ([]any, error) {
	return keyset.ExtractCursorValues(row, parts)
}

// BuildKeysetCondition synthesizes the "strictly past the cursor" predicate
// for parts plus a trailing tiebreaker.
func BuildKeysetCondition(parts []Part, payload CursorPayload, tiebreaker Part) (sqlfrag.Fragment, error) {
	return keyset.BuildCondition(parts, payload, tiebreaker)
}
