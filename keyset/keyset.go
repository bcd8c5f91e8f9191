// Package keyset implements keyset-cursor pagination: the sort-hash
// computation, CursorPayload encode/decode, lexicographic "strictly past
// the cursor" predicate synthesis, and cursor-value extraction from a
// result row.
package keyset

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lattice-sql/pgjsonql/compileerr"
	"github.com/lattice-sql/pgjsonql/pathlang"
	"github.com/lattice-sql/pgjsonql/sqlfrag"
)

// Part describes one compiled ORDER BY component participating in a keyset
// cursor, carrying both its SQL comparison expression and enough metadata
// (field name, JSON path) to extract a cursor value from a result row.
type Part struct {
	// Name is the field name (or JSON field name), used in the sort hash and
	// to look the part's raw value up in a result row map.
	Name string
	// Expression is the compiled SQL expression this part orders by; it is
	// reused verbatim (duplicated, not shared) in every comparison clause
	// that references it.
	Expression sqlfrag.Fragment
	Direction  string // "ASC" or "DESC"

	IsJSON      bool
	Path        pathlang.Path // meaningful when IsJSON
	JSONType    string        // meaningful when IsJSON: text|int|float|boolean|timestamp
	Aggregation string        // meaningful when IsJSON: min|max|avg|first|last, or ""

	// IsDate marks a non-JSON part whose column is declared as the date
	// field type, so its extracted cursor value is normalized to an
	// ISO-8601 string rather than passed through as-is.
	IsDate bool
}

// CursorPayload is the JSON shape persisted in an opaque cursor string:
// v holds one value per Part in order, t is the tiebreaker value, h
// is the sort hash the cursor was minted against.
type CursorPayload struct {
	V []any  `json:"v"`
	T string `json:"t"`
	H string `json:"h"`
}

// SortHash computes the 16-hex-char MD5 digest over parts' canonicalized
// sort key. A decoded cursor whose stored hash disagrees with the
// current query's hash is rejected by DecodeCursor.
func SortHash(parts []Part) string {
	var key string
	for _, p := range parts {
		if p.IsJSON {
			key += fmt.Sprintf("|%s:json:%s:%s:%s:%s", p.Name, p.Path.String(), p.JSONType, p.Aggregation, p.Direction)
		} else {
			key += fmt.Sprintf("|%s:%s", p.Name, p.Direction)
		}
	}
	sum := md5.Sum([]byte(key))
	return fmt.Sprintf("%x", sum)[:16]
}

// EncodeCursor builds the opaque cursor string for parts' current values and
// a tiebreaker value.
func EncodeCursor(parts []Part, values []any, tiebreaker string) (string, error) {
	if len(values) != len(parts) {
		return "", compileerr.Wrap(compileerr.ErrInvalidValueForOperator, "cursor value count must match order part count")
	}
	payload := CursorPayload{V: values, T: tiebreaker, H: SortHash(parts)}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", compileerr.Wrap(compileerr.ErrInvalidValueForOperator, "cursor payload is not json-encodable")
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeCursor decodes cursor and validates it against expectedHash. It
// returns ok=false (never an error) on any structural mismatch: malformed
// base64, non-JSON payload, wrong shape, or a hash that disagrees with
// expectedHash — a stale or tampered cursor is simply not usable, not a
// compile failure.
func DecodeCursor(cursor, expectedHash string) (payload CursorPayload, ok bool) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		if raw, err = base64.URLEncoding.DecodeString(cursor); err != nil {
			return CursorPayload{}, false
		}
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return CursorPayload{}, false
	}
	if payload.H != expectedHash {
		return CursorPayload{}, false
	}
	return payload, true
}

// BuildCondition synthesizes the lexicographic "strictly past the cursor"
// predicate for parts plus a trailing tiebreaker part, given a
// decoded payload.
func BuildCondition(parts []Part, payload CursorPayload, tiebreaker Part) (sqlfrag.Fragment, error) {
	if len(payload.V) != len(parts) {
		return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrInvalidValueForOperator, "cursor value count must match order part count")
	}

	var clauses []sqlfrag.Fragment
	for i, part := range parts {
		var prefix []sqlfrag.Fragment
		for j := 0; j < i; j++ {
			prefix = append(prefix, equalityClause(parts[j], payload.V[j]))
		}
		clause := append(prefix, comparisonClause(part, payload.V[i]))
		clauses = append(clauses, sqlfrag.Wrap("(", sqlfrag.Join(" AND ", clause...), ")"))
	}

	var finalPrefix []sqlfrag.Fragment
	for j, part := range parts {
		finalPrefix = append(finalPrefix, equalityClause(part, payload.V[j]))
	}
	finalPrefix = append(finalPrefix, comparisonClause(tiebreaker, payload.T))
	clauses = append(clauses, sqlfrag.Wrap("(", sqlfrag.Join(" AND ", finalPrefix...), ")"))

	return sqlfrag.Wrap("(", sqlfrag.Join(" OR ", clauses...), ")"), nil
}

// equalityClause builds "(expr) = $n" or, for a NULL cursor value,
// "(expr) IS NULL".
func equalityClause(part Part, value any) sqlfrag.Fragment {
	if value == nil {
		return sqlfrag.Wrap("(", part.Expression, ") IS NULL")
	}
	b := sqlfrag.NewBuilder()
	b.WriteString("(")
	b.AppendFragment(part.Expression)
	b.WriteString(") = ")
	b.WriteParam(value)
	text, params := b.Build()
	return sqlfrag.New(text, params)
}

// comparisonClause builds the strict-comparison clause for one part,
// choosing >/< per direction and applying PostgreSQL's default NULL-ordering rules: an ASC
// part with a NULL cursor value can have nothing after it (contributes
// FALSE); a DESC part with a NULL cursor value is satisfied by any non-NULL
// row (contributes "(expr) IS NOT NULL").
func comparisonClause(part Part, value any) sqlfrag.Fragment {
	if value == nil {
		if part.Direction == "DESC" {
			return sqlfrag.Wrap("(", part.Expression, ") IS NOT NULL")
		}
		return sqlfrag.New("FALSE", nil)
	}

	op := ">"
	if part.Direction == "DESC" {
		op = "<"
	}
	b := sqlfrag.NewBuilder()
	b.WriteString("(")
	b.AppendFragment(part.Expression)
	b.WriteString(") ").WriteString(op).WriteString(" ")
	b.WriteParam(value)
	text, params := b.Build()
	return sqlfrag.New(text, params)
}

// ExtractCursorValues reads one raw cursor value per part from a decoded
// result row keyed by field name. Regular fields read the column directly
// (a Date-typed part is normalized to an ISO-8601 string); JSON parts
// navigate the column's already-decoded JSON document by path.
func ExtractCursorValues(row map[string]any, parts []Part) ([]any, error) {
	values := make([]any, len(parts))
	for i, part := range parts {
		raw, ok := row[part.Name]
		if !ok {
			values[i] = nil
			continue
		}
		if part.IsJSON {
			values[i] = coercePrimitive(navigate(raw, part.Path))
			continue
		}
		values[i] = normalizeRegular(raw, part.IsDate)
	}
	return values, nil
}

func normalizeRegular(v any, isDate bool) any {
	if !isDate {
		return v
	}
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}

// navigate walks doc by path: Key segments index a JSON object, Index/Last
// segments index a JSON array, and a Wildcard segment always yields nil:
// no single element can represent the whole array in a cursor.
func navigate(doc any, path pathlang.Path) any {
	cur := doc
	for _, seg := range path {
		switch seg.Kind {
		case pathlang.Wildcard:
			return nil
		case pathlang.Key:
			m, ok := cur.(map[string]any)
			if !ok {
				return nil
			}
			cur = m[seg.Name]
		case pathlang.Index:
			arr, ok := cur.([]any)
			if !ok || seg.Idx < 0 || seg.Idx >= len(arr) {
				return nil
			}
			cur = arr[seg.Idx]
		case pathlang.Last:
			arr, ok := cur.([]any)
			if !ok || len(arr) == 0 {
				return nil
			}
			cur = arr[len(arr)-1]
		}
	}
	return cur
}

// coercePrimitive reduces a navigated JSON value to a primitive or nil,
// discarding object/array results.
func coercePrimitive(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		return nil
	default:
		return v
	}
}
