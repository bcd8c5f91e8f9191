// Package valuecodec turns a Go value taken from a filter object into
// either a bound parameter or a JSONB literal, and parses the date inputs
// the date filters accept.
package valuecodec

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	pathtypes "github.com/lattice-sql/pgjsonql/path/types"
)

// EncodeJSONB canonically JSON-serializes an object or array value for
// binding as a single "::jsonb" parameter. Scalars should be bound directly
// via Builder.Param instead; this is only for the object/array case.
func EncodeJSONB(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("valuecodec: encode jsonb: %w", err)
	}
	return string(b), nil
}

// ParseDate normalizes a date filter value to a time.Time. It
// accepts a native time.Time, returning it unchanged, or a string, parsed by
// pathtypes.ParseTime against the SQL/JSON date, time, and timestamp forms
// PostgreSQL's to_json/to_jsonb functions produce, including RFC 3339's "T"
// separator.
func ParseDate(v any) (time.Time, error) {
	switch v := v.(type) {
	case time.Time:
		return v, nil
	case string:
		if t, ok := pathtypes.ParseTime(v); ok {
			return t, nil
		}
		return time.Time{}, fmt.Errorf("valuecodec: %q is not a recognized date format", v)
	default:
		return time.Time{}, fmt.Errorf("valuecodec: date value must be a time.Time or ISO-8601 string, got %T", v)
	}
}

// AsTimestamptz adapts t into a pgtype.Timestamptz, the wire-level type a
// pgx-driven PostgreSQL caller expects for a timestamptz-bound parameter.
// Binding through pgtype instead of a
// raw time.Time keeps date comparisons
// honest about timezone handling at the driver boundary.
func AsTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// IsCollection reports whether v is a JSON object or array, i.e. whether it
// must go through EncodeJSONB rather than being bound as a scalar
// parameter directly.
func IsCollection(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}
