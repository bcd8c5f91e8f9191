// Package compileerr holds the shared error taxonomy raised by every
// compiler in this module except pathlang, which defines its own (path
// parsing happens earlier and is reported separately from compilation).
//
// Every sentinel here is wrapped, never returned bare, so callers can use
// errors.Is against the sentinel while still getting a human-readable
// detail string. Compilation is fatal on the first error: no partial SQL is
// ever returned alongside one of these.
package compileerr

import (
	"errors"
	"fmt"
)

// ErrCompile wraps every error this package's sentinels produce.
var ErrCompile = errors.New("compile")

var (
	// ErrUnknownOperator is returned for a JSON or scalar filter key that
	// is not a recognized operator.
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrOperatorRequiresNonEmptyPath is returned when an operator without
	// supportsSpecialPath() is used against the empty/root JSON path
	//.
	ErrOperatorRequiresNonEmptyPath = errors.New("operator requires non-empty path")

	// ErrInvalidValueForOperator is returned for a value shape the
	// operator cannot accept: a non-array for array_contains, an empty
	// array for array_contains, a non-string element under insensitive
	// mode where the operator requires a string, and similar.
	ErrInvalidValueForOperator = errors.New("invalid value for operator")

	// ErrUnsupportedFieldType is returned when fieldConfig declares a type
	// this compiler doesn't recognize.
	ErrUnsupportedFieldType = errors.New("unsupported field type")

	// ErrInvalidIdentifier is returned for a raw SQL identifier (table
	// alias, CTE name, column name) that fails the
	// ^[A-Za-z_][A-Za-z0-9_]*$ check.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrInvalidSearchValue is returned when a `search` operator's value
	// is not a non-empty string.
	ErrInvalidSearchValue = errors.New("invalid search value")

	// ErrEmptyFilter is returned for a typed filter object with no
	// recognized operator keys, distinct from an empty WhereTree node
	// (which means TRUE).
	ErrEmptyFilter = errors.New("empty filter")
)

// Wrap wraps sentinel with ErrCompile and a detail string, so callers can
// errors.Is against either the root or the specific sentinel.
func Wrap(sentinel error, detail string) error {
	return fmt.Errorf("%w: %w: %s", ErrCompile, sentinel, detail)
}
