package pathlang

import (
	"errors"
	"fmt"
)

// ErrPath wraps every parsing error returned by this package.
var ErrPath = errors.New("pathlang")

// Sentinel errors identifying the specific parse failure. Compare
// with errors.Is against these, not against ErrPath, to distinguish them.
var (
	// ErrEmptyPath is returned for an empty or whitespace-only path string.
	ErrEmptyPath = errors.New("empty path")

	// ErrUnclosedBracket is returned when a "[" has no matching "]".
	ErrUnclosedBracket = errors.New("unclosed bracket")

	// ErrUnsupportedNegativeIndex is returned for a bracket index less than
	// -1 (only -1, the last-element sentinel, is supported).
	ErrUnsupportedNegativeIndex = errors.New("unsupported negative index")

	// ErrRootPathNotSupported is returned for the bare "$" path, which has
	// no segments and no defined meaning distinct from the empty path.
	ErrRootPathNotSupported = errors.New("root path not supported")
)

// parseError wraps one of the sentinel errors above with positional detail
// and marks it as an ErrPath for errors.Is(err, ErrPath).
func parseError(sentinel error, detail string) error {
	return fmt.Errorf("%w: %w: %s", ErrPath, sentinel, detail)
}

// ValidationResult is the outcome of Validate, mirroring the
// `{ valid: true } | { valid: false, error }` shape callers pattern-match on.
type ValidationResult struct {
	Valid bool
	Err   error
}

// Validate parses s purely to check whether it is well-formed, without
// returning the parsed segments. It never returns Go errors; a malformed
// path is reported via ValidationResult.Err instead.
func Validate(s string) ValidationResult {
	if _, err := Parse(s); err != nil {
		return ValidationResult{Valid: false, Err: err}
	}
	return ValidationResult{Valid: true}
}
