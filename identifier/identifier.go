// Package identifier validates raw strings that get embedded directly into
// emitted SQL text: table aliases, CTE names, and column names. These
// never go through Builder.Param because they are identifiers, not values —
// PostgreSQL has no placeholder syntax for them — so they must be validated
// instead of parameterized.
package identifier

import (
	"regexp"

	"github.com/lattice-sql/pgjsonql/compileerr"
)

// pattern is the accepted identifier grammar: a letter or
// underscore, followed by any number of letters, digits, or underscores.
var pattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate returns nil if name is a safe bare SQL identifier, and an
// ErrInvalidIdentifier-wrapped error otherwise.
func Validate(name string) error {
	if !pattern.MatchString(name) {
		return compileerr.Wrap(compileerr.ErrInvalidIdentifier, name)
	}
	return nil
}

// Quote double-quotes name for use as a SQL identifier after validating it.
// Returns an error instead of quoting an unsafe name.
func Quote(name string) (string, error) {
	if err := Validate(name); err != nil {
		return "", err
	}
	return `"` + name + `"`, nil
}

// MustQuote is like Quote but panics on an invalid identifier. Reserved for
// call sites that have already validated name (for example, a constant
// column name baked into the compiler itself) and want to fail loudly on a
// programming error rather than propagate it as a caller-facing error.
func MustQuote(name string) string {
	q, err := Quote(name)
	if err != nil {
		panic(err)
	}
	return q
}
