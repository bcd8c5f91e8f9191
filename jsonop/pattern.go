package jsonop

import (
	"strings"

	"github.com/lattice-sql/pgjsonql/compileerr"
	"github.com/lattice-sql/pgjsonql/sqlfrag"
)

// escapeLike backslash-escapes the LIKE metacharacters so a pattern
// operator's value is matched literally rather than as a wildcard pattern.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}

// compilePattern handles string_contains/starts_with/ends_with:
// a LIKE predicate against the text path, LOWER-wrapped under insensitive
// mode. prefix/suffix select which ends carry the '%' wildcard.
func compilePattern(left LeftExprs, value any, insensitive, prefix, suffix bool) (sqlfrag.Fragment, error) {
	s, ok := value.(string)
	if !ok {
		return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrInvalidValueForOperator, "string pattern operator requires a string value")
	}

	pattern := escapeLike(s)
	if prefix {
		pattern = "%" + pattern
	}
	if suffix {
		pattern = pattern + "%"
	}

	b := sqlfrag.NewBuilder()
	if insensitive {
		b.WriteString("LOWER(")
		b.AppendFragment(left.Text)
		b.WriteString(") LIKE LOWER(")
		b.WriteParam(pattern)
		b.WriteString(") ESCAPE '\\'")
	} else {
		b.AppendFragment(left.Text)
		b.WriteString(" LIKE ")
		b.WriteParam(pattern)
		b.WriteString(" ESCAPE '\\'")
	}
	t, params := b.Build()
	return sqlfrag.New(t, params), nil
}
