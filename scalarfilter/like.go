package scalarfilter

import (
	"strings"

	"github.com/lattice-sql/pgjsonql/compileerr"
	"github.com/lattice-sql/pgjsonql/sqlfrag"
)

// escapeLike backslash-escapes the LIKE metacharacters '%', '_' and '\' in
// s so a contains/startsWith/endsWith value is matched literally rather
// than as a pattern.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}

// compileLike builds a LIKE predicate for the contains/startsWith/endsWith
// operators, wrapping both sides in LOWER(...) when insensitive is set.
// prefix/suffix control which ends get the '%' wildcard: contains sets
// both, startsWith only suffix, endsWith only prefix.
func compileLike(columnExpr string, value any, insensitive, prefix, suffix bool) (sqlfrag.Fragment, error) {
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
		b.WriteString("LOWER(").WriteString(columnExpr).WriteString(") LIKE LOWER(")
		b.WriteParam(pattern)
		b.WriteString(") ESCAPE '\\'")
	} else {
		b.WriteString(columnExpr).WriteString(" LIKE ")
		b.WriteParam(pattern)
		b.WriteString(" ESCAPE '\\'")
	}
	text, params := b.Build()
	return sqlfrag.New(text, params), nil
}
