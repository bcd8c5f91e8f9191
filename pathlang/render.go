package pathlang

import "strings"

// Render is the exported form of Path.String, provided as its own function
// (per SPEC_FULL.md's "segmentsToString inverse renderer") so callers that
// build a Path without Parse can still render one.
func Render(p Path) string { return p.String() }

// needsBracketQuote reports whether a Key segment named name must be
// rendered as a quoted "[...]" subscript rather than a bare dotted segment.
// Any segment containing '.', '[', ']', or
// '"' requires bracket-quoting; this also bracket-quotes any name that isn't
// a valid bare identifier (e.g. starts with a digit, or is empty), so Render
// always produces a string that re-parses to the same Path.
func needsBracketQuote(name string) bool {
	if strings.ContainsAny(name, `.[]"`) {
		return true
	}
	return !looksLikeBareIdent(name)
}

// quoteSegmentName double-quotes name for use inside a "[...]" subscript,
// escaping '"' and '\\'.
func quoteSegmentName(name string) string {
	var buf strings.Builder
	buf.WriteByte('"')
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '"', '\\':
			buf.WriteByte('\\')
			buf.WriteByte(name[i])
		default:
			buf.WriteByte(name[i])
		}
	}
	buf.WriteByte('"')
	return buf.String()
}
