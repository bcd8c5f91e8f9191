package pathlang

import (
	"strconv"
	"strings"

	"github.com/smasher164/xid"
)

// Parse normalizes a string-form path into its canonical Path:
//
//   - An optional "$." root marker is stripped; a bare "$" is rejected.
//   - "." separates bare property names; consecutive, leading, and trailing
//     dots collapse silently.
//   - "[0]" is a non-negative array index, "[-1]" normalizes to the Last
//     sentinel, "[*]" is a Wildcard, and "[name]" (optionally double-quoted,
//     for a name containing ".", "[", "]", or the quote character itself) is
//     a property name.
func Parse(s string) (Path, error) {
	if strings.TrimSpace(s) == "" {
		return nil, parseError(ErrEmptyPath, "path is empty or whitespace-only")
	}

	rest := s
	if rest == "$" {
		return nil, parseError(ErrRootPathNotSupported, `bare "$" has no addressable segments`)
	}
	rest = strings.TrimPrefix(rest, "$.")

	var segs Path
	i, n := 0, len(rest)
	for i < n {
		switch rest[i] {
		case '.':
			// Collapse consecutive/leading/trailing dots.
			i++
		case '[':
			seg, next, err := parseBracket(rest, i)
			if err != nil {
				return nil, err
			}
			segs = append(segs, seg)
			i = next
		default:
			start := i
			for i < n && rest[i] != '.' && rest[i] != '[' {
				i++
			}
			// A dot-separated "*" is the literal property name, not the
			// wildcard: only "[*]" (or a "*" element in the pre-split list
			// form) produces the Wildcard sentinel.
			segs = append(segs, KeySegment(rest[start:i]))
		}
	}

	return segs, nil
}

// ParseAny normalizes a path given either as a pre-split segment list
// ([]string or []any of strings) or as a single path string. A pre-split
// list is used as-is after negative-index
// normalization: a bare "*" element becomes a Wildcard, "-1" becomes Last,
// any other integer-looking element becomes an Index, and everything else is
// a literal Key (dots inside a list element are NOT treated as separators).
func ParseAny(path any) (Path, error) {
	switch v := path.(type) {
	case string:
		return Parse(v)
	case []string:
		return parseSegmentList(v)
	case []any:
		strs := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				s = toPathElementString(item)
			}
			strs[i] = s
		}
		return parseSegmentList(strs)
	case Path:
		return v, nil
	default:
		return nil, parseError(ErrEmptyPath, "path must be a string or a list of segment strings")
	}
}

func toPathElementString(v any) string {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func parseSegmentList(elems []string) (Path, error) {
	if len(elems) == 0 {
		return nil, parseError(ErrEmptyPath, "segment list is empty")
	}

	segs := make(Path, 0, len(elems))
	for _, el := range elems {
		if el == "*" {
			segs = append(segs, WildcardSegment())
			continue
		}
		if num, ok := parseIntegerLiteral(el); ok {
			if num < 0 {
				if num != -1 {
					return nil, parseError(ErrUnsupportedNegativeIndex, el)
				}
				segs = append(segs, LastSegment())
				continue
			}
			segs = append(segs, IndexSegment(num))
			continue
		}
		segs = append(segs, KeySegment(el))
	}
	return segs, nil
}

// parseBracket parses a "[...]" subscript starting at s[i] == '[', returning
// the decoded Segment and the index immediately following the closing ']'.
func parseBracket(s string, i int) (Segment, int, error) {
	j := i + 1
	if j >= len(s) {
		return Segment{}, 0, parseError(ErrUnclosedBracket, s[i:])
	}

	if s[j] == '"' {
		name, end, err := scanQuoted(s, j)
		if err != nil {
			return Segment{}, 0, err
		}
		if end >= len(s) || s[end] != ']' {
			return Segment{}, 0, parseError(ErrUnclosedBracket, s[i:])
		}
		return KeySegment(name), end + 1, nil
	}

	end := strings.IndexByte(s[j:], ']')
	if end == -1 {
		return Segment{}, 0, parseError(ErrUnclosedBracket, s[i:])
	}
	content := s[j : j+end]
	closeIdx := j + end + 1

	switch content {
	case "*":
		return WildcardSegment(), closeIdx, nil
	case "last":
		// "[last]" is the literal property name "last", not the
		// Last sentinel. Only "-1" produces the sentinel.
		return KeySegment("last"), closeIdx, nil
	}

	if num, ok := parseIntegerLiteral(content); ok {
		if num < 0 {
			if num != -1 {
				return Segment{}, 0, parseError(ErrUnsupportedNegativeIndex, content)
			}
			return LastSegment(), closeIdx, nil
		}
		return IndexSegment(num), closeIdx, nil
	}

	return KeySegment(content), closeIdx, nil
}

// scanQuoted decodes a double-quoted string starting at s[start] == '"',
// honoring backslash escapes for '"' and '\\'. It returns the decoded text
// and the index of the character following the closing quote.
func scanQuoted(s string, start int) (string, int, error) {
	var buf strings.Builder
	i := start + 1
	for i < len(s) {
		switch s[i] {
		case '"':
			return buf.String(), i + 1, nil
		case '\\':
			if i+1 >= len(s) {
				return "", 0, parseError(ErrUnclosedBracket, s[start:])
			}
			buf.WriteByte(s[i+1])
			i += 2
		default:
			buf.WriteByte(s[i])
			i++
		}
	}
	return "", 0, parseError(ErrUnclosedBracket, s[start:])
}

// parseIntegerLiteral reports whether content is a base-10 integer literal
// (optionally signed), returning its value.
func parseIntegerLiteral(content string) (int, bool) {
	if content == "" {
		return 0, false
	}
	n, err := strconv.Atoi(content)
	if err != nil {
		return 0, false
	}
	return n, true
}

// isBareIdentRune classifies the characters allowed in an unquoted property
// name: '_' and Unicode XID_Start in first position, '_' and Unicode
// XID_Continue thereafter.
func isBareIdentRune(ch rune, i int) bool {
	return ch == '_' || (i == 0 && xid.Start(ch)) || (i > 0 && xid.Continue(ch))
}

// looksLikeBareIdent reports whether name can be written as a bare,
// unquoted path segment: non-empty and composed entirely of identifier
// runes per isBareIdentRune.
func looksLikeBareIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, ch := range name {
		if !isBareIdentRune(ch, i) {
			return false
		}
	}
	return true
}
