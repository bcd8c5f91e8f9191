// Package pathlang parses and renders the dotted/bracket/wildcard JSON path
// syntax used to address a value inside a JSONB column. It normalizes both
// string and pre-split array forms into a canonical, comparable segment
// list consumed by every other compiler in this module.
package pathlang

import (
	"strconv"
	"strings"
)

// Kind distinguishes the four shapes a Segment can take.
type Kind uint8

const (
	// Key addresses a named object property.
	Key Kind = iota
	// Index addresses a zero-based array element.
	Index
	// Last addresses the final element of an array (the normalized form of
	// the literal index -1).
	Last
	// Wildcard matches every element of the enclosing array.
	Wildcard
)

// Segment is one step of a canonical path. Exactly one of Name or Idx is
// meaningful, depending on Kind.
type Segment struct {
	Kind Kind
	Name string // valid when Kind == Key
	Idx  int    // valid when Kind == Index
}

// KeySegment returns a Key segment named name.
func KeySegment(name string) Segment { return Segment{Kind: Key, Name: name} }

// IndexSegment returns an Index segment at position idx.
func IndexSegment(idx int) Segment { return Segment{Kind: Index, Idx: idx} }

// LastSegment returns the Last sentinel segment.
func LastSegment() Segment { return Segment{Kind: Last} }

// WildcardSegment returns the Wildcard sentinel segment.
func WildcardSegment() Segment { return Segment{Kind: Wildcard} }

// Path is a canonical, normalized sequence of Segments. An empty Path
// denotes the root of the JSONB value (the "special path").
type Path []Segment

// HasWildcard reports whether p contains one or more Wildcard segments.
func (p Path) HasWildcard() bool {
	for _, s := range p {
		if s.Kind == Wildcard {
			return true
		}
	}
	return false
}

// WildcardCount returns the number of Wildcard segments in p.
func (p Path) WildcardCount() int {
	n := 0
	for _, s := range p {
		if s.Kind == Wildcard {
			n++
		}
	}
	return n
}

// SplitAtFirstWildcard splits p at its first Wildcard segment, returning the
// segments before it (before) and the segments after it (after). The
// Wildcard segment itself is consumed by the split and appears in neither
// slice. The second return value is false if p has no wildcard, in which
// case before equals p and after is nil.
func (p Path) SplitAtFirstWildcard() (before, after Path, ok bool) {
	for i, s := range p {
		if s.Kind == Wildcard {
			return p[:i], p[i+1:], true
		}
	}
	return p, nil, false
}

// Equal reports whether p and other have the same segments in the same
// order.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i, s := range p {
		o := other[i]
		if s.Kind != o.Kind || s.Name != o.Name || s.Idx != o.Idx {
			return false
		}
	}
	return true
}

// String renders p back into dotted/bracket path syntax. It is the inverse
// of Parse: Parse(s.String()) reproduces s for any Path returned by Parse.
func (p Path) String() string {
	buf := new(strings.Builder)
	for i, seg := range p {
		switch seg.Kind {
		case Wildcard:
			buf.WriteString("[*]")
		case Last:
			buf.WriteString("[-1]")
		case Index:
			buf.WriteString("[")
			buf.WriteString(strconv.Itoa(seg.Idx))
			buf.WriteString("]")
		case Key:
			if needsBracketQuote(seg.Name) {
				buf.WriteString("[")
				buf.WriteString(quoteSegmentName(seg.Name))
				buf.WriteString("]")
			} else {
				if i > 0 {
					buf.WriteString(".")
				}
				buf.WriteString(seg.Name)
			}
		}
	}
	return buf.String()
}
