// Package sqlfrag provides the parameter-safe SQL text accumulator shared by
// every compiler in this module: a small fragment type carrying SQL text
// alongside its bound values, with a concatenation operator that preserves
// placeholder ordering. A Builder never lets a caller format a value into
// SQL text — the only way to bind a value is Builder.Param, which appends it
// to the ordered parameter list and returns its "$N" placeholder.
package sqlfrag

import (
	"strconv"
	"strings"
)

// Builder accumulates SQL text and its ordered bind parameters. The zero
// value is ready to use. A Builder is not safe for concurrent use; each
// compiler call constructs its own — compilation is a pure function with
// no shared state.
type Builder struct {
	text   strings.Builder
	params []any
}

// NewBuilder returns a Builder from the active Factory: the package default,
// or whatever a host registered through SetFactory before first use.
func NewBuilder() *Builder {
	return defaultFactory.NewBuilder()
}

// newBuilder is the raw constructor behind the default Factory.
func newBuilder() *Builder {
	return &Builder{}
}

// WriteString appends literal SQL text. It never accepts a user-supplied
// value; use Param for that.
func (b *Builder) WriteString(s string) *Builder {
	b.text.WriteString(s)
	return b
}

// Param appends value to the ordered parameter list and returns its
// positional placeholder ("$N", 1-indexed) without writing it to the text —
// callers write the returned placeholder themselves, which keeps the write
// site visible at the call site instead of hidden inside Param.
func (b *Builder) Param(value any) string {
	b.params = append(b.params, value)
	return "$" + strconv.Itoa(len(b.params))
}

// WriteParam is sugar for b.WriteString(b.Param(value)).
func (b *Builder) WriteParam(value any) *Builder {
	b.WriteString(b.Param(value))
	return b
}

// ParamCount returns the number of parameters bound so far.
func (b *Builder) ParamCount() int {
	return len(b.params)
}

// Len returns the number of bytes of SQL text written so far.
func (b *Builder) Len() int {
	return b.text.Len()
}

// Build returns the accumulated SQL text and ordered parameter slice. The
// returned slice is a copy; further writes to b do not affect it.
func (b *Builder) Build() (string, []any) {
	params := make([]any, len(b.params))
	copy(params, b.params)
	return b.text.String(), params
}

// Fragment is an immutable, already-built piece of parameterized SQL: text
// plus the values its placeholders reference, renumbered relative to
// whatever Builder it is eventually appended into. Compilers that produce a
// self-contained piece of SQL independently of the rest of the query (for
// example, one AND-ed child of a WHERE tree) build a Fragment and the caller
// splices it in with Builder.AppendFragment.
type Fragment struct {
	Text   string
	Params []any
}

// Empty reports whether f carries no SQL text.
func (f Fragment) Empty() bool {
	return f.Text == ""
}

// New returns a Fragment built from a Builder's output.
func New(text string, params []any) Fragment {
	return Fragment{Text: text, Params: params}
}

// AppendFragment splices f into b: f's placeholders are renumbered to start
// after b's existing parameters, so concatenation never produces a
// placeholder gap or collision regardless of how many fragments came before.
func (b *Builder) AppendFragment(f Fragment) *Builder {
	if f.Empty() {
		return b
	}
	offset := len(b.params)
	b.text.WriteString(renumberPlaceholders(f.Text, offset))
	b.params = append(b.params, f.Params...)
	return b
}

// renumberPlaceholders rewrites every "$N" placeholder in text by adding
// offset to N. It is the only place in the package that parses placeholder
// text back out of SQL, and it exists solely to let independently-built
// Fragments be concatenated; primary compilation always goes through
// Builder.Param directly, which never needs renumbering.
func renumberPlaceholders(text string, offset int) string {
	if offset == 0 {
		return text
	}

	var out strings.Builder
	out.Grow(len(text))

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '$' || i+1 >= len(text) || text[i+1] < '0' || text[i+1] > '9' {
			out.WriteByte(c)
			continue
		}

		j := i + 1
		for j < len(text) && text[j] >= '0' && text[j] <= '9' {
			j++
		}
		n, err := strconv.Atoi(text[i+1 : j])
		if err != nil {
			out.WriteString(text[i:j])
		} else {
			out.WriteByte('$')
			out.WriteString(strconv.Itoa(n + offset))
		}
		i = j - 1
	}

	return out.String()
}

// Join concatenates frags with sep between each non-empty one through the
// active Factory; see join for the default behavior.
func Join(sep string, frags ...Fragment) Fragment {
	return defaultFactory.Join(sep, frags...)
}

// join concatenates frags with sep between each non-empty one, returning a
// single Fragment whose placeholders are contiguously renumbered. Empty
// fragments are skipped entirely, matching the where compiler's rule that
// a vacuous OR child contributes nothing.
func join(sep string, frags ...Fragment) Fragment {
	b := NewBuilder()
	first := true
	for _, f := range frags {
		if f.Empty() {
			continue
		}
		if !first {
			b.WriteString(sep)
		}
		first = false
		b.AppendFragment(f)
	}
	text, params := b.Build()
	return New(text, params)
}

// Wrap wraps f in the given prefix/suffix text (e.g. "(" / ")"), leaving its
// parameters untouched. A no-op on an empty Fragment.
func Wrap(prefix string, f Fragment, suffix string) Fragment {
	if f.Empty() {
		return f
	}
	return New(prefix+f.Text+suffix, f.Params)
}
