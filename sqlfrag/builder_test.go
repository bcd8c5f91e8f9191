package sqlfrag_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/lattice-sql/pgjsonql/sqlfrag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderParam(t *testing.T) {
	t.Parallel()

	b := sqlfrag.NewBuilder()
	b.WriteString("SELECT * FROM t WHERE a = ")
	ph := b.Param("x")
	assert.Equal(t, "$1", ph)
	b.WriteString(ph)
	b.WriteString(" AND b = ")
	b.WriteParam(42)

	text, params := b.Build()
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", text)
	assert.Equal(t, []any{"x", 42}, params)
}

func TestAppendFragmentRenumbers(t *testing.T) {
	t.Parallel()

	b := sqlfrag.NewBuilder()
	b.WriteParam("first")

	frag := sqlfrag.New("a = $1 AND b = $2", []any{"second", "third"})
	b.WriteString(" AND ")
	b.AppendFragment(frag)

	text, params := b.Build()
	assert.Equal(t, "$1 AND a = $2 AND b = $3", text)
	assert.Equal(t, []any{"first", "second", "third"}, params)
}

func TestJoinSkipsEmpty(t *testing.T) {
	t.Parallel()

	f1 := sqlfrag.New("a = $1", []any{1})
	f2 := sqlfrag.Fragment{}
	f3 := sqlfrag.New("b = $1", []any{2})

	joined := sqlfrag.Join(" AND ", f1, f2, f3)
	assert.Equal(t, "a = $1 AND b = $2", joined.Text)
	assert.Equal(t, []any{1, 2}, joined.Params)
}

func TestJoinAllEmpty(t *testing.T) {
	t.Parallel()

	joined := sqlfrag.Join(" AND ")
	assert.True(t, joined.Empty())
}

func TestWrap(t *testing.T) {
	t.Parallel()

	f := sqlfrag.New("a = $1", []any{1})
	wrapped := sqlfrag.Wrap("NOT (", f, ")")
	assert.Equal(t, "NOT (a = $1)", wrapped.Text)
	assert.Equal(t, []any{1}, wrapped.Params)

	empty := sqlfrag.Wrap("NOT (", sqlfrag.Fragment{}, ")")
	assert.True(t, empty.Empty())
}

func TestPlaceholderCountMatchesParams(t *testing.T) {
	t.Parallel()

	b := sqlfrag.NewBuilder()
	for i := 0; i < 5; i++ {
		b.WriteParam(i)
		b.WriteString(",")
	}
	text, params := b.Build()
	require.Len(t, params, 5)
	count := 0
	for i := 1; i <= len(params); i++ {
		if strings.Contains(text, "$"+strconv.Itoa(i)) {
			count++
		}
	}
	assert.Equal(t, len(params), count)
}

func TestFactoryDefault(t *testing.T) {
	t.Parallel()

	f := sqlfrag.CurrentFactory()
	b := f.NewBuilder()
	require.NotNil(t, b)
	assert.False(t, sqlfrag.IsConfigured())
}
