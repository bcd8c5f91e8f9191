package jsonop_test

import (
	"testing"

	"github.com/lattice-sql/pgjsonql/jsonop"
	"github.com/lattice-sql/pgjsonql/sqlfrag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// leftFor builds a parameter-free LeftExprs fixture: the jsonb/text
// reference forms in real use come from jsonref and may carry their own
// path-array parameters, but the operator logic under test here only cares
// about the operator's own bound values, so the fixture keeps the left
// side free of placeholders to avoid entangling offsets.
func leftFor(jsonbText, textText string, pathEmpty bool) jsonop.LeftExprs {
	return jsonop.LeftExprs{
		JSONB:     sqlfrag.New(jsonbText, nil),
		Text:      sqlfrag.New(textText, nil),
		PathEmpty: pathEmpty,
	}
}

func TestCompileEqualsPrimitiveNonRoot(t *testing.T) {
	t.Parallel()

	left := leftFor(`("c")::jsonb`, `"c"`, false)
	frag, err := jsonop.Compile(left, "equals", "alice", false)
	require.NoError(t, err)
	assert.Equal(t, `"c" = $1`, frag.Text)
	assert.Equal(t, []any{"alice"}, frag.Params)
}

func TestCompileEqualsCollection(t *testing.T) {
	t.Parallel()

	left := leftFor(`("c")::jsonb`, `"c"`, false)
	frag, err := jsonop.Compile(left, "equals", []any{"a", "b"}, false)
	require.NoError(t, err)
	assert.Equal(t, `("c")::jsonb = $1::jsonb`, frag.Text)
	assert.JSONEq(t, `["a","b"]`, frag.Params[0].(string))
}

func TestCompileEqualsRootAlwaysJSONB(t *testing.T) {
	t.Parallel()

	left := leftFor(`("c")::jsonb`, `"c"`, true)
	frag, err := jsonop.Compile(left, "equals", "alice", false)
	require.NoError(t, err)
	assert.Equal(t, `("c")::jsonb = $1::jsonb`, frag.Text)
}

func TestCompileNot(t *testing.T) {
	t.Parallel()

	left := leftFor(`x`, `"c"`, false)
	frag, err := jsonop.Compile(left, "not", "bob", false)
	require.NoError(t, err)
	assert.Equal(t, `"c" != $1`, frag.Text)
}

func TestCompileCompareAddsTypeofGuard(t *testing.T) {
	t.Parallel()

	left := leftFor(`("c")::jsonb`, `x`, false)
	frag, err := jsonop.Compile(left, "gte", 18, false)
	require.NoError(t, err)
	assert.Contains(t, frag.Text, "jsonb_typeof(")
	assert.Contains(t, frag.Text, "= 'number'")
}

func TestCompileStringContains(t *testing.T) {
	t.Parallel()

	left := leftFor(`x`, `"c"`, false)
	frag, err := jsonop.Compile(left, "string_contains", "50%", false)
	require.NoError(t, err)
	assert.Equal(t, []any{`%50\%%`}, frag.Params)
}

func TestCompileArrayContainsRequiresArray(t *testing.T) {
	t.Parallel()

	left := leftFor(`x`, `y`, false)
	_, err := jsonop.Compile(left, "array_contains", "not-an-array", false)
	require.Error(t, err)
}

func TestCompileArrayContainsEmptyRejected(t *testing.T) {
	t.Parallel()

	left := leftFor(`x`, `y`, false)
	_, err := jsonop.Compile(left, "array_contains", []any{}, false)
	require.Error(t, err)
}

func TestCompileArrayContainsInsensitiveSingleString(t *testing.T) {
	t.Parallel()

	left := leftFor(`x`, `y`, false)
	frag, err := jsonop.Compile(left, "array_contains", []any{"Admin"}, true)
	require.NoError(t, err)
	assert.Contains(t, frag.Text, "jsonb_array_elements_text")
	assert.Contains(t, frag.Text, "LOWER(e) = LOWER(")

	_, err = jsonop.Compile(left, "array_contains", []any{"a", "b"}, true)
	require.Error(t, err)
}

func TestCompileArrayStartsWith(t *testing.T) {
	t.Parallel()

	left := leftFor(`x`, `y`, false)
	frag, err := jsonop.Compile(left, "array_starts_with", "first", false)
	require.NoError(t, err)
	assert.Contains(t, frag.Text, "->0")
}

func TestCompileArrayEndsWith(t *testing.T) {
	t.Parallel()

	left := leftFor(`x`, `y`, false)
	frag, err := jsonop.Compile(left, "array_ends_with", "last", false)
	require.NoError(t, err)
	assert.Contains(t, frag.Text, "->-1")
}

func TestCompileInEmptyIsFalse(t *testing.T) {
	t.Parallel()

	left := leftFor(`x`, `y`, false)
	frag, err := jsonop.Compile(left, "in", []any{}, false)
	require.NoError(t, err)
	assert.Equal(t, "FALSE", frag.Text)
}

func TestCompileNotInEmptyIsTrue(t *testing.T) {
	t.Parallel()

	left := leftFor(`x`, `y`, false)
	frag, err := jsonop.Compile(left, "notIn", []any{}, false)
	require.NoError(t, err)
	assert.Equal(t, "TRUE", frag.Text)
}

func TestCompileInList(t *testing.T) {
	t.Parallel()

	left := leftFor(`x`, `"c"`, false)
	frag, err := jsonop.Compile(left, "in", []any{"a", "b"}, false)
	require.NoError(t, err)
	assert.Contains(t, frag.Text, " OR ")
	assert.Equal(t, []any{"a", "b"}, frag.Params)
}

func TestCompileUnknownOperator(t *testing.T) {
	t.Parallel()

	left := leftFor(`x`, `y`, false)
	_, err := jsonop.Compile(left, "bogus", "v", false)
	require.Error(t, err)
}

func TestSupportsSpecialPath(t *testing.T) {
	t.Parallel()

	assert.True(t, jsonop.SupportsSpecialPath("equals"))
	assert.True(t, jsonop.SupportsSpecialPath("search"))
	assert.False(t, jsonop.SupportsSpecialPath("array_contains"))
}
