package keyset_test

import (
	"testing"
	"time"

	"github.com/lattice-sql/pgjsonql/keyset"
	"github.com/lattice-sql/pgjsonql/pathlang"
	"github.com/lattice-sql/pgjsonql/sqlfrag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namePart(dir string) keyset.Part {
	return keyset.Part{Name: "name", Expression: sqlfrag.New(`"u"."name"`, nil), Direction: dir}
}

func TestSortHashStableAndDirectionSensitive(t *testing.T) {
	t.Parallel()

	h1 := keyset.SortHash([]keyset.Part{namePart("ASC")})
	h2 := keyset.SortHash([]keyset.Part{namePart("ASC")})
	h3 := keyset.SortHash([]keyset.Part{namePart("DESC")})

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 16)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	parts := []keyset.Part{namePart("ASC")}
	cursor, err := keyset.EncodeCursor(parts, []any{"alice"}, "42")
	require.NoError(t, err)

	payload, ok := keyset.DecodeCursor(cursor, keyset.SortHash(parts))
	require.True(t, ok)
	assert.Equal(t, []any{"alice"}, payload.V)
	assert.Equal(t, "42", payload.T)
}

func TestDecodeRejectsMismatchedHash(t *testing.T) {
	t.Parallel()

	parts := []keyset.Part{namePart("ASC")}
	cursor, err := keyset.EncodeCursor(parts, []any{"alice"}, "42")
	require.NoError(t, err)

	_, ok := keyset.DecodeCursor(cursor, "deadbeefdeadbeef")
	assert.False(t, ok)
}

func TestDecodeRejectsMalformedBase64(t *testing.T) {
	t.Parallel()

	_, ok := keyset.DecodeCursor("not valid base64!!", "anyhash")
	assert.False(t, ok)
}

func TestDecodeRejectsNonJSONPayload(t *testing.T) {
	t.Parallel()

	_, ok := keyset.DecodeCursor("bm90anNvbg", "anyhash")
	assert.False(t, ok)
}

func TestBuildConditionSingleColumnAscending(t *testing.T) {
	t.Parallel()

	parts := []keyset.Part{namePart("ASC")}
	tiebreaker := keyset.Part{Name: "id", Expression: sqlfrag.New(`"u"."id"`, nil), Direction: "ASC"}

	frag, err := keyset.BuildCondition(parts, keyset.CursorPayload{V: []any{"alice"}, T: "42"}, tiebreaker)
	require.NoError(t, err)
	assert.Contains(t, frag.Text, `"u"."name") > `)
	assert.Contains(t, frag.Text, `"u"."name") = `)
	assert.Contains(t, frag.Text, `"u"."id") > `)
}

func TestBuildConditionNullCursorValueAscendingIsFalse(t *testing.T) {
	t.Parallel()

	parts := []keyset.Part{namePart("ASC")}
	tiebreaker := keyset.Part{Name: "id", Expression: sqlfrag.New(`"u"."id"`, nil), Direction: "ASC"}

	frag, err := keyset.BuildCondition(parts, keyset.CursorPayload{V: []any{nil}, T: "42"}, tiebreaker)
	require.NoError(t, err)
	assert.Contains(t, frag.Text, "FALSE")
}

func TestBuildConditionNullCursorValueDescendingIsNotNull(t *testing.T) {
	t.Parallel()

	parts := []keyset.Part{namePart("DESC")}
	tiebreaker := keyset.Part{Name: "id", Expression: sqlfrag.New(`"u"."id"`, nil), Direction: "ASC"}

	frag, err := keyset.BuildCondition(parts, keyset.CursorPayload{V: []any{nil}, T: "42"}, tiebreaker)
	require.NoError(t, err)
	assert.Contains(t, frag.Text, `"u"."name") IS NOT NULL`)
}

func TestExtractCursorValuesRegularField(t *testing.T) {
	t.Parallel()

	parts := []keyset.Part{{Name: "name", Direction: "ASC"}}
	row := map[string]any{"name": "alice"}

	values, err := keyset.ExtractCursorValues(row, parts)
	require.NoError(t, err)
	assert.Equal(t, []any{"alice"}, values)
}

func TestExtractCursorValuesDateFieldNormalized(t *testing.T) {
	t.Parallel()

	parts := []keyset.Part{{Name: "createdAt", Direction: "ASC", IsDate: true}}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	row := map[string]any{"createdAt": at}

	values, err := keyset.ExtractCursorValues(row, parts)
	require.NoError(t, err)
	assert.Equal(t, at.UTC().Format(time.RFC3339Nano), values[0])
}

func TestExtractCursorValuesJSONPath(t *testing.T) {
	t.Parallel()

	path, err := pathlang.Parse("address.zip")
	require.NoError(t, err)

	parts := []keyset.Part{{Name: "data", Direction: "ASC", IsJSON: true, Path: path}}
	row := map[string]any{
		"data": map[string]any{"address": map[string]any{"zip": "94110"}},
	}

	values, err := keyset.ExtractCursorValues(row, parts)
	require.NoError(t, err)
	assert.Equal(t, []any{"94110"}, values)
}

func TestExtractCursorValuesJSONWildcardYieldsNil(t *testing.T) {
	t.Parallel()

	path, err := pathlang.Parse("tags[*]")
	require.NoError(t, err)

	parts := []keyset.Part{{Name: "data", Direction: "ASC", IsJSON: true, Path: path}}
	row := map[string]any{"data": map[string]any{"tags": []any{"a", "b"}}}

	values, err := keyset.ExtractCursorValues(row, parts)
	require.NoError(t, err)
	assert.Equal(t, []any{nil}, values)
}
