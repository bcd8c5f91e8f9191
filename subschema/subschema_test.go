package subschema_test

import (
	"testing"

	"github.com/lattice-sql/pgjsonql/subschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCteObjectPath(t *testing.T) {
	t.Parallel()

	frag, err := subschema.BuildCte("sub_schema_items", []subschema.TableConfig{
		{TableID: "t1", TableVersionID: "v1", Paths: []string{"status"}},
	})
	require.NoError(t, err)
	assert.Contains(t, frag.Text, `"sub_schema_items" AS (SELECT`)
	assert.Contains(t, frag.Text, `JOIN "_RowToTable" rt ON r."versionId" = rt."A"`)
	assert.Contains(t, frag.Text, "jsonb_typeof(")
	assert.Contains(t, frag.Text, "= 'object'")
	assert.NotContains(t, frag.Text, "UNION ALL")
}

func TestBuildCteArrayPath(t *testing.T) {
	t.Parallel()

	frag, err := subschema.BuildCte("sub_schema_items", []subschema.TableConfig{
		{TableID: "t1", TableVersionID: "v1", Paths: []string{"items[*].price"}},
	})
	require.NoError(t, err)
	assert.Contains(t, frag.Text, "CROSS JOIN LATERAL jsonb_array_elements(")
	assert.Contains(t, frag.Text, "WITH ORDINALITY AS arr0(elem, idx)")
	assert.Contains(t, frag.Text, "= 'array'")
	assert.Contains(t, frag.Text, "(arr0.idx - 1)")
}

func TestBuildCteNestedArrayPath(t *testing.T) {
	t.Parallel()

	frag, err := subschema.BuildCte("sub_schema_items", []subschema.TableConfig{
		{TableID: "t1", TableVersionID: "v1", Paths: []string{"a[*].b[*].c"}},
	})
	require.NoError(t, err)
	assert.Contains(t, frag.Text, "AS arr0(elem, idx)")
	assert.Contains(t, frag.Text, "AS arr1(elem, idx)")
}

func TestBuildCteUnionsMultiplePaths(t *testing.T) {
	t.Parallel()

	frag, err := subschema.BuildCte("sub_schema_items", []subschema.TableConfig{
		{TableID: "t1", TableVersionID: "v1", Paths: []string{"status", "profile"}},
	})
	require.NoError(t, err)
	assert.Contains(t, frag.Text, "UNION ALL")
}

func TestBuildCteEmptyTablesIsFalseBranch(t *testing.T) {
	t.Parallel()

	frag, err := subschema.BuildCte("sub_schema_items", nil)
	require.NoError(t, err)
	assert.Contains(t, frag.Text, "WHERE false")
}

func TestBuildCteRejectsInvalidCteName(t *testing.T) {
	t.Parallel()

	_, err := subschema.BuildCte("bad name!", nil)
	require.Error(t, err)
}

func TestBuildWhereStringField(t *testing.T) {
	t.Parallel()

	frag, err := subschema.BuildWhere("cte", map[string]any{"tableId": "t1"})
	require.NoError(t, err)
	assert.Contains(t, frag.Text, `"cte"."tableId" = `)
}

func TestBuildWhereDataJsonFilter(t *testing.T) {
	t.Parallel()

	frag, err := subschema.BuildWhere("cte", map[string]any{
		"data": map[string]any{"path": "status", "equals": "active"},
	})
	require.NoError(t, err)
	assert.Contains(t, frag.Text, `#>> ARRAY[$`)
}

func TestBuildOrderByPlainColumn(t *testing.T) {
	t.Parallel()

	frag, needsJoin, err := subschema.BuildOrderBy("cte", map[string]any{"tableId": "asc"}, "r2")
	require.NoError(t, err)
	assert.False(t, needsJoin)
	assert.Equal(t, `"cte"."tableId" ASC`, frag.Text)
}

func TestBuildOrderByRowCreatedAtNeedsJoin(t *testing.T) {
	t.Parallel()

	frag, needsJoin, err := subschema.BuildOrderBy("cte", map[string]any{"rowCreatedAt": "desc"}, "r2")
	require.NoError(t, err)
	assert.True(t, needsJoin)
	assert.Contains(t, frag.Text, `"r2"."createdAt" DESC`)
}

func TestBuildOrderByDataPath(t *testing.T) {
	t.Parallel()

	frag, needsJoin, err := subschema.BuildOrderBy("cte", map[string]any{
		"data": map[string]any{"path": "score", "order": "desc", "nulls": "last"},
	}, "r2")
	require.NoError(t, err)
	assert.False(t, needsJoin)
	assert.Contains(t, frag.Text, "#>>")
	assert.Contains(t, frag.Text, "DESC NULLS LAST")
}

func TestBuildQueryEmptyTablesIsFalse(t *testing.T) {
	t.Parallel()

	frag, err := subschema.BuildQuery("sub_schema_items", nil, nil, nil, 50, 0)
	require.NoError(t, err)
	assert.Contains(t, frag.Text, "WHERE false")
}

func TestBuildQueryNonEmpty(t *testing.T) {
	t.Parallel()

	frag, err := subschema.BuildQuery("sub_schema_items", []subschema.TableConfig{
		{TableID: "t1", TableVersionID: "v1", Paths: []string{"status"}},
	}, map[string]any{"tableId": "t1"}, map[string]any{"fieldPath": "asc"}, 25, 10)
	require.NoError(t, err)
	assert.Contains(t, frag.Text, "WITH ")
	assert.Contains(t, frag.Text, "LIMIT ")
	assert.Contains(t, frag.Text, "OFFSET ")
	assert.Contains(t, frag.Text, "ORDER BY")
}

func TestBuildCountQueryEmptyTables(t *testing.T) {
	t.Parallel()

	frag, err := subschema.BuildCountQuery("sub_schema_items", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 0::bigint", frag.Text)
}

func TestBuildCountQueryNonEmpty(t *testing.T) {
	t.Parallel()

	frag, err := subschema.BuildCountQuery("sub_schema_items", []subschema.TableConfig{
		{TableID: "t1", TableVersionID: "v1", Paths: []string{"status"}},
	}, nil)
	require.NoError(t, err)
	assert.Contains(t, frag.Text, "SELECT COUNT(*)::bigint")
}
