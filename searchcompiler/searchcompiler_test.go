package searchcompiler_test

import (
	"testing"

	"github.com/lattice-sql/pgjsonql/pathlang"
	"github.com/lattice-sql/pgjsonql/searchcompiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileRootPath(t *testing.T) {
	t.Parallel()

	frag, err := searchcompiler.Compile(`"u"."data"`, nil, searchcompiler.Options{}, "hello world")
	require.NoError(t, err)
	assert.Equal(t, `jsonb_to_tsvector($1, "u"."data", $2::jsonb) @@ plainto_tsquery($3, $4)`, frag.Text)
	assert.Equal(t, []any{"simple", `["all"]`, "simple", "hello world"}, frag.Params)
}

func TestCompileNonRootPath(t *testing.T) {
	t.Parallel()

	path, err := pathlang.Parse("bio.summary")
	require.NoError(t, err)

	frag, err := searchcompiler.Compile(`"u"."data"`, path, searchcompiler.Options{}, "hello")
	require.NoError(t, err)
	assert.Contains(t, frag.Text, `"u"."data" #> $2::text[]`)
	assert.Equal(t, []string{"bio", "summary"}, frag.Params[1])
}

func TestCompilePhraseAndSearchIn(t *testing.T) {
	t.Parallel()

	frag, err := searchcompiler.Compile(`"u"."data"`, nil, searchcompiler.Options{
		Type: "phrase",
		In:   "keys",
	}, "hello")
	require.NoError(t, err)
	assert.Contains(t, frag.Text, "phraseto_tsquery")
	assert.JSONEq(t, `["key"]`, frag.Params[1].(string))
}

func TestCompileRejectsEmptyQuery(t *testing.T) {
	t.Parallel()

	_, err := searchcompiler.Compile(`"u"."data"`, nil, searchcompiler.Options{}, "")
	require.Error(t, err)
}

func TestCompileRejectsWildcardPath(t *testing.T) {
	t.Parallel()

	path, err := pathlang.Parse("tags[*]")
	require.NoError(t, err)

	_, err = searchcompiler.Compile(`"u"."data"`, path, searchcompiler.Options{}, "x")
	require.Error(t, err)
}

func TestCompileRejectsUnknownSearchIn(t *testing.T) {
	t.Parallel()

	_, err := searchcompiler.Compile(`"u"."data"`, nil, searchcompiler.Options{In: "bogus"}, "x")
	require.Error(t, err)
}
