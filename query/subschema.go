package query

import (
	"github.com/lattice-sql/pgjsonql/sqlfrag"
	"github.com/lattice-sql/pgjsonql/subschema"
)

// TableConfig names one table version to flatten into a sub-schema CTE; see
// subschema.TableConfig.
type TableConfig = subschema.TableConfig

// BuildSubSchemaQuery compiles the full sub-schema list query.
func BuildSubSchemaQuery(cteName string, tables []TableConfig, where map[string]any, orderBy any, take, skip int) (sqlfrag.Fragment, error) {
	return subschema.BuildQuery(cteName, tables, where, orderBy, take, skip)
}

// BuildSubSchemaCountQuery compiles the `SELECT COUNT(*)::bigint` variant
// of BuildSubSchemaQuery.
func BuildSubSchemaCountQuery(cteName string, tables []TableConfig, where map[string]any) (sqlfrag.Fragment, error) {
	return subschema.BuildCountQuery(cteName, tables, where)
}

// BuildSubSchemaCte compiles just the flattening CTE body.
func BuildSubSchemaCte(cteName string, tables []TableConfig) (sqlfrag.Fragment, error) {
	return subschema.BuildCte(cteName, tables)
}

// BuildSubSchemaWhere compiles the sub-schema CTE's restricted where
// language.
func BuildSubSchemaWhere(cteAlias string, where map[string]any) (sqlfrag.Fragment, error) {
	return subschema.BuildWhere(cteAlias, where)
}

// BuildSubSchemaOrderBy compiles the sub-schema CTE's restricted order-by
// language.
func BuildSubSchemaOrderBy(cteAlias string, orderBy any, rowAlias string) (sqlfrag.Fragment, bool, error) {
	return subschema.BuildOrderBy(cteAlias, orderBy, rowAlias)
}
