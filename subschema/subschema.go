// Package subschema flattens a set of tables' JSONB rows into a uniform
// (tableId, rowId, rowVersionId, fieldPath, data) CTE, then queries that
// CTE with a restricted where/order-by language.
package subschema

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/lattice-sql/pgjsonql/compileerr"
	"github.com/lattice-sql/pgjsonql/fieldtype"
	"github.com/lattice-sql/pgjsonql/identifier"
	"github.com/lattice-sql/pgjsonql/jsonref"
	"github.com/lattice-sql/pgjsonql/pathlang"
	"github.com/lattice-sql/pgjsonql/sqlfrag"
	"github.com/lattice-sql/pgjsonql/wheretree"
)

// TableConfig names one table version to flatten and the set of paths
// within its JSONB data to project as synthetic rows.
type TableConfig struct {
	TableID        string
	TableVersionID string
	Paths          []string
}

// restrictedFields is the CTE outer query's where/order-by vocabulary
//: the three path-identifying columns are plain strings, and data
// is the full JsonFilter surface.
var restrictedFields = fieldtype.Config{
	"tableId":   fieldtype.String,
	"rowId":     fieldtype.String,
	"fieldPath": fieldtype.String,
	"data":      fieldtype.JSON,
}

// BuildCte compiles tables into a single UNION ALL CTE body named cteName,
// returned as `"cteName" AS (...)` (without a leading WITH keyword, so
// callers can compose it into a larger WITH clause).
func BuildCte(cteName string, tables []TableConfig) (sqlfrag.Fragment, error) {
	quotedName, err := identifier.Quote(cteName)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}

	var selects []sqlfrag.Fragment
	for _, tc := range tables {
		for _, rawPath := range tc.Paths {
			sel, err := compilePathSelect(tc, rawPath)
			if err != nil {
				return sqlfrag.Fragment{}, err
			}
			selects = append(selects, sel)
		}
	}

	b := sqlfrag.NewBuilder()
	b.WriteString(quotedName).WriteString(" AS (")
	if len(selects) == 0 {
		b.WriteString("SELECT NULL::text AS \"tableId\", NULL::text AS \"rowId\", NULL::text AS \"rowVersionId\", NULL::text AS \"fieldPath\", NULL::jsonb AS data WHERE false")
	} else {
		b.AppendFragment(sqlfrag.Join(" UNION ALL ", selects...))
	}
	b.WriteString(")")
	text, params := b.Build()
	return sqlfrag.New(text, params), nil
}

// compilePathSelect builds one table/path branch of the UNION ALL per
// an object-path branch reads the JSONB value at path directly; an
// array-path branch (one containing "[*]") LATERAL-joins
// jsonb_array_elements WITH ORDINALITY once per wildcard, nesting
// additional LATERALs for further "[*]" segments and concatenating "[i]"
// suffixes into the synthesized fieldPath in order.
func compilePathSelect(tc TableConfig, rawPath string) (sqlfrag.Fragment, error) {
	pieces := strings.Split(rawPath, "[*]")

	b := sqlfrag.NewBuilder()
	b.WriteString("SELECT ").WriteParam(tc.TableID).WriteString(`::text AS "tableId", r."id" AS "rowId", r."versionId" AS "rowVersionId", `)

	fieldPathExpr, dataExpr, fromLaterals, whereGuards, err := compilePieces(pieces)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}

	b.AppendFragment(fieldPathExpr)
	b.WriteString(`::text AS "fieldPath", `)
	b.AppendFragment(dataExpr)
	b.WriteString(` AS data FROM "Row" r JOIN "_RowToTable" rt ON r."versionId" = rt."A"`)
	b.AppendFragment(fromLaterals)
	b.WriteString(` WHERE rt."B" = `).WriteParam(tc.TableVersionID)
	if !whereGuards.Empty() {
		b.WriteString(" AND ")
		b.AppendFragment(whereGuards)
	}

	text, params := b.Build()
	return sqlfrag.New(text, params), nil
}

// compilePieces walks the pieces produced by splitting a raw PathConfig on
// "[*]", returning the fieldPath-synthesis expression, the data expression,
// any LATERAL joins needed (empty for an object path), and the
// jsonb_typeof guard clauses.
func compilePieces(pieces []string) (fieldPathExpr, dataExpr, laterals, guards sqlfrag.Fragment, err error) {
	if len(pieces) == 1 {
		path, perr := parsePiece(pieces[0])
		if perr != nil {
			return sqlfrag.Fragment{}, sqlfrag.Fragment{}, sqlfrag.Fragment{}, sqlfrag.Fragment{}, perr
		}
		source := jsonref.JSONBFragment(`r."data"`, path)

		fb := sqlfrag.NewBuilder()
		fb.WriteParam(pieces[0])
		ftext, fparams := fb.Build()

		gb := sqlfrag.NewBuilder()
		gb.WriteString("jsonb_typeof(")
		gb.AppendFragment(source)
		gb.WriteString(") = 'object'")
		gtext, gparams := gb.Build()

		return sqlfrag.New(ftext, fparams), source, sqlfrag.Fragment{}, sqlfrag.New(gtext, gparams), nil
	}

	var latB, guardB, pathB sqlfrag.Builder
	var source sqlfrag.Fragment = jsonref.JSONBFragment(`r."data"`, pathlang.Path{})

	pathB.WriteParam(pieces[0])

	for i := 0; i < len(pieces)-1; i++ {
		headPiece := pieces[i]
		headPath, perr := parsePiece(headPiece)
		if perr != nil {
			return sqlfrag.Fragment{}, sqlfrag.Fragment{}, sqlfrag.Fragment{}, sqlfrag.Fragment{}, perr
		}

		baseExpr := `r."data"`
		if i > 0 {
			baseExpr = elemAlias(i-1) + ".elem"
		}
		arraySource := jsonref.JSONBFragment(baseExpr, headPath)

		alias := elemAlias(i)
		latB.WriteString(" CROSS JOIN LATERAL jsonb_array_elements(")
		latB.AppendFragment(arraySource)
		latB.WriteString(") WITH ORDINALITY AS ").WriteString(alias).WriteString("(elem, idx)")

		if i > 0 {
			guardB.WriteString(" AND ")
		}
		guardB.WriteString("jsonb_typeof(")
		guardB.AppendFragment(arraySource)
		guardB.WriteString(") = 'array'")

		pathB.WriteString("::text || '[' || (")
		pathB.WriteString(alias).WriteString(".idx - 1)::text || ']' || ")
		if i+1 < len(pieces) {
			pathB.WriteParam(pieces[i+1])
		}

		source = arraySource
	}

	lastAlias := elemAlias(len(pieces) - 2)
	tailPath, perr := parsePiece(pieces[len(pieces)-1])
	if perr != nil {
		return sqlfrag.Fragment{}, sqlfrag.Fragment{}, sqlfrag.Fragment{}, sqlfrag.Fragment{}, perr
	}
	if len(tailPath) == 0 {
		source = sqlfrag.New(lastAlias+".elem", nil)
	} else {
		source = jsonref.JSONBFragment(lastAlias+".elem", tailPath)
	}

	pathB.WriteString("::text")
	ftext, fparams := pathB.Build()
	ltext, lparams := latB.Build()
	gtext, gparams := guardB.Build()

	return sqlfrag.New(ftext, fparams), source, sqlfrag.New(ltext, lparams), sqlfrag.New(gtext, gparams), nil
}

func elemAlias(depth int) string {
	return "arr" + strconv.Itoa(depth)
}

// parsePiece parses one split-on-"[*]" piece into a Path, treating an empty
// (or dot-only) piece as the root rather than an EmptyPath error: the
// last piece of a trailing "[*]" is empty, and a leading piece before the first "[*]" may
// likewise be empty when the array sits at the document root.
func parsePiece(raw string) (pathlang.Path, error) {
	trimmed := strings.TrimPrefix(raw, ".")
	if strings.TrimSpace(trimmed) == "" {
		return pathlang.Path{}, nil
	}
	return pathlang.Parse(trimmed)
}

// BuildWhere compiles the restricted outer-query where language:
// tableId/rowId/fieldPath as ScalarFilter strings, data as the full
// JsonFilter, combined with AND/OR/NOT exactly as wheretree.Compile already
// implements for a full WhereTree — the CTE's fixed column catalog is the
// only thing that differs from a regular table's where clause.
func BuildWhere(cteAlias string, tree map[string]any) (sqlfrag.Fragment, error) {
	return wheretree.Compile(cteAlias, restrictedFields, tree)
}

// orderItem is one (field, rawValue) pair from a sub-schema orderBy object,
// in caller-sorted key order.
type orderItem struct {
	field string
	value any
}

// BuildOrderBy compiles the restricted sub-schema ORDER BY language:
// tableId/rowId/fieldPath/rowCreatedAt take a plain "asc"/"desc" string;
// data takes `{ path, order, nulls }` and reaches the final path segment via
// #>>. rowCreatedAt requires joining back to the Row table under rowAlias.
func BuildOrderBy(cteAlias string, items any, rowAlias string) (sqlfrag.Fragment, bool, error) {
	quotedCte, err := identifier.Quote(cteAlias)
	if err != nil {
		return sqlfrag.Fragment{}, false, err
	}

	raw, err := flattenOrderItems(items)
	if err != nil {
		return sqlfrag.Fragment{}, false, err
	}

	var parts []sqlfrag.Fragment
	needsRowJoin := false
	for _, item := range raw {
		if item.field == "rowCreatedAt" {
			needsRowJoin = true
		}
		part, ok, err := compileOrderItem(quotedCte, rowAlias, item)
		if err != nil {
			return sqlfrag.Fragment{}, false, err
		}
		if ok {
			parts = append(parts, part)
		}
	}

	return sqlfrag.Join(", ", parts...), needsRowJoin, nil
}

func flattenOrderItems(items any) ([]orderItem, error) {
	switch v := items.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return mapToOrderItems(v), nil
	case []any:
		var out []orderItem
		for _, el := range v {
			m, ok := el.(map[string]any)
			if !ok {
				return nil, compileerr.Wrap(compileerr.ErrInvalidValueForOperator, "sub-schema orderBy list element must be an object")
			}
			out = append(out, mapToOrderItems(m)...)
		}
		return out, nil
	default:
		return nil, compileerr.Wrap(compileerr.ErrInvalidValueForOperator, "sub-schema orderBy must be an object or a list of objects")
	}
}

func mapToOrderItems(m map[string]any) []orderItem {
	keys := maps.Keys(m)
	slices.Sort(keys)
	out := make([]orderItem, 0, len(keys))
	for _, k := range keys {
		out = append(out, orderItem{field: k, value: m[k]})
	}
	return out
}

func parseDirection(s string) (string, bool) {
	switch strings.ToLower(s) {
	case "asc":
		return "ASC", true
	case "desc":
		return "DESC", true
	default:
		return "", false
	}
}

func compileOrderItem(quotedCte, rowAlias string, item orderItem) (sqlfrag.Fragment, bool, error) {
	switch item.field {
	case "tableId", "rowId", "fieldPath":
		dir, ok := parseDirection(toString(item.value))
		if !ok {
			return sqlfrag.Fragment{}, false, nil
		}
		colName, err := identifier.Quote(item.field)
		if err != nil {
			return sqlfrag.Fragment{}, false, err
		}
		return sqlfrag.New(quotedCte+"."+colName+" "+dir, nil), true, nil
	case "rowCreatedAt":
		dir, ok := parseDirection(toString(item.value))
		if !ok {
			return sqlfrag.Fragment{}, false, nil
		}
		quotedRow, err := identifier.Quote(rowAlias)
		if err != nil {
			return sqlfrag.Fragment{}, false, err
		}
		return sqlfrag.New(quotedRow+`."createdAt" `+dir, nil), true, nil
	case "data":
		cfg, ok := item.value.(map[string]any)
		if !ok {
			return sqlfrag.Fragment{}, false, nil
		}
		return compileDataOrderItem(quotedCte, cfg)
	default:
		return sqlfrag.Fragment{}, false, nil
	}
}

func compileDataOrderItem(quotedCte string, cfg map[string]any) (sqlfrag.Fragment, bool, error) {
	dir, ok := parseDirection(toString(cfg["order"]))
	if !ok {
		return sqlfrag.Fragment{}, false, nil
	}
	pathRaw, ok := cfg["path"]
	if !ok {
		return sqlfrag.Fragment{}, false, nil
	}
	path, err := pathlang.ParseAny(pathRaw)
	if err != nil || path.HasWildcard() {
		return sqlfrag.Fragment{}, false, nil
	}

	expr := jsonref.TextFragment(quotedCte+`.data`, path)

	nullsClause := ""
	switch strings.ToLower(toString(cfg["nulls"])) {
	case "first":
		nullsClause = " NULLS FIRST"
	case "last":
		nullsClause = " NULLS LAST"
	}

	b := sqlfrag.NewBuilder()
	b.AppendFragment(expr)
	b.WriteString(" ").WriteString(dir).WriteString(nullsClause)
	text, params := b.Build()
	return sqlfrag.New(text, params), true, nil
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

// BuildQuery assembles the full sub-schema list query: the flattening CTE,
// an outer SELECT restricted by where, ordered by orderBy, and paginated by
// take/skip. An empty tables list short-circuits to a `WHERE false` query
// without compiling an empty CTE body.
func BuildQuery(cteName string, tables []TableConfig, where map[string]any, orderBy any, take, skip int) (sqlfrag.Fragment, error) {
	return buildOuterQuery(cteName, tables, where, orderBy, take, skip)
}

// BuildCountQuery assembles the `SELECT COUNT(*)::bigint` variant of
// BuildQuery, ignoring orderBy/take/skip.
func BuildCountQuery(cteName string, tables []TableConfig, where map[string]any) (sqlfrag.Fragment, error) {
	if len(tables) == 0 {
		return sqlfrag.New("SELECT 0::bigint", nil), nil
	}

	cte, err := BuildCte(cteName, tables)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}
	quotedCte, err := identifier.Quote(cteName)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}
	whereFrag, err := BuildWhere(cteName, where)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}

	b := sqlfrag.NewBuilder()
	b.WriteString("WITH ")
	b.AppendFragment(cte)
	b.WriteString(" SELECT COUNT(*)::bigint FROM ").WriteString(quotedCte).WriteString(" AS ").WriteString(quotedCte).WriteString(" WHERE ")
	b.AppendFragment(whereFrag)
	text, params := b.Build()
	return sqlfrag.New(text, params), nil
}

func buildOuterQuery(cteName string, tables []TableConfig, where map[string]any, orderBy any, take, skip int) (sqlfrag.Fragment, error) {
	if len(tables) == 0 {
		return sqlfrag.New(`SELECT NULL::text AS "tableId", NULL::text AS "rowId", NULL::text AS "rowVersionId", NULL::text AS "fieldPath", NULL::jsonb AS data WHERE false`, nil), nil
	}

	cte, err := BuildCte(cteName, tables)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}
	quotedCte, err := identifier.Quote(cteName)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}
	whereFrag, err := BuildWhere(cteName, where)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}
	orderFrag, needsRowJoin, err := BuildOrderBy(cteName, orderBy, "r2")
	if err != nil {
		return sqlfrag.Fragment{}, err
	}

	b := sqlfrag.NewBuilder()
	b.WriteString("WITH ")
	b.AppendFragment(cte)
	b.WriteString(" SELECT ")
	for _, col := range []string{"tableId", "rowId", "rowVersionId", "fieldPath"} {
		b.WriteString(quotedCte).WriteString(".").WriteString(identifier.MustQuote(col)).WriteString(", ")
	}
	b.WriteString(quotedCte).WriteString(".data FROM ").WriteString(quotedCte).WriteString(" AS ").WriteString(quotedCte)
	if needsRowJoin {
		b.WriteString(` JOIN "Row" r2 ON r2."id" = `).WriteString(quotedCte).WriteString(`."rowId"`)
	}
	b.WriteString(" WHERE ")
	b.AppendFragment(whereFrag)
	if !orderFrag.Empty() {
		b.WriteString(" ORDER BY ")
		b.AppendFragment(orderFrag)
	}
	b.WriteString(" LIMIT ").WriteParam(take).WriteString(" OFFSET ").WriteParam(skip)

	text, params := b.Build()
	return sqlfrag.New(text, params), nil
}
