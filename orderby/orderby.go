// Package orderby compiles a single order item or an ordered list of them
// into a comma-joined SQL ORDER BY clause. The same compilation also yields
// the keyset cursor parts pagination is built from, so the ORDER BY a query
// runs with and the parts its cursors are minted against can never drift
// apart.
package orderby

import (
	"slices"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/lattice-sql/pgjsonql/compileerr"
	"github.com/lattice-sql/pgjsonql/fieldtype"
	"github.com/lattice-sql/pgjsonql/jsonref"
	"github.com/lattice-sql/pgjsonql/keyset"
	"github.com/lattice-sql/pgjsonql/pathlang"
	"github.com/lattice-sql/pgjsonql/sqlfrag"
)

// castTypes lists the recognized JSON item cast types, mapped to the
// PostgreSQL cast target.
var castTypes = map[string]string{
	"text":      "text",
	"int":       "int",
	"float":     "float",
	"boolean":   "boolean",
	"timestamp": "timestamp",
}

// aggFuncs lists the JSON item aggregations requiring a subquery (first/last
// resolve to a direct index instead; see compileJSONWildcard).
var aggFuncs = map[string]string{
	"min": "MIN",
	"max": "MAX",
	"avg": "AVG",
}

// rawItem is one (field, rawValue) pair extracted from the caller's items
// argument, preserving input order.
type rawItem struct {
	field string
	value any
}

// compiled is one successfully compiled order item: the bare ordering
// expression (no direction suffix) plus the metadata a keyset cursor part
// carries.
type compiled struct {
	name        string
	expr        sqlfrag.Fragment
	direction   string
	isJSON      bool
	path        pathlang.Path
	jsonType    string
	aggregation string
}

// Compile builds the ORDER BY clause body (without the "ORDER BY" keyword)
// for items against alias's columns. Returns an empty Fragment (no ORDER BY)
// when items is nil/empty or when every item turns out invalid.
func Compile(alias string, fields fieldtype.Config, items any) (sqlfrag.Fragment, error) {
	cs, err := compileAll(alias, fields, items)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}

	var parts []sqlfrag.Fragment
	for _, c := range cs {
		b := sqlfrag.NewBuilder()
		b.AppendFragment(c.expr)
		b.WriteString(" ").WriteString(c.direction)
		text, params := b.Build()
		parts = append(parts, sqlfrag.New(text, params))
	}

	return sqlfrag.Join(", ", parts...), nil
}

// Parts compiles items into the keyset cursor parts pagination needs: the
// same expressions Compile renders, each carrying the field name, JSON path,
// cast type, and aggregation that ExtractCursorValues and SortHash read.
func Parts(alias string, fields fieldtype.Config, items any) ([]keyset.Part, error) {
	cs, err := compileAll(alias, fields, items)
	if err != nil {
		return nil, err
	}

	parts := make([]keyset.Part, 0, len(cs))
	for _, c := range cs {
		parts = append(parts, keyset.Part{
			Name:        c.name,
			Expression:  c.expr,
			Direction:   c.direction,
			IsJSON:      c.isJSON,
			Path:        c.path,
			JSONType:    c.jsonType,
			Aggregation: c.aggregation,
			IsDate:      !c.isJSON && fields.Of(c.name) == fieldtype.Date,
		})
	}
	return parts, nil
}

func compileAll(alias string, fields fieldtype.Config, items any) ([]compiled, error) {
	raw, err := flattenItems(items)
	if err != nil {
		return nil, err
	}

	var cs []compiled
	for _, item := range raw {
		c, ok, err := compileItem(alias, fields, item)
		if err != nil {
			return nil, err
		}
		if ok {
			cs = append(cs, c)
		}
	}
	return cs, nil
}

func flattenItems(items any) ([]rawItem, error) {
	switch v := items.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return mapToRawItems(v), nil
	case []any:
		var out []rawItem
		for _, el := range v {
			m, ok := el.(map[string]any)
			if !ok {
				return nil, compileerr.Wrap(compileerr.ErrInvalidValueForOperator, "orderBy list element must be an object")
			}
			out = append(out, mapToRawItems(m)...)
		}
		return out, nil
	default:
		return nil, compileerr.Wrap(compileerr.ErrInvalidValueForOperator, "orderBy must be an object or a list of objects")
	}
}

func mapToRawItems(m map[string]any) []rawItem {
	keys := maps.Keys(m)
	slices.Sort(keys)
	out := make([]rawItem, 0, len(keys))
	for _, k := range keys {
		out = append(out, rawItem{field: k, value: m[k]})
	}
	return out
}

// parseDirection normalizes a caller-supplied direction string to the SQL
// keyword, reporting false for anything else (an invalid direction skips
// that item).
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

// compileItem compiles a single (field, value) pair. The bool result is
// false when the item is structurally invalid or mismatched against the
// field's declared type and should simply be dropped.
func compileItem(alias string, fields fieldtype.Config, item rawItem) (compiled, bool, error) {
	colExpr, err := jsonref.ColumnExpr(alias, item.field)
	if err != nil {
		return compiled{}, false, err
	}

	switch v := item.value.(type) {
	case string:
		dir, ok := parseDirection(v)
		if !ok {
			return compiled{}, false, nil
		}
		return compiled{name: item.field, expr: sqlfrag.New(colExpr, nil), direction: dir}, true, nil
	case map[string]any:
		if fields.Of(item.field) != fieldtype.JSON {
			return compiled{}, false, nil
		}
		return compileJSONItem(item.field, colExpr, v)
	default:
		return compiled{}, false, nil
	}
}

func compileJSONItem(field, colExpr string, cfg map[string]any) (compiled, bool, error) {
	dirRaw, _ := cfg["direction"].(string)
	dir, ok := parseDirection(dirRaw)
	if !ok {
		return compiled{}, false, nil
	}

	castType := "text"
	if t, ok := cfg["type"].(string); ok && t != "" {
		castType = t
	}
	sqlType, ok := castTypes[castType]
	if !ok {
		return compiled{}, false, nil
	}

	pathRaw, ok := cfg["path"]
	if !ok {
		return compiled{}, false, nil
	}
	path, err := pathlang.ParseAny(pathRaw)
	if err != nil {
		return compiled{}, false, nil
	}

	aggRaw, _ := cfg["aggregation"].(string)

	var expr sqlfrag.Fragment
	if path.HasWildcard() {
		expr, ok, err = compileJSONWildcard(colExpr, path, aggRaw, sqlType)
		if err != nil || !ok {
			return compiled{}, ok, err
		}
	} else {
		if aggRaw != "" {
			return compiled{}, false, nil
		}
		expr = sqlfrag.Wrap("(", jsonref.TextFragment(colExpr, path), ")::"+sqlType)
	}

	return compiled{
		name:        field,
		expr:        expr,
		direction:   dir,
		isJSON:      true,
		path:        path,
		jsonType:    castType,
		aggregation: aggRaw,
	}, true, nil
}

// compileJSONWildcard handles the wildcard+aggregation JSON item
// cases. first/last resolve to a direct array index (PostgreSQL's #>/#>>
// subscript an array position directly, including -1 "from the end", so no
// subquery is needed for them). min/max/avg aggregate over every element via
// a jsonb_array_elements subquery.
func compileJSONWildcard(colExpr string, path pathlang.Path, aggregation, sqlType string) (sqlfrag.Fragment, bool, error) {
	head, tail, _ := path.SplitAtFirstWildcard()
	if tail.HasWildcard() {
		// A second wildcard after the aggregated one has no single ordering
		// value to produce; drop the item like any other invalid shape.
		return sqlfrag.Fragment{}, false, nil
	}

	switch aggregation {
	case "first", "last":
		idx := pathlang.IndexSegment(0)
		if aggregation == "last" {
			idx = pathlang.LastSegment()
		}
		full := append(append(pathlang.Path{}, head...), idx)
		full = append(full, tail...)
		return sqlfrag.Wrap("(", jsonref.TextFragment(colExpr, full), ")::"+sqlType), true, nil
	case "min", "max", "avg":
		fn := aggFuncs[aggregation]
		arrayExpr := jsonref.JSONBFragment(colExpr, head)
		elemText := jsonref.TextFragment("elem", tail)

		b := sqlfrag.NewBuilder()
		b.WriteString("(SELECT ").WriteString(fn).WriteString("((")
		b.AppendFragment(elemText)
		b.WriteString(")::").WriteString(sqlType).WriteString(") FROM jsonb_array_elements(")
		b.AppendFragment(arrayExpr)
		b.WriteString(") AS elem)")
		text, params := b.Build()
		return sqlfrag.New(text, params), true, nil
	default:
		return sqlfrag.Fragment{}, false, nil
	}
}
