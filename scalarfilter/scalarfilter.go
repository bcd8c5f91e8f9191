// Package scalarfilter compiles the string/number/boolean/date filter
// objects applied to ordinary (non-JSON) columns.
package scalarfilter

import (
	"slices"

	"golang.org/x/exp/maps"

	"github.com/lattice-sql/pgjsonql/compileerr"
	"github.com/lattice-sql/pgjsonql/fieldtype"
	"github.com/lattice-sql/pgjsonql/sqlfrag"
)

// operatorSet lists the filter-object keys valid for each field type, per
// each type (the bare-value shortcut for each type isn't a key and is
// handled separately by Compile).
var operatorSet = map[fieldtype.Type]map[string]bool{
	fieldtype.String: set(
		"equals", "not", "contains", "startsWith", "endsWith",
		"in", "notIn", "gt", "gte", "lt", "lte", "search",
	),
	fieldtype.Number: set(
		"equals", "not", "gt", "gte", "lt", "lte", "in", "notIn",
	),
	fieldtype.Boolean: set("equals", "not"),
	fieldtype.Date: set(
		"equals", "not", "gt", "gte", "lt", "lte", "in", "notIn",
	),
}

func set(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// Compile builds the SQL fragment for a scalar field predicate: columnExpr
// is the already alias-qualified, quoted column reference (e.g.
// `"u"."name"`), ftype is its declared type, and value is either a bare
// literal (the direct-value shortcut, always meaning "equals") or a
// filter object (map[string]any) of operator keys, AND-joined.
func Compile(columnExpr string, ftype fieldtype.Type, value any) (sqlfrag.Fragment, error) {
	ops, ok := operatorSet[ftype]
	if !ok {
		return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrUnsupportedFieldType, string(ftype))
	}

	obj, isObj := value.(map[string]any)
	if !isObj {
		return compileOperator(columnExpr, ftype, "equals", value, false)
	}

	insensitive := false
	if m, ok := obj["mode"]; ok {
		if s, ok := m.(string); ok && s == "insensitive" {
			insensitive = true
		}
	}

	keys := maps.Keys(obj)
	slices.Sort(keys)

	var frags []sqlfrag.Fragment
	for _, key := range keys {
		if key == "mode" {
			continue
		}
		if !ops[key] {
			return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrUnknownOperator, key)
		}
		frag, err := compileOperator(columnExpr, ftype, key, obj[key], insensitive)
		if err != nil {
			return sqlfrag.Fragment{}, err
		}
		frags = append(frags, frag)
	}

	if len(frags) == 0 {
		return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrEmptyFilter, columnExpr)
	}

	return sqlfrag.Join(" AND ", frags...), nil
}
