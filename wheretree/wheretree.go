// Package wheretree walks a where tree, dispatching each field predicate
// to scalarfilter or jsonfilter per the caller's field catalog and
// combining AND/OR/NOT combinators; sibling predicates under the same
// parent combine by AND.
package wheretree

import (
	"slices"

	"golang.org/x/exp/maps"

	"github.com/lattice-sql/pgjsonql/compileerr"
	"github.com/lattice-sql/pgjsonql/fieldtype"
	"github.com/lattice-sql/pgjsonql/jsonfilter"
	"github.com/lattice-sql/pgjsonql/jsonref"
	"github.com/lattice-sql/pgjsonql/scalarfilter"
	"github.com/lattice-sql/pgjsonql/sqlfrag"
)

// Compile compiles tree (a where-tree node) against alias's columns,
// typed per fields. An empty or nil tree compiles to TRUE.
func Compile(alias string, fields fieldtype.Config, tree map[string]any) (sqlfrag.Fragment, error) {
	if len(tree) == 0 {
		return sqlfrag.New("TRUE", nil), nil
	}

	keys := maps.Keys(tree)
	slices.Sort(keys)

	var frags []sqlfrag.Fragment
	for _, key := range keys {
		frag, err := compileNode(alias, fields, key, tree[key])
		if err != nil {
			return sqlfrag.Fragment{}, err
		}
		if !frag.Empty() {
			frags = append(frags, frag)
		}
	}

	if len(frags) == 0 {
		return sqlfrag.New("TRUE", nil), nil
	}
	return sqlfrag.Join(" AND ", frags...), nil
}

func compileNode(alias string, fields fieldtype.Config, key string, value any) (sqlfrag.Fragment, error) {
	switch key {
	case "AND":
		return compileAnd(alias, fields, value)
	case "OR":
		return compileOr(alias, fields, value)
	case "NOT":
		return compileNot(alias, fields, value)
	default:
		return compileField(alias, fields, key, value)
	}
}

// compileAnd handles the AND combinator: compile each child and AND them,
// parenthesized as a unit.
func compileAnd(alias string, fields fieldtype.Config, value any) (sqlfrag.Fragment, error) {
	children, err := asTreeList(value)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}
	if len(children) == 0 {
		return sqlfrag.Fragment{}, nil
	}

	var frags []sqlfrag.Fragment
	for _, child := range children {
		frag, err := Compile(alias, fields, child)
		if err != nil {
			return sqlfrag.Fragment{}, err
		}
		frags = append(frags, frag)
	}
	return sqlfrag.Wrap("(", sqlfrag.Join(" AND ", frags...), ")"), nil
}

// compileOr handles the OR combinator: an empty array is vacuous (contributes
// nothing, not FALSE); a non-empty array ORs its compiled children,
// parenthesized as a unit.
func compileOr(alias string, fields fieldtype.Config, value any) (sqlfrag.Fragment, error) {
	children, err := asTreeList(value)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}
	if len(children) == 0 {
		return sqlfrag.Fragment{}, nil
	}

	var frags []sqlfrag.Fragment
	for _, child := range children {
		frag, err := Compile(alias, fields, child)
		if err != nil {
			return sqlfrag.Fragment{}, err
		}
		frags = append(frags, frag)
	}
	return sqlfrag.Wrap("(", sqlfrag.Join(" OR ", frags...), ")"), nil
}

// compileNot handles the NOT combinator: one child or an array of children,
// emitting NOT (child1 AND child2 ...).
func compileNot(alias string, fields fieldtype.Config, value any) (sqlfrag.Fragment, error) {
	var children []map[string]any
	if m, ok := value.(map[string]any); ok {
		children = []map[string]any{m}
	} else {
		list, err := asTreeList(value)
		if err != nil {
			return sqlfrag.Fragment{}, err
		}
		children = list
	}
	if len(children) == 0 {
		return sqlfrag.Fragment{}, nil
	}

	var frags []sqlfrag.Fragment
	for _, child := range children {
		frag, err := Compile(alias, fields, child)
		if err != nil {
			return sqlfrag.Fragment{}, err
		}
		frags = append(frags, frag)
	}
	return sqlfrag.Wrap("NOT (", sqlfrag.Join(" AND ", frags...), ")"), nil
}

// compileField dispatches a single field predicate to the matching
// scalarfilter or jsonfilter compiler per fields.Of(field).
func compileField(alias string, fields fieldtype.Config, field string, value any) (sqlfrag.Fragment, error) {
	colExpr, err := jsonref.ColumnExpr(alias, field)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}

	ftype := fields.Of(field)
	if ftype == fieldtype.JSON {
		filter, ok := value.(map[string]any)
		if !ok {
			return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrInvalidValueForOperator, "json field filter must be an object with a path")
		}
		return jsonfilter.Compile(colExpr, filter)
	}
	return scalarfilter.Compile(colExpr, ftype, value)
}

// asTreeList normalizes an AND/OR/NOT combinator's array value into a list
// of WhereTree nodes.
func asTreeList(value any) ([]map[string]any, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, compileerr.Wrap(compileerr.ErrInvalidValueForOperator, "AND/OR/NOT requires an array of where-tree nodes")
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, compileerr.Wrap(compileerr.ErrInvalidValueForOperator, "where-tree array element must be an object")
		}
		out = append(out, m)
	}
	return out, nil
}
