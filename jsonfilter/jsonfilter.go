// Package jsonfilter is the top-level compiler for a JSON filter object
// applied to a field declared `json` in the caller's field catalog. It
// parses the filter's path and mode metadata, then dispatches each
// recognized operator key to jsonop (the shared per-operator table),
// searchcompiler (the "search" key), or wildcard (when the path contains
// one or more `*`).
package jsonfilter

import (
	"slices"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/lattice-sql/pgjsonql/compileerr"
	"github.com/lattice-sql/pgjsonql/jsonop"
	"github.com/lattice-sql/pgjsonql/jsonref"
	"github.com/lattice-sql/pgjsonql/pathlang"
	"github.com/lattice-sql/pgjsonql/searchcompiler"
	"github.com/lattice-sql/pgjsonql/sqlfrag"
	"github.com/lattice-sql/pgjsonql/wildcard"
)

// metadataKeys are the filter object keys that carry configuration rather
// than naming an operator.
var metadataKeys = map[string]bool{
	"path":           true,
	"mode":           true,
	"searchLanguage": true,
	"searchType":     true,
	"searchIn":       true,
}

// Compile builds the predicate for a json-typed field's filter object.
// columnExpr is the alias-qualified column reference (e.g. `"u"."data"`);
// filter is the JsonFilter map, required to carry a "path" key unless
// it is addressing the root value.
func Compile(columnExpr string, filter map[string]any) (sqlfrag.Fragment, error) {
	path, err := parsePath(filter)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}

	insensitive := false
	if m, ok := filter["mode"]; ok {
		if s, ok := m.(string); ok && s == "insensitive" {
			insensitive = true
		}
	}

	keys := operatorKeys(filter)
	if len(keys) == 0 {
		return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrEmptyFilter, columnExpr)
	}

	if path.HasWildcard() {
		return wildcard.Compile(columnExpr, path, keys, filter, insensitive)
	}

	var frags []sqlfrag.Fragment
	for _, key := range keys {
		frag, err := compileOperator(columnExpr, path, key, filter, insensitive)
		if err != nil {
			return sqlfrag.Fragment{}, err
		}
		frags = append(frags, frag)
	}

	return sqlfrag.Join(" AND ", frags...), nil
}

// parsePath reads the filter's "path" metadata. An absent path, an empty
// string, and an empty segment list all address the root value — the
// "special path" — which is a valid target for the operators declaring
// SupportsSpecialPath, so none of those shapes is a parse error here.
func parsePath(filter map[string]any) (pathlang.Path, error) {
	raw, ok := filter["path"]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
	case []string:
		if len(v) == 0 {
			return nil, nil
		}
	case []any:
		if len(v) == 0 {
			return nil, nil
		}
	}
	return pathlang.ParseAny(raw)
}

func operatorKeys(filter map[string]any) []string {
	keys := maps.Keys(filter)
	slices.Sort(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if !metadataKeys[k] {
			out = append(out, k)
		}
	}
	return out
}

func compileOperator(columnExpr string, path pathlang.Path, key string, filter map[string]any, insensitive bool) (sqlfrag.Fragment, error) {
	value := filter[key]

	if key == "search" {
		opts := searchcompiler.Options{
			Language: stringMeta(filter, "searchLanguage"),
			Type:     stringMeta(filter, "searchType"),
			In:       stringMeta(filter, "searchIn"),
		}
		return searchcompiler.Compile(columnExpr, path, opts, value)
	}

	if len(path) == 0 && !jsonop.SupportsSpecialPath(key) {
		return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrOperatorRequiresNonEmptyPath, key)
	}

	left := jsonop.LeftExprs{
		JSONB:     jsonref.JSONBFragment(columnExpr, path),
		Text:      jsonref.TextFragment(columnExpr, path),
		PathEmpty: len(path) == 0,
	}
	return jsonop.Compile(left, key, value, insensitive)
}

func stringMeta(filter map[string]any, key string) string {
	if v, ok := filter[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
