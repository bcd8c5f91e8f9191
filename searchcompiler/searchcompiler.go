// Package searchcompiler emits the jsonb_to_tsvector full-text predicate a
// JSON filter's "search" operator key compiles to.
package searchcompiler

import (
	"github.com/lattice-sql/pgjsonql/compileerr"
	"github.com/lattice-sql/pgjsonql/jsonref"
	"github.com/lattice-sql/pgjsonql/pathlang"
	"github.com/lattice-sql/pgjsonql/sqlfrag"
	"github.com/lattice-sql/pgjsonql/valuecodec"
)

// includeSets maps searchIn values to the jsonb_to_tsvector "include" array
// for each recognized searchIn value.
var includeSets = map[string][]string{
	"all":      {"all"},
	"values":   {"string", "numeric", "boolean"},
	"keys":     {"key"},
	"strings":  {"string"},
	"numbers":  {"numeric"},
	"booleans": {"boolean"},
}

// queryFuncs maps searchType to the tsquery constructor function name.
var queryFuncs = map[string]string{
	"plain":  "plainto_tsquery",
	"phrase": "phraseto_tsquery",
}

// Options carries the metadata keys a JSON filter's search operator reads
// alongside its value: searchLanguage, searchType, searchIn. Zero
// values select the documented defaults.
type Options struct {
	Language string
	Type     string
	In       string
}

// normalized applies the defaults: language "simple", type "plain", in
// "all".
func (o Options) normalized() Options {
	if o.Language == "" {
		o.Language = "simple"
	}
	if o.Type == "" {
		o.Type = "plain"
	}
	if o.In == "" {
		o.In = "all"
	}
	return o
}

// Compile builds the full-text search predicate for a JSON field addressed
// by path against columnExpr. The root path omits the #> subscript
// entirely; a non-root path is bound as a single "$p::text[]" parameter,
// distinct from the per-segment ARRAY[$n,...] form the other JSON operators
// use through jsonref.
func Compile(columnExpr string, path pathlang.Path, opts Options, query any) (sqlfrag.Fragment, error) {
	q, ok := query.(string)
	if !ok || q == "" {
		return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrInvalidSearchValue, "search value must be a non-empty string")
	}
	if path.HasWildcard() {
		return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrInvalidValueForOperator, "search does not support a wildcard path")
	}

	opts = opts.normalized()

	include, ok := includeSets[opts.In]
	if !ok {
		return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrInvalidValueForOperator, "unrecognized searchIn value: "+opts.In)
	}
	queryFn, ok := queryFuncs[opts.Type]
	if !ok {
		return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrInvalidValueForOperator, "unrecognized searchType value: "+opts.Type)
	}

	includeArray, err := encodeTextArray(include)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}

	b := sqlfrag.NewBuilder()
	b.WriteString("jsonb_to_tsvector(")
	b.WriteParam(opts.Language)
	b.WriteString(", ")
	b.WriteString(columnExpr)
	if len(path) > 0 {
		b.WriteString(" #> ")
		b.WriteParam(jsonref.SegmentsText(path))
		b.WriteString("::text[]")
	}
	b.WriteString(", ")
	b.WriteParam(includeArray)
	b.WriteString("::jsonb) @@ ").WriteString(queryFn).WriteString("(")
	b.WriteParam(opts.Language)
	b.WriteString(", ")
	b.WriteParam(q)
	b.WriteString(")")
	text, params := b.Build()
	return sqlfrag.New(text, params), nil
}

// encodeTextArray canonically encodes include as a JSON array literal, the
// shape jsonb_to_tsvector's third argument expects.
func encodeTextArray(include []string) (string, error) {
	items := make([]any, len(include))
	for i, s := range include {
		items[i] = s
	}
	return valuecodec.EncodeJSONB(items)
}
