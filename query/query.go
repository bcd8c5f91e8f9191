// Package query is this module's public entry point: assembling a
// full SELECT over WhereTree/OrderBy input, and re-exporting the keyset and
// sub-schema helpers as top-level build functions so a caller never has to
// reach into the internal compiler packages directly.
package query

import (
	"unicode/utf8"

	"github.com/lattice-sql/pgjsonql/fieldtype"
	"github.com/lattice-sql/pgjsonql/identifier"
	"github.com/lattice-sql/pgjsonql/orderby"
	"github.com/lattice-sql/pgjsonql/sqlfrag"
	"github.com/lattice-sql/pgjsonql/wheretree"
)

// defaultTake and defaultSkip are the pagination defaults.
const (
	defaultTake = 50
	defaultSkip = 0
)

// Params is buildQuery's input. TableAlias, Fields, Take, and Skip
// are optional; the zero value of each (""/nil/nil/nil) selects the
// documented default.
type Params struct {
	TableName   string
	TableAlias  string
	Fields      []string
	FieldConfig fieldtype.Config
	Where       map[string]any
	OrderBy     any
	Take        *int
	Skip        *int
}

// BuildQuery compiles Params into `SELECT <fields> FROM "tableName" "alias"
// WHERE ... [ORDER BY ...] LIMIT $ OFFSET $`, applying the defaults:
// tableAlias defaults to tableName's first character, fields to ["*"], take
// to 50, skip to 0.
func BuildQuery(p Params) (sqlfrag.Fragment, error) {
	quotedTable, err := identifier.Quote(p.TableName)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}

	alias := p.TableAlias
	if alias == "" {
		alias = firstChar(p.TableName)
	}
	quotedAlias, err := identifier.Quote(alias)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}

	fields := p.Fields
	if len(fields) == 0 {
		fields = []string{"*"}
	}
	selectList, err := buildSelectList(alias, fields)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}

	whereFrag, err := GenerateWhere(alias, p.FieldConfig, p.Where)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}
	orderFrag, err := GenerateOrderBy(alias, p.FieldConfig, p.OrderBy)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}

	take := defaultTake
	if p.Take != nil {
		take = *p.Take
	}
	skip := defaultSkip
	if p.Skip != nil {
		skip = *p.Skip
	}

	b := sqlfrag.NewBuilder()
	b.WriteString("SELECT ").WriteString(selectList).WriteString(" FROM ").WriteString(quotedTable).WriteString(" ").WriteString(quotedAlias)
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

// GenerateWhere is buildQuery's WHERE-clause component, exported standalone
// so a caller can compile a WHERE fragment without a full query.
func GenerateWhere(tableAlias string, fieldConfig fieldtype.Config, where map[string]any) (sqlfrag.Fragment, error) {
	return wheretree.Compile(tableAlias, fieldConfig, where)
}

// GenerateOrderBy is buildQuery's ORDER BY component, exported standalone.
func GenerateOrderBy(tableAlias string, fieldConfig fieldtype.Config, orderBy any) (sqlfrag.Fragment, error) {
	return orderby.Compile(tableAlias, fieldConfig, orderBy)
}

func buildSelectList(alias string, fields []string) (string, error) {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += ", "
		}
		if f == "*" {
			out += "*"
			continue
		}
		quoted, err := identifier.Quote(f)
		if err != nil {
			return "", err
		}
		quotedAlias, err := identifier.Quote(alias)
		if err != nil {
			return "", err
		}
		out += quotedAlias + "." + quoted
	}
	return out, nil
}

func firstChar(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	return string(r)
}
