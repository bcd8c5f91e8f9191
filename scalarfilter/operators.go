package scalarfilter

import (
	"fmt"

	"github.com/lattice-sql/pgjsonql/compileerr"
	"github.com/lattice-sql/pgjsonql/fieldtype"
	"github.com/lattice-sql/pgjsonql/sqlfrag"
	"github.com/lattice-sql/pgjsonql/valuecodec"
)

// compileOperator compiles a single operator key against columnExpr. value
// is the raw operator operand (never a filter object itself, except for
// "not", which may take a nested filter).
func compileOperator(columnExpr string, ftype fieldtype.Type, op string, value any, insensitive bool) (sqlfrag.Fragment, error) {
	switch op {
	case "equals":
		return compareOp(columnExpr, ftype, "=", value, insensitive)
	case "not":
		return compileNot(columnExpr, ftype, value, insensitive)
	case "gt":
		return compareOp(columnExpr, ftype, ">", value, insensitive)
	case "gte":
		return compareOp(columnExpr, ftype, ">=", value, insensitive)
	case "lt":
		return compareOp(columnExpr, ftype, "<", value, insensitive)
	case "lte":
		return compareOp(columnExpr, ftype, "<=", value, insensitive)
	case "in":
		return compileInList(columnExpr, ftype, value, insensitive, false)
	case "notIn":
		return compileInList(columnExpr, ftype, value, insensitive, true)
	case "contains":
		return compileLike(columnExpr, value, insensitive, true, true)
	case "startsWith":
		return compileLike(columnExpr, value, insensitive, false, true)
	case "endsWith":
		return compileLike(columnExpr, value, insensitive, true, false)
	case "search":
		return compileSearch(columnExpr, value)
	default:
		return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrUnknownOperator, op)
	}
}

// compileNot handles not's dual shape: a nested filter object negates
// as NOT (nested), a bare value negates as "!=".
func compileNot(columnExpr string, ftype fieldtype.Type, value any, insensitive bool) (sqlfrag.Fragment, error) {
	if nested, ok := value.(map[string]any); ok {
		inner, err := Compile(columnExpr, ftype, nested)
		if err != nil {
			return sqlfrag.Fragment{}, err
		}
		return sqlfrag.Wrap("NOT (", inner, ")"), nil
	}
	return compareOp(columnExpr, ftype, "!=", value, insensitive)
}

// bindScalar prepares value as a Builder.Param operand for ftype, parsing
// and re-encoding dates through valuecodec so the bound parameter carries
// the wire type PostgreSQL's timestamptz comparison expects.
func bindScalar(ftype fieldtype.Type, value any) (any, error) {
	if ftype != fieldtype.Date {
		return value, nil
	}
	t, err := valuecodec.ParseDate(value)
	if err != nil {
		return nil, compileerr.Wrap(compileerr.ErrInvalidValueForOperator, err.Error())
	}
	return valuecodec.AsTimestamptz(t), nil
}

// compareOp writes `lhs <sqlOp> $n`, folding both sides through LOWER when
// insensitive is set on a string comparison (mode: 'insensitive'). The
// fold happens in SQL, never in Go: the bound parameter always keeps the
// caller's original casing.
func compareOp(columnExpr string, ftype fieldtype.Type, sqlOp string, value any, insensitive bool) (sqlfrag.Fragment, error) {
	bound, err := bindScalar(ftype, value)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}

	fold := insensitive && ftype == fieldtype.String
	b := sqlfrag.NewBuilder()
	if fold {
		b.WriteString("LOWER(").WriteString(columnExpr).WriteString(") ").WriteString(sqlOp).WriteString(" LOWER(")
		b.WriteParam(bound)
		b.WriteString(")")
	} else {
		b.WriteString(columnExpr).WriteString(" ").WriteString(sqlOp).WriteString(" ")
		b.WriteParam(bound)
	}
	text, params := b.Build()
	return sqlfrag.New(text, params), nil
}

// compileInList handles "in"/"notIn", including the empty-list constant
// shortcut: `in: []` is always FALSE, `notIn: []` always TRUE,
// regardless of field type.
func compileInList(columnExpr string, ftype fieldtype.Type, value any, insensitive, negate bool) (sqlfrag.Fragment, error) {
	items, ok := value.([]any)
	if !ok {
		return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrInvalidValueForOperator, "in/notIn requires an array")
	}
	if len(items) == 0 {
		if negate {
			return sqlfrag.New("TRUE", nil), nil
		}
		return sqlfrag.New("FALSE", nil), nil
	}

	fold := insensitive && ftype == fieldtype.String
	b := sqlfrag.NewBuilder()
	if fold {
		b.WriteString("LOWER(").WriteString(columnExpr).WriteString(")")
	} else {
		b.WriteString(columnExpr)
	}
	if negate {
		b.WriteString(" NOT IN (")
	} else {
		b.WriteString(" IN (")
	}
	for i, item := range items {
		bound, err := bindScalar(ftype, item)
		if err != nil {
			return sqlfrag.Fragment{}, err
		}
		if i > 0 {
			b.WriteString(",")
		}
		if fold {
			b.WriteString("LOWER(")
			b.WriteParam(bound)
			b.WriteString(")")
		} else {
			b.WriteParam(bound)
		}
	}
	b.WriteString(")")
	text, params := b.Build()
	return sqlfrag.New(text, params), nil
}

// compileSearch emits the full-text predicate for the
// "search" operator: to_tsvector('simple', expr) @@ plainto_tsquery('simple', $n).
func compileSearch(columnExpr string, value any) (sqlfrag.Fragment, error) {
	query, ok := value.(string)
	if !ok || query == "" {
		return sqlfrag.Fragment{}, compileerr.Wrap(compileerr.ErrInvalidSearchValue, fmt.Sprintf("%v", value))
	}
	b := sqlfrag.NewBuilder()
	b.WriteString("to_tsvector('simple', ").WriteString(columnExpr).WriteString(") @@ plainto_tsquery('simple', ")
	b.WriteParam(query)
	b.WriteString(")")
	text, params := b.Build()
	return sqlfrag.New(text, params), nil
}

