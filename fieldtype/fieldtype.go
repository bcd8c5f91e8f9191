// Package fieldtype holds the caller-declared field-type catalog that
// governs which filter shape is valid for a given field name.
package fieldtype

import (
	"slices"

	"golang.org/x/exp/maps"
)

// Type enumerates the recognized field types.
type Type string

// Recognized Type values. Any other string is an UnsupportedFieldType error
// at the call sites that validate it explicitly (Config.Of does not
// error; see its doc comment).
const (
	String  Type = "string"
	Number  Type = "number"
	Boolean Type = "boolean"
	Date    Type = "date"
	JSON    Type = "json"
)

// Valid reports whether t is one of the five recognized Type values.
func (t Type) Valid() bool {
	switch t {
	case String, Number, Boolean, Date, JSON:
		return true
	default:
		return false
	}
}

// Config maps field name to declared Type. The zero value is an empty
// catalog, for which every field defaults to String.
type Config map[string]Type

// Of returns the declared Type for field, defaulting to String when field is
// absent from the catalog: an unknown field name is treated as a string.
func (c Config) Of(field string) Type {
	if t, ok := c[field]; ok {
		return t
	}
	return String
}

// IsJSON reports whether field is declared as the json type.
func (c Config) IsJSON(field string) bool {
	return c.Of(field) == JSON
}

// Fields returns the catalog's field names in a stable, sorted order, so
// that compilers iterating the whole catalog (for example to validate a
// WhereTree's top-level keys) never depend on Go's randomized map order.
func (c Config) Fields() []string {
	fields := maps.Keys(c)
	slices.Sort(fields)
	return fields
}
