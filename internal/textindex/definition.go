// Package textindex implements the free-text entity index that sits beside
// the triple store. Entities (identifier plus mapped textual property
// values) are flattened into search-engine documents during an explicit
// indexing session, and reconstructed into typed records on lookup.
package textindex

import "fmt"

// PropertyID identifies the structured property a searchable field mirrors,
// typically a predicate IRI. It is opaque to the index itself.
type PropertyID string

// FieldMapping binds one searchable field to the property it mirrors.
type FieldMapping struct {
	Field    string
	Property PropertyID
}

// UnknownFieldError reports a lookup for a field the schema does not declare.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Field)
}

// EntityDefinition declares which field holds the entity identifier, which
// field is searched when a query names none, and which property each
// indexable field mirrors. It is built once by the configuration reader at
// store-open time, is immutable afterwards, and is shared read-only by all
// sessions and queries. The index trusts the definition as handed over;
// validation (required names, collisions with the entity field) is the
// reader's job.
type EntityDefinition struct {
	entityField  string
	primaryField string
	fields       []string
	properties   map[string]PropertyID
}

// NewEntityDefinition builds a definition from the entity field, the
// default search field, and the field mappings in declaration order.
// A field mapped twice keeps its first mapping.
func NewEntityDefinition(entityField, primaryField string, mappings ...FieldMapping) *EntityDefinition {
	def := &EntityDefinition{
		entityField:  entityField,
		primaryField: primaryField,
		properties:   make(map[string]PropertyID, len(mappings)),
	}
	for _, m := range mappings {
		if _, dup := def.properties[m.Field]; dup {
			continue
		}
		def.fields = append(def.fields, m.Field)
		def.properties[m.Field] = m.Property
	}
	return def
}

// EntityField returns the name of the field holding the entity identifier.
func (d *EntityDefinition) EntityField() string { return d.entityField }

// PrimaryField returns the field searched when a query names no field.
func (d *EntityDefinition) PrimaryField() string { return d.primaryField }

// Fields returns the declared field names in declaration order, the entity
// field excluded.
func (d *EntityDefinition) Fields() []string {
	out := make([]string, len(d.fields))
	copy(out, d.fields)
	return out
}

// PropertyFor returns the property the given field mirrors.
// Returns an *UnknownFieldError if the field is not declared.
func (d *EntityDefinition) PropertyFor(field string) (PropertyID, error) {
	p, ok := d.properties[field]
	if !ok {
		return "", &UnknownFieldError{Field: field}
	}
	return p, nil
}

// FieldFor returns the declared field mirroring the given property. It is
// the reverse lookup used when regrouping stored statements into entities.
func (d *EntityDefinition) FieldFor(p PropertyID) (string, bool) {
	for _, f := range d.fields {
		if d.properties[f] == p {
			return f, true
		}
	}
	return "", false
}
