package textindex

import "encoding/json"

// ValueKind distinguishes identifier values from literals in reconstructed
// records.
type ValueKind int

const (
	// KindIRI marks an entity identifier value.
	KindIRI ValueKind = iota
	// KindLiteral marks a plain text value, optionally qualified by a
	// datatype or language tag.
	KindLiteral
)

// String returns the lowercase kind name.
func (k ValueKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	default:
		return "literal"
	}
}

// MarshalJSON renders the kind as its name.
func (k ValueKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Value is a typed field value reconstructed from the index. The index
// stores only plain text, so literals come back untagged; datatype and
// language recovery belongs to the triple store, which holds the original
// statements.
type Value struct {
	Kind     ValueKind `json:"kind"`
	Text     string    `json:"text"`
	Datatype string    `json:"datatype,omitempty"`
	Lang     string    `json:"lang,omitempty"`
}

// IRI returns an identifier-typed value.
func IRI(text string) Value {
	return Value{Kind: KindIRI, Text: text}
}

// Literal returns a plain literal value.
func Literal(text string) Value {
	return Value{Kind: KindLiteral, Text: text}
}

// Record maps field names to the stored values reconstructed for one
// entity. Repeated field occurrences are all kept; the entity field maps
// to a single IRI value.
type Record map[string][]Value
