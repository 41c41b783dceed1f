package textindex

// Entity is one record to make searchable: an opaque identifier (typically
// a URI) plus the textual field values to index for it. A field may carry
// several values. Entities are built by the caller, handed to AddEntity,
// and must not be modified afterwards.
type Entity struct {
	id     string
	order  []string
	values map[string][]string
}

// NewEntity creates an entity with the given identifier.
func NewEntity(id string) *Entity {
	return &Entity{
		id:     id,
		values: make(map[string][]string),
	}
}

// Add appends one value for the given field and returns the entity for
// chaining. Repeated adds for the same field accumulate.
func (e *Entity) Add(field, value string) *Entity {
	if _, ok := e.values[field]; !ok {
		e.order = append(e.order, field)
	}
	e.values[field] = append(e.values[field], value)
	return e
}

// ID returns the entity identifier.
func (e *Entity) ID() string { return e.id }

// Fields returns the field names in first-add order.
func (e *Entity) Fields() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Values returns the values added for the given field, in add order.
func (e *Entity) Values(field string) []string {
	return e.values[field]
}

// Len returns the total number of field values.
func (e *Entity) Len() int {
	n := 0
	for _, vs := range e.values {
		n += len(vs)
	}
	return n
}
