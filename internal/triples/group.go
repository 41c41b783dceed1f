package triples

import (
	"github.com/tripletext/tripletext/internal/textindex"
)

// Group regroups in-memory statements into entities under the given
// schema: one entity per subject in first-seen order, each predicate
// mapped back to its declared field. Statements with unmapped predicates
// are skipped, and a subject with only unmapped statements yields no
// entity.
func Group(ts []Triple, def *textindex.EntityDefinition) []*textindex.Entity {
	var out []*textindex.Entity
	bySubject := make(map[string]*textindex.Entity)

	for _, t := range ts {
		field, ok := def.FieldFor(textindex.PropertyID(t.Predicate))
		if !ok {
			continue
		}
		e, ok := bySubject[t.Subject]
		if !ok {
			e = textindex.NewEntity(t.Subject)
			bySubject[t.Subject] = e
			out = append(out, e)
		}
		e.Add(field, t.Object)
	}
	return out
}
