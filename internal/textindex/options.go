package textindex

import (
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
)

const (
	// DefaultMaxResults caps a query whose caller passed a non-positive
	// limit, bounding resource use for "all matches" queries.
	DefaultMaxResults = 10000

	// DefaultCacheSize is the number of lookup records kept in memory.
	DefaultCacheSize = 256
)

// Options configures a TextIndex. Everything the original kept as
// process-wide constants (analyzer, result cap, escaping) is passed in
// here explicitly.
type Options struct {
	// Analyzer is the registered analyzer name used for declared property
	// fields and for undeclared fields written through the permissive
	// mapping. The entity field always uses the keyword analyzer so
	// identifiers index as a single term.
	Analyzer string

	// MaxResults replaces a non-positive query limit.
	MaxResults int

	// CacheSize is the number of entries in the Get record cache,
	// invalidated on every commit. Zero or negative disables caching.
	CacheSize int

	// Escape escapes an identifier for the query string syntax.
	Escape func(string) string
}

// DefaultOptions returns the standard analyzer, the 10,000 result cap, and
// the default escaper.
func DefaultOptions() Options {
	return Options{
		Analyzer:   standard.Name,
		MaxResults: DefaultMaxResults,
		CacheSize:  DefaultCacheSize,
		Escape:     EscapeQuery,
	}
}

// withDefaults fills zero-valued fields so a partially built Options is
// usable.
func (o Options) withDefaults() Options {
	if o.Analyzer == "" {
		o.Analyzer = standard.Name
	}
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.Escape == nil {
		o.Escape = EscapeQuery
	}
	return o
}
