package textindex

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search"
	"github.com/gofrs/flock"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tripletext/tripletext/internal/errs"
)

// TextIndex orchestrates indexing sessions and lookups against a Bleve
// index, translating entities into documents and retrieved documents back
// into typed records.
//
// Writes follow an explicit session lifecycle: StartIndexing stages a
// batch, AddEntity fills it, FinishIndexing commits it atomically,
// AbortIndexing discards it. At most one session may be open per instance,
// and the caller serializes StartIndexing/AddEntity/FinishIndexing
// sequences; a cross-process file lock guards against concurrent writers
// from other processes, but concurrent writes from multiple goroutines on
// one instance are a contract violation, not something the index detects.
//
// Reads (Get, Query) run against the last committed state, never against
// the open session, and may proceed concurrently with each other and with
// a writer.
type TextIndex struct {
	def  *EntityDefinition
	opts Options
	idx  bleve.Index
	lock *flock.Flock

	// batch is the open indexing session; nil while closed.
	batch  *bleve.Batch
	staged int

	cache *lru.Cache[string, Record]
}

// Open opens the text index at path, creating the storage location if it
// has never been initialized. A freshly created index is immediately
// queryable and empty, so read paths never observe an "index does not
// exist" condition. Opening the same fresh location again (after Close)
// succeeds and sees the same empty index.
func Open(path string, def *EntityDefinition, opts Options) (*TextIndex, error) {
	opts = opts.withDefaults()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errs.IndexIO("create index directory", err)
		}
	}

	im, err := buildMapping(def, opts)
	if err != nil {
		return nil, err
	}

	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, im)
	}
	if err != nil {
		return nil, errs.IndexIO(fmt.Sprintf("open index at %s", path), err)
	}

	ti := &TextIndex{
		def:  def,
		opts: opts,
		idx:  idx,
		lock: flock.New(path + ".lock"),
	}
	if opts.CacheSize > 0 {
		ti.cache, _ = lru.New[string, Record](opts.CacheSize)
	}
	return ti, nil
}

// buildMapping declares the entity field as a stored keyword field and
// every declared field as a stored text field under the configured
// analyzer. Undeclared fields fall through to the dynamic mapping, which
// indexes and stores them with the default analyzer (the permissive
// mapping policy).
func buildMapping(def *EntityDefinition, opts Options) (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = opts.Analyzer
	// Unqualified query terms search the primary field.
	im.DefaultField = def.PrimaryField()

	doc := bleve.NewDocumentMapping()

	id := bleve.NewTextFieldMapping()
	id.Analyzer = keyword.Name
	id.Store = true
	id.IncludeInAll = false
	id.IncludeTermVectors = false
	doc.AddFieldMappingsAt(def.EntityField(), id)

	for _, f := range def.Fields() {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = opts.Analyzer
		fm.Store = true
		doc.AddFieldMappingsAt(f, fm)
	}
	im.DefaultMapping = doc

	if err := im.Validate(); err != nil {
		return nil, errs.Config(fmt.Sprintf("invalid index mapping (analyzer %q)", opts.Analyzer), err)
	}
	return im, nil
}

// Definition returns the schema this index was opened with.
func (ti *TextIndex) Definition() *EntityDefinition { return ti.def }

// IsIndexing reports whether a session is open.
func (ti *TextIndex) IsIndexing() bool { return ti.batch != nil }

// StartIndexing opens an indexing session. It is an error to start a
// session while one is already open, and an index I/O error if the write
// lock is held by another process.
func (ti *TextIndex) StartIndexing() error {
	if ti.batch != nil {
		return errs.Usage("indexing session already open")
	}
	locked, err := ti.lock.TryLock()
	if err != nil {
		return errs.IndexIO("acquire write lock", err)
	}
	if !locked {
		return errs.IndexIO("index is locked by another writer", nil)
	}
	ti.batch = ti.idx.NewBatch()
	ti.staged = 0
	slog.Debug("indexing session opened", slog.String("entity_field", ti.def.EntityField()))
	return nil
}

// AddEntity stages one document for the entity: the identifier field plus
// one entry per field value. The document identifier is the entity
// identifier, so re-adding an entity replaces its document once committed.
// Valid only while a session is open. The staged document becomes visible
// to reads only after FinishIndexing.
func (ti *TextIndex) AddEntity(e *Entity) error {
	if ti.batch == nil {
		return errs.Usage("no indexing session open")
	}
	if e == nil || e.ID() == "" {
		return errs.Usage("entity has no identifier")
	}
	if err := ti.batch.Index(e.ID(), ti.document(e)); err != nil {
		return errs.IndexIO(fmt.Sprintf("stage entity %s", e.ID()), err)
	}
	ti.staged++
	return nil
}

// document flattens an entity into the engine's document shape. Fields are
// written verbatim whether or not the schema declares them; a field that
// collides with the entity field is skipped so the identifier stays
// single-valued.
func (ti *TextIndex) document(e *Entity) map[string]interface{} {
	doc := make(map[string]interface{}, len(e.Fields())+1)
	doc[ti.def.EntityField()] = e.ID()
	for _, f := range e.Fields() {
		if f == ti.def.EntityField() {
			continue
		}
		if vals := e.Values(f); len(vals) == 1 {
			doc[f] = vals[0]
		} else if len(vals) > 1 {
			doc[f] = vals
		}
	}
	return doc
}

// FinishIndexing commits all staged documents atomically and durably,
// closes the session, and releases the write lock. After it returns, new
// reads observe the staged documents. On failure the session is gone and
// the staged documents are not durable; the caller reconciles by
// re-indexing (see the triple store's Entities).
func (ti *TextIndex) FinishIndexing() error {
	if ti.batch == nil {
		return errs.Usage("no indexing session open")
	}
	batch := ti.batch
	ti.batch = nil
	defer ti.unlock()

	if err := ti.idx.Batch(batch); err != nil {
		return errs.IndexIO("commit staged documents", err)
	}
	if ti.cache != nil {
		ti.cache.Purge()
	}
	slog.Debug("indexing session committed", slog.Int("documents", ti.staged))
	return nil
}

// AbortIndexing discards all documents staged since StartIndexing, closes
// the session, and releases the write lock. The staged batch was never
// applied to storage, so the rollback itself cannot fail; aborting with no
// open session is a no-op. Always leaves the index closed for writing.
func (ti *TextIndex) AbortIndexing() error {
	if ti.batch == nil {
		return nil
	}
	n := ti.staged
	ti.batch = nil
	ti.staged = 0
	ti.unlock()
	slog.Debug("indexing session aborted", slog.Int("discarded", n))
	return nil
}

func (ti *TextIndex) unlock() {
	if err := ti.lock.Unlock(); err != nil {
		slog.Warn("release write lock", slog.String("error", err.Error()))
	}
}

// Get looks up one entity by identifier against a fresh read snapshot and
// reconstructs its record: the identifier as an IRI value plus the stored
// text of every declared field present on the document, as plain literals.
// Returns (nil, nil) when the identifier is not indexed; that is a normal
// outcome, not an error.
func (ti *TextIndex) Get(ctx context.Context, id string) (Record, error) {
	if ti.cache != nil {
		if rec, ok := ti.cache.Get(id); ok {
			return rec, nil
		}
	}

	qs := ti.def.EntityField() + ":" + ti.opts.Escape(id)
	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(qs), 1, 0, false)
	req.Fields = []string{"*"}

	res, err := ti.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, errs.Query(fmt.Sprintf("look up entity %s", id), err)
	}
	if len(res.Hits) == 0 {
		return nil, nil
	}

	rec := ti.record(res.Hits[0])
	if ti.cache != nil {
		ti.cache.Add(id, rec)
	}
	return rec, nil
}

// Query parses qs with the primary field as the default search field and
// returns matching entity identifiers in the engine's relevance order. A
// non-positive limit is normalized to the configured result cap. Parse and
// storage failures surface as query errors, never as empty results.
func (ti *TextIndex) Query(ctx context.Context, qs string, limit int) ([]Value, error) {
	if limit <= 0 {
		limit = ti.opts.MaxResults
	}
	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(qs), limit, 0, false)
	req.Fields = []string{ti.def.EntityField()}

	res, err := ti.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, errs.Query("execute query", err)
	}

	out := make([]Value, 0, len(res.Hits))
	for _, hit := range res.Hits {
		for _, id := range storedStrings(hit.Fields[ti.def.EntityField()]) {
			out = append(out, IRI(id))
		}
	}
	return out, nil
}

// QueryAll runs Query with the configured result cap as the limit.
func (ti *TextIndex) QueryAll(ctx context.Context, qs string) ([]Value, error) {
	return ti.Query(ctx, qs, 0)
}

// Close releases the underlying index. An open session is aborted first.
func (ti *TextIndex) Close() error {
	if ti.batch != nil {
		_ = ti.AbortIndexing()
	}
	if err := ti.idx.Close(); err != nil {
		return errs.IndexIO("close index", err)
	}
	return nil
}

// record rebuilds the field-name to value mapping for one matched document.
func (ti *TextIndex) record(hit *search.DocumentMatch) Record {
	rec := make(Record, len(ti.def.Fields())+1)

	id := hit.ID
	if stored := storedStrings(hit.Fields[ti.def.EntityField()]); len(stored) > 0 {
		id = stored[0]
	}
	rec[ti.def.EntityField()] = []Value{IRI(id)}

	for _, f := range ti.def.Fields() {
		stored := storedStrings(hit.Fields[f])
		if len(stored) == 0 {
			continue
		}
		vals := make([]Value, len(stored))
		for i, s := range stored {
			vals[i] = Literal(s)
		}
		rec[f] = vals
	}
	return rec
}

// storedStrings normalizes a stored field value, which the engine returns
// as a single value or a slice depending on occurrence count.
func storedStrings(v interface{}) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
