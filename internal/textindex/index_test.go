package textindex

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripletext/tripletext/internal/errs"
)

func newTestIndex(t *testing.T) *TextIndex {
	t.Helper()
	path := filepath.Join(t.TempDir(), "entities.bleve")
	ti, err := Open(path, testDefinition(), DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ti.Close() })
	return ti
}

func index(t *testing.T, ti *TextIndex, entities ...*Entity) {
	t.Helper()
	require.NoError(t, ti.StartIndexing())
	for _, e := range entities {
		require.NoError(t, ti.AddEntity(e))
	}
	require.NoError(t, ti.FinishIndexing())
}

func identifiers(vals []Value) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.Text
	}
	return out
}

func TestTextIndex_RoundTrip(t *testing.T) {
	// Given: one committed entity
	ti := newTestIndex(t)
	u := "http://example.org/alpha"
	index(t, ti, NewEntity(u).Add("text", "alpha beta"))

	// When: looking it up by identifier
	rec, err := ti.Get(context.Background(), u)
	require.NoError(t, err)
	require.NotNil(t, rec)

	// Then: the identifier comes back typed as an IRI
	require.Len(t, rec["uri"], 1)
	assert.Equal(t, KindIRI, rec["uri"][0].Kind)
	assert.Equal(t, u, rec["uri"][0].Text)

	// And: the primary field text comes back as a plain literal
	require.Len(t, rec["text"], 1)
	assert.Equal(t, KindLiteral, rec["text"][0].Kind)
	assert.Equal(t, "alpha beta", rec["text"][0].Text)
}

func TestTextIndex_Get_NotFoundOnFreshIndex(t *testing.T) {
	// Given: a freshly constructed, never-written index
	ti := newTestIndex(t)

	// Then: lookup is a not-found outcome, not an error
	rec, err := ti.Get(context.Background(), "http://example.org/missing")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestTextIndex_Get_MultiValuedFieldKeepsAllValues(t *testing.T) {
	ti := newTestIndex(t)
	u := "http://example.org/multi"
	index(t, ti, NewEntity(u).Add("text", "first label").Add("text", "second label"))

	rec, err := ti.Get(context.Background(), u)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.ElementsMatch(t, []string{"first label", "second label"}, identifiers(rec["text"]))
}

func TestTextIndex_Query_MatchesPrimaryFieldByDefault(t *testing.T) {
	// Given: two committed entities
	ti := newTestIndex(t)
	index(t, ti,
		NewEntity("http://example.org/A").Add("text", "quick fox"),
		NewEntity("http://example.org/B").Add("text", "lazy dog"),
	)

	// Then: unqualified terms search the primary field
	res, err := ti.Query(context.Background(), "fox", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://example.org/A"}, identifiers(res))

	res, err = ti.Query(context.Background(), "dog", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://example.org/B"}, identifiers(res))

	// And: a disjunction matches both, order left to engine relevance
	res, err = ti.Query(context.Background(), "quick dog", 10)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"http://example.org/A", "http://example.org/B"},
		identifiers(res))
}

func TestTextIndex_Query_FieldQualifiedTerm(t *testing.T) {
	ti := newTestIndex(t)
	index(t, ti,
		NewEntity("http://example.org/A").Add("text", "shared").Add("comment", "special remark"),
		NewEntity("http://example.org/B").Add("text", "shared"),
	)

	res, err := ti.Query(context.Background(), "comment:remark", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://example.org/A"}, identifiers(res))
}

func TestTextIndex_Query_LimitEnforcedAndCapApplied(t *testing.T) {
	// Given: 50 entities all matching one term
	ti := newTestIndex(t)
	require.NoError(t, ti.StartIndexing())
	for i := 0; i < 50; i++ {
		e := NewEntity(fmt.Sprintf("http://example.org/e%02d", i)).Add("text", "common term")
		require.NoError(t, ti.AddEntity(e))
	}
	require.NoError(t, ti.FinishIndexing())

	// Then: a positive limit truncates
	res, err := ti.Query(context.Background(), "common", 10)
	require.NoError(t, err)
	assert.Len(t, res, 10)

	// And: a non-positive limit is normalized to the cap, returning all 50
	res, err = ti.Query(context.Background(), "common", 0)
	require.NoError(t, err)
	assert.Len(t, res, 50)

	res, err = ti.QueryAll(context.Background(), "common")
	require.NoError(t, err)
	assert.Len(t, res, 50)
}

func TestTextIndex_AbortDiscardsStagedDocuments(t *testing.T) {
	// Given: a session with one staged entity
	ti := newTestIndex(t)
	u := "http://example.org/ghost"
	require.NoError(t, ti.StartIndexing())
	require.NoError(t, ti.AddEntity(NewEntity(u).Add("text", "never committed")))

	// When: the session is aborted
	require.NoError(t, ti.AbortIndexing())

	// Then: the entity is not found
	rec, err := ti.Get(context.Background(), u)
	require.NoError(t, err)
	assert.Nil(t, rec)

	// And: a new session can be opened
	require.NoError(t, ti.StartIndexing())
	require.NoError(t, ti.FinishIndexing())
}

func TestTextIndex_UncommittedWritesInvisibleToReads(t *testing.T) {
	ti := newTestIndex(t)
	u := "http://example.org/pending"
	require.NoError(t, ti.StartIndexing())
	require.NoError(t, ti.AddEntity(NewEntity(u).Add("text", "staged only")))

	// Reads see the last committed state, not the open session.
	rec, err := ti.Get(context.Background(), u)
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, ti.FinishIndexing())

	rec, err = ti.Get(context.Background(), u)
	require.NoError(t, err)
	assert.NotNil(t, rec)
}

func TestTextIndex_Get_EscapesSpecialCharacterIdentifiers(t *testing.T) {
	ti := newTestIndex(t)
	ids := []string{
		"http://example.org/a?x=1&y=2",
		`urn:odd:"quoted"`,
		"http://example.org/path/with/slashes",
	}
	require.NoError(t, ti.StartIndexing())
	for i, id := range ids {
		require.NoError(t, ti.AddEntity(NewEntity(id).Add("text", fmt.Sprintf("doc %d", i))))
	}
	require.NoError(t, ti.FinishIndexing())

	for _, id := range ids {
		rec, err := ti.Get(context.Background(), id)
		require.NoError(t, err, "identifier %q", id)
		require.NotNil(t, rec, "identifier %q", id)
		assert.Equal(t, id, rec["uri"][0].Text)
	}
}

func TestTextIndex_ReAddReplacesDocument(t *testing.T) {
	// Given: the same identifier indexed in two sessions
	ti := newTestIndex(t)
	u := "http://example.org/dup"
	index(t, ti, NewEntity(u).Add("text", "stale words"))
	index(t, ti, NewEntity(u).Add("text", "fresh words"))

	// Then: the last write wins
	rec, err := ti.Get(context.Background(), u)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, []string{"fresh words"}, identifiers(rec["text"]))

	// And: the identifier appears once in query results
	res, err := ti.Query(context.Background(), "fresh", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{u}, identifiers(res))

	res, err = ti.Query(context.Background(), "stale", 10)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestTextIndex_UndeclaredFieldIndexedButNotReconstructed(t *testing.T) {
	// Given: an entity carrying a field the schema does not declare
	ti := newTestIndex(t)
	u := "http://example.org/extra"
	index(t, ti, NewEntity(u).Add("text", "declared").Add("nickname", "zaphod"))

	// Then: the field is searchable when qualified
	res, err := ti.Query(context.Background(), "nickname:zaphod", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{u}, identifiers(res))

	// And: records only cover declared fields
	rec, err := ti.Get(context.Background(), u)
	require.NoError(t, err)
	require.NotNil(t, rec)
	_, present := rec["nickname"]
	assert.False(t, present)
}

func TestTextIndex_SessionStateErrors(t *testing.T) {
	ti := newTestIndex(t)

	// Writing while closed is a usage error.
	err := ti.AddEntity(NewEntity("x").Add("text", "y"))
	require.Error(t, err)
	assert.True(t, errs.IsUsage(err))

	err = ti.FinishIndexing()
	require.Error(t, err)
	assert.True(t, errs.IsUsage(err))

	// Aborting while closed is a no-op.
	require.NoError(t, ti.AbortIndexing())

	// Double start is a usage error.
	require.NoError(t, ti.StartIndexing())
	err = ti.StartIndexing()
	require.Error(t, err)
	assert.True(t, errs.IsUsage(err))
	require.NoError(t, ti.AbortIndexing())
}

func TestTextIndex_AddEntityWithoutIdentifier(t *testing.T) {
	ti := newTestIndex(t)
	require.NoError(t, ti.StartIndexing())
	defer func() { _ = ti.AbortIndexing() }()

	err := ti.AddEntity(NewEntity("").Add("text", "anonymous"))
	require.Error(t, err)
	assert.True(t, errs.IsUsage(err))
}

func TestTextIndex_Query_MalformedQueryString(t *testing.T) {
	ti := newTestIndex(t)

	// An unterminated phrase fails the parser; that surfaces as a query
	// error, never as empty results.
	_, err := ti.Query(context.Background(), `"unterminated`, 10)
	require.Error(t, err)
	assert.True(t, errs.IsQuery(err))
}

func TestTextIndex_IdempotentConstruction(t *testing.T) {
	// Given: a never-before-used storage location
	path := filepath.Join(t.TempDir(), "entities.bleve")
	def := testDefinition()

	// When: constructing, closing, constructing again
	first, err := Open(path, def, DefaultOptions())
	require.NoError(t, err)
	rec, err := first.Get(context.Background(), "http://example.org/none")
	require.NoError(t, err)
	assert.Nil(t, rec)
	require.NoError(t, first.Close())

	second, err := Open(path, def, DefaultOptions())
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	// Then: the second instance observes an empty, queryable index
	res, err := second.Query(context.Background(), "anything", 10)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestTextIndex_GetCacheInvalidatedOnCommit(t *testing.T) {
	ti := newTestIndex(t)
	u := "http://example.org/cached"
	index(t, ti, NewEntity(u).Add("text", "before"))

	rec, err := ti.Get(context.Background(), u)
	require.NoError(t, err)
	require.Equal(t, []string{"before"}, identifiers(rec["text"]))

	// A new commit replaces the document and purges the record cache.
	index(t, ti, NewEntity(u).Add("text", "after"))

	rec, err = ti.Get(context.Background(), u)
	require.NoError(t, err)
	require.Equal(t, []string{"after"}, identifiers(rec["text"]))
}

func TestTextIndex_CloseAbortsOpenSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entities.bleve")
	ti, err := Open(path, testDefinition(), DefaultOptions())
	require.NoError(t, err)

	require.NoError(t, ti.StartIndexing())
	require.NoError(t, ti.AddEntity(NewEntity("http://example.org/x").Add("text", "pending")))
	require.NoError(t, ti.Close())

	// Reopen: the aborted session left nothing behind.
	ti, err = Open(path, testDefinition(), DefaultOptions())
	require.NoError(t, err)
	defer func() { _ = ti.Close() }()

	rec, err := ti.Get(context.Background(), "http://example.org/x")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestTextIndex_DefinitionAccessor(t *testing.T) {
	ti := newTestIndex(t)
	assert.Equal(t, "uri", ti.Definition().EntityField())
	assert.False(t, ti.IsIndexing())
}
