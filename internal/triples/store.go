// Package triples persists subject/predicate/object statements in SQLite
// and regroups them into entities for the text index. It is the structured
// store the index sits beside: the system of record for datatypes and
// language tags, and the source for rebuilding the index after a failed
// commit.
package triples

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/tripletext/tripletext/internal/errs"
	"github.com/tripletext/tripletext/internal/textindex"
)

// Triple is one stored statement. Datatype and Lang qualify literal
// objects and are empty for IRI objects.
type Triple struct {
	Subject   string
	Predicate string
	Object    string
	Datatype  string
	Lang      string
}

// Store persists statements in a single SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the store at path. An empty path opens an
// in-memory database for testing.
func Open(path string) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	} else if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errs.StoreIO("create store directory", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.StoreIO(fmt.Sprintf("open triple store at %s", dsn), err)
	}
	if dsn == ":memory:" {
		// The pool would otherwise hand out fresh empty databases.
		db.SetMaxOpenConns(1)
	}

	// WAL mode must be set via PRAGMA for modernc.org/sqlite.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, errs.StoreIO(fmt.Sprintf("apply %s", pragma), err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS triples (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		subject   TEXT NOT NULL,
		predicate TEXT NOT NULL,
		object    TEXT NOT NULL,
		datatype  TEXT NOT NULL DEFAULT '',
		lang      TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_triples_subject ON triples(subject);
	CREATE INDEX IF NOT EXISTS idx_triples_predicate ON triples(predicate);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errs.StoreIO("create triples schema", err)
	}

	return &Store{db: db, path: path}, nil
}

// Add stores one statement.
func (s *Store) Add(ctx context.Context, t Triple) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO triples (subject, predicate, object, datatype, lang) VALUES (?, ?, ?, ?, ?)`,
		t.Subject, t.Predicate, t.Object, t.Datatype, t.Lang)
	if err != nil {
		return errs.StoreIO(fmt.Sprintf("insert statement for %s", t.Subject), err)
	}
	return nil
}

// AddBatch stores statements in one transaction.
func (s *Store) AddBatch(ctx context.Context, ts []Triple) error {
	if len(ts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.StoreIO("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO triples (subject, predicate, object, datatype, lang) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errs.StoreIO("prepare insert", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, t := range ts {
		if _, err := stmt.ExecContext(ctx, t.Subject, t.Predicate, t.Object, t.Datatype, t.Lang); err != nil {
			return errs.StoreIO(fmt.Sprintf("insert statement for %s", t.Subject), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errs.StoreIO("commit transaction", err)
	}
	return nil
}

// Count returns the number of stored statements.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM triples`).Scan(&n); err != nil {
		return 0, errs.StoreIO("count statements", err)
	}
	return n, nil
}

// Subjects returns the distinct subjects in lexical order.
func (s *Store) Subjects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT subject FROM triples ORDER BY subject`)
	if err != nil {
		return nil, errs.StoreIO("list subjects", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var subj string
		if err := rows.Scan(&subj); err != nil {
			return nil, errs.StoreIO("scan subject", err)
		}
		out = append(out, subj)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.StoreIO("iterate subjects", err)
	}
	return out, nil
}

// Entities regroups stored statements into entities under the given
// schema: one entity per subject, each statement's predicate mapped back
// to its declared field. Statements whose predicate the schema does not
// map are skipped. Insertion order within a subject is preserved.
func (s *Store) Entities(ctx context.Context, def *textindex.EntityDefinition) ([]*textindex.Entity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT subject, predicate, object FROM triples ORDER BY subject, id`)
	if err != nil {
		return nil, errs.StoreIO("read statements", err)
	}
	defer func() { _ = rows.Close() }()

	var (
		out     []*textindex.Entity
		current *textindex.Entity
	)
	for rows.Next() {
		var subj, pred, obj string
		if err := rows.Scan(&subj, &pred, &obj); err != nil {
			return nil, errs.StoreIO("scan statement", err)
		}
		field, ok := def.FieldFor(textindex.PropertyID(pred))
		if !ok {
			continue
		}
		if current == nil || current.ID() != subj {
			current = textindex.NewEntity(subj)
			out = append(out, current)
		}
		current.Add(field, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.StoreIO("iterate statements", err)
	}
	return out, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errs.StoreIO("close triple store", err)
	}
	return nil
}
