package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
    doc_id       TEXT PRIMARY KEY,
    filename     TEXT NOT NULL,
    title        TEXT NOT NULL DEFAULT '',
    content_hash TEXT NOT NULL DEFAULT '',
    pdb_id       TEXT NOT NULL DEFAULT '',
    seq_length   INTEGER NOT NULL DEFAULT 0,
    n_align      INTEGER NOT NULL DEFAULT 0,
    created_ns   INTEGER NOT NULL,
    body         BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(content_hash, created_ns);

CREATE TABLE IF NOT EXISTS homologs (
    doc_id   TEXT NOT NULL REFERENCES documents(doc_id) ON DELETE CASCADE,
    nr       INTEGER NOT NULL,
    id       TEXT NOT NULL,
    accnum   TEXT NOT NULL,
    strid    TEXT NOT NULL DEFAULT '',
    identity REAL NOT NULL,
    PRIMARY KEY (doc_id, nr)
);
CREATE INDEX IF NOT EXISTS idx_homologs_accnum ON homologs(accnum COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_homologs_id ON homologs(id COLLATE NOCASE);
`

// SQLite stores encoded documents in a single database file and indexes
// their homolog tables for search.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and runs migrations.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Put(ctx context.Context, e *Entry) error {
	if err := validateEntry(e); err != nil {
		return err
	}
	body, err := encodeEntry(e)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sqliteErr("begin", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE doc_id = ?`, e.DocID); err != nil {
		return sqliteErr("delete old document", err)
	}
	sum := e.Summary()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (doc_id, filename, title, content_hash, pdb_id, seq_length, n_align, created_ns, body)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.DocID, sum.Filename, sum.Title, sum.ContentHash, sum.PDBID, sum.SeqLength, sum.NAlign,
		sum.CreatedAt.UnixNano(), body,
	)
	if err != nil {
		return sqliteErr("insert document", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO homologs (doc_id, nr, id, accnum, strid, identity) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return sqliteErr("prepare homologs", err)
	}
	defer stmt.Close()
	for _, h := range e.Doc.Homologs.All() {
		if _, err := stmt.ExecContext(ctx, e.DocID, h.NR, h.ID, h.AccNum, h.STRID, h.Identity); err != nil {
			return sqliteErr("insert homolog", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return sqliteErr("commit", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, docID string) (*Entry, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE doc_id = ?`, docID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, sqliteErr("get document", err)
	}
	return decodeEntry(body)
}

func (s *SQLite) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc_id, filename, title, content_hash, pdb_id, seq_length, n_align, created_ns FROM documents`)
	if err != nil {
		return nil, sqliteErr("list documents", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var created int64
		if err := rows.Scan(&sum.DocID, &sum.Filename, &sum.Title, &sum.ContentHash,
			&sum.PDBID, &sum.SeqLength, &sum.NAlign, &created); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		sum.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, sqliteErr("list documents", err)
	}
	sortSummaries(out)
	return out, nil
}

func (s *SQLite) Delete(ctx context.Context, docID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE doc_id = ?`, docID)
	if err != nil {
		return sqliteErr("delete document", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return sqliteErr("delete document", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) FindByHash(ctx context.Context, hash string) (string, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc_id FROM documents WHERE content_hash = ? ORDER BY created_ns, doc_id LIMIT 1`, hash).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, sqliteErr("find by hash", err)
	}
	return id, true, nil
}

func (s *SQLite) SearchHomologs(ctx context.Context, q HomologQuery) ([]HomologHit, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	var conds []string
	var args []any
	if q.AccNum != "" {
		conds = append(conds, "h.accnum = ? COLLATE NOCASE")
		args = append(args, q.AccNum)
	}
	if q.ID != "" {
		conds = append(conds, "h.id = ? COLLATE NOCASE")
		args = append(args, q.ID)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT h.doc_id, d.pdb_id, h.nr, h.id, h.accnum, h.strid, h.identity
		 FROM homologs h JOIN documents d ON d.doc_id = h.doc_id
		 WHERE `+strings.Join(conds, " AND ")+`
		 ORDER BY h.doc_id, h.nr`, args...)
	if err != nil {
		return nil, sqliteErr("search homologs", err)
	}
	defer rows.Close()

	var hits []HomologHit
	for rows.Next() {
		var h HomologHit
		if err := rows.Scan(&h.DocID, &h.PDBID, &h.NR, &h.ID, &h.AccNum, &h.STRID, &h.Identity); err != nil {
			return nil, fmt.Errorf("scan homolog: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, sqliteErr("search homologs", err)
	}
	return hits, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// sqliteErr marks lock contention as retryable. Everything else is returned
// wrapped as is.
func sqliteErr(op string, err error) error {
	msg := err.Error()
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY") {
		return &RetryableError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
