// Package store persists book payloads, pipeline jobs, preserve-terms, and
// speaker memory in SQLite. Book payloads are opaque JSON blobs keyed by
// slug; the store never reaches into the tree.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/bookweave/internal/book"
	"github.com/valpere/bookweave/internal/job"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS books (
		slug TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		primary_lang TEXT NOT NULL,
		revision INTEGER NOT NULL,
		updated TIMESTAMP NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- preserve_terms feeds the translation pass: terms kept untranslated
	CREATE TABLE IF NOT EXISTS preserve_terms (
		slug TEXT NOT NULL,
		term TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (slug, term)
	);

	-- speakers remembers attributed speaker labels per book across passes
	CREATE TABLE IF NOT EXISTS speakers (
		slug TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (slug, name)
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_slug ON jobs(slug);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveBook upserts the book payload. The stored revision only moves
// forward: saving a payload with a lower revision than the stored row is
// rejected so concurrent jobs cannot silently roll a book back.
func (s *Store) SaveBook(ctx context.Context, b *book.Book) error {
	payload, err := b.Marshal()
	if err != nil {
		return fmt.Errorf("failed to serialize book %q: %w", b.Slug, err)
	}

	var current int
	err = s.db.QueryRowContext(ctx, `SELECT revision FROM books WHERE slug = ?`, b.Slug).Scan(&current)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return err
	case b.Revision < current:
		return fmt.Errorf("stale revision %d for book %q (stored %d)", b.Revision, b.Slug, current)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO books (slug, code, primary_lang, revision, updated, payload)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.Slug, b.Code, b.PrimaryLang, b.Revision, b.Updated, string(payload))
	return err
}

// LoadBook restores a book by slug.
func (s *Store) LoadBook(ctx context.Context, slug string) (*book.Book, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM books WHERE slug = ?`, slug).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("book not found: %s", slug)
	}
	if err != nil {
		return nil, err
	}
	return book.Unmarshal([]byte(payload))
}

// BookInfo is a row of the book listing.
type BookInfo struct {
	Slug        string
	Code        string
	PrimaryLang string
	Revision    int
	Updated     time.Time
}

// ListBooks returns all stored books ordered by most recently updated.
func (s *Store) ListBooks(ctx context.Context) ([]BookInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slug, code, primary_lang, revision, updated FROM books ORDER BY updated DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BookInfo
	for rows.Next() {
		var bi BookInfo
		if err := rows.Scan(&bi.Slug, &bi.Code, &bi.PrimaryLang, &bi.Revision, &bi.Updated); err != nil {
			return nil, err
		}
		out = append(out, bi)
	}
	return out, rows.Err()
}

// DeleteBook removes a book and its terms, speakers, and jobs.
func (s *Store) DeleteBook(ctx context.Context, slug string) error {
	for _, q := range []string{
		`DELETE FROM books WHERE slug = ?`,
		`DELETE FROM preserve_terms WHERE slug = ?`,
		`DELETE FROM speakers WHERE slug = ?`,
		`DELETE FROM jobs WHERE slug = ?`,
	} {
		if _, err := s.db.ExecContext(ctx, q, slug); err != nil {
			return err
		}
	}
	return nil
}

// Job is one pipeline run record.
type Job struct {
	ID        string
	Slug      string
	Status    job.Status
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateJob records a new pending pipeline run and returns its id.
func (s *Store) CreateJob(ctx context.Context, slug string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, slug, status) VALUES (?, ?, ?)`,
		id, slug, string(job.StatusPending))
	return id, err
}

// AdvanceJob moves a job to the next status, enforcing the state machine.
// errMsg is stored when next is the error state.
func (s *Store) AdvanceJob(ctx context.Context, id string, next job.Status, errMsg string) error {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM jobs WHERE id = ?`, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return fmt.Errorf("job not found: %s", id)
	}
	if err != nil {
		return err
	}
	current, err := job.Parse(raw)
	if err != nil {
		return err
	}
	if _, err := current.Transition(next); err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(next), errMsg, time.Now(), id)
	return err
}

// GetJob returns one job record.
func (s *Store) GetJob(ctx context.Context, id string) (*Job, error) {
	var j Job
	var raw string
	var errMsg sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, slug, status, error, created_at, updated_at FROM jobs WHERE id = ?`, id).
		Scan(&j.ID, &j.Slug, &raw, &errMsg, &j.CreatedAt, &j.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	j.Status, err = job.Parse(raw)
	if err != nil {
		return nil, err
	}
	j.Error = errMsg.String
	return &j, nil
}

// ListJobs returns the jobs for a slug, newest first.
func (s *Store) ListJobs(ctx context.Context, slug string) ([]Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, slug, status, error, created_at, updated_at FROM jobs
		 WHERE slug = ? ORDER BY created_at DESC`, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		var j Job
		var raw string
		var errMsg sql.NullString
		if err := rows.Scan(&j.ID, &j.Slug, &raw, &errMsg, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		j.Status, err = job.Parse(raw)
		if err != nil {
			return nil, err
		}
		j.Error = errMsg.String
		out = append(out, j)
	}
	return out, rows.Err()
}

// AddTerm stores one preserve-term for a book.
func (s *Store) AddTerm(ctx context.Context, slug, term string) error {
	term = normalizeTerm(term)
	if term == "" {
		return fmt.Errorf("term is empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO preserve_terms (slug, term) VALUES (?, ?)`, slug, term)
	return err
}

// ListTerms returns the preserve-terms for a book in stable order.
func (s *Store) ListTerms(ctx context.Context, slug string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT term FROM preserve_terms WHERE slug = ? ORDER BY term`, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteTerm removes one preserve-term.
func (s *Store) DeleteTerm(ctx context.Context, slug, term string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM preserve_terms WHERE slug = ? AND term = ?`, slug, normalizeTerm(term))
	return err
}

// RememberSpeakers stores attributed speaker labels for a book.
func (s *Store) RememberSpeakers(ctx context.Context, slug string, names []string) error {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO speakers (slug, name) VALUES (?, ?)`, slug, name); err != nil {
			return err
		}
	}
	return nil
}

// ListSpeakers returns the remembered speaker labels for a book.
func (s *Store) ListSpeakers(ctx context.Context, slug string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM speakers WHERE slug = ? ORDER BY name`, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeTerm trims whitespace and applies Unicode NFC normalization for
// consistent term comparison.
func normalizeTerm(term string) string {
	return norm.NFC.String(strings.TrimSpace(term))
}
