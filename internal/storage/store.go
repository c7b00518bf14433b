package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Store defines the search history operations.
type Store interface {
	Append(ctx context.Context, s *Session) error
	ListSessionKeys(ctx context.Context) ([]string, error)
	FindByKey(ctx context.Context, key string) (*Session, error)
	ExportAll(ctx context.Context) (string, error)
	TrendingKeywords(ctx context.Context, window time.Duration, limit int) ([]string, error)
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// Option configures a Store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the clock used for trending windows.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

const rowColumns = `search_key, search_time, keyword, article_index, title, url,
		snippet, ai_summary, related_keywords, published_date`

// SQLiteStore implements Store backed by a SQLite database. Each session
// is inserted in its own transaction, so appends never rewrite prior rows.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time

	// appends are serialized in-process; SQLite serializes across processes.
	mu sync.Mutex

	insertRow *sql.Stmt
	keyRows   *sql.Stmt
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB, opts ...Option) (*SQLiteStore, error) {
	o := buildOptions(opts)
	s := &SQLiteStore{db: db, now: o.now}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertRow, err = s.db.Prepare(`
		INSERT INTO history_rows (` + rowColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.keyRows, err = s.db.Prepare(`
		SELECT ` + rowColumns + `
		FROM history_rows WHERE search_key = ? ORDER BY id
	`)
	if err != nil {
		return err
	}

	return nil
}

// Append stores every row of a session atomically.
func (s *SQLiteStore) Append(ctx context.Context, sess *Session) error {
	if err := checkKey(sess); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", ErrPersistFailed, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt := tx.StmtContext(ctx, s.insertRow)
	for _, r := range ToRows(sess) {
		_, err := stmt.ExecContext(ctx,
			r.SessionKey, r.CreatedAt, r.Keyword, r.ArticleIndex, r.Title, r.URL,
			r.Snippet, r.AISummary, r.RelatedKeywords, r.PublishedDate,
		)
		if err != nil {
			return fmt.Errorf("%w: insert row %s#%d: %v", ErrPersistFailed, r.SessionKey, r.ArticleIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrPersistFailed, err)
	}
	return nil
}

// ListSessionKeys returns every session key, newest first.
func (s *SQLiteStore) ListSessionKeys(ctx context.Context) ([]string, error) {
	rows, err := s.allRows(ctx)
	if err != nil {
		return nil, err
	}
	return newestFirst(rows), nil
}

// FindByKey rebuilds one session. It returns ErrNotFound when the key has
// no rows and ErrMalformedRecord when the rows cannot be decoded.
func (s *SQLiteStore) FindByKey(ctx context.Context, key string) (*Session, error) {
	rows, err := s.scanRows(ctx, s.keyRows, key)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return FromRows(rows)
}

// ExportAll renders the whole table as CSV, or "" when it is empty.
func (s *SQLiteStore) ExportAll(ctx context.Context) (string, error) {
	rows, err := s.allRows(ctx)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}

	var b strings.Builder
	if err := WriteCSV(&b, rows); err != nil {
		return "", fmt.Errorf("encode csv: %w", err)
	}
	return b.String(), nil
}

// TrendingKeywords returns up to limit keywords searched within window,
// most sessions first.
func (s *SQLiteStore) TrendingKeywords(ctx context.Context, window time.Duration, limit int) ([]string, error) {
	rows, err := s.allRows(ctx)
	if err != nil {
		return nil, err
	}
	return topKeywords(rows, s.now().Add(-window), limit), nil
}

// GetStats returns aggregate statistics about the history table. Sessions
// whose creation time cannot be parsed are left out of the session counts,
// as they are everywhere else.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	rows, err := s.allRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return statsFromRows(rows), nil
}

func (s *SQLiteStore) allRows(ctx context.Context) ([]Row, error) {
	return s.queryRows(ctx, "SELECT "+rowColumns+" FROM history_rows ORDER BY id")
}

func (s *SQLiteStore) queryRows(ctx context.Context, query string, args ...interface{}) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	return collectRows(rows)
}

func (s *SQLiteStore) scanRows(ctx context.Context, stmt *sql.Stmt, args ...interface{}) ([]Row, error) {
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	return collectRows(rows)
}

func collectRows(rows *sql.Rows) ([]Row, error) {
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(
			&r.SessionKey, &r.CreatedAt, &r.Keyword, &r.ArticleIndex, &r.Title, &r.URL,
			&r.Snippet, &r.AISummary, &r.RelatedKeywords, &r.PublishedDate,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	for _, stmt := range []*sql.Stmt{s.insertRow, s.keyRows} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
