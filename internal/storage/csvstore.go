package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// errCorruptTable marks a table file that exists but cannot be parsed.
var errCorruptTable = errors.New("corrupt history table")

const loadKey = "table"

// CSVStore implements Store on a single CSV file in long format. Appends
// rewrite the whole file through a temp file and rename, so readers only
// ever see a complete table. Appends are serialized by mu; the store must
// be the only writer of its file.
type CSVStore struct {
	path string
	now  func() time.Time

	mu    sync.Mutex
	loads singleflight.Group
}

// NewCSVStore returns a store for the CSV file at path. The file is
// created by the first Append.
func NewCSVStore(path string, opts ...Option) (*CSVStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	o := buildOptions(opts)
	return &CSVStore{path: path, now: o.now}, nil
}

// Path returns the table file location.
func (s *CSVStore) Path() string { return s.path }

// Append adds a session's rows to the table. A table that cannot be parsed
// is replaced by a fresh one holding only this session.
func (s *CSVStore) Append(ctx context.Context, sess *Session) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	if err := checkKey(sess); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.loads.Forget(loadKey)

	existing, err := s.readFile()
	if err != nil {
		if !errors.Is(err, errCorruptTable) {
			return fmt.Errorf("%w: %v", ErrPersistFailed, err)
		}
		existing = nil
	}

	rows := append(existing, ToRows(sess)...)
	if err := s.writeFile(rows); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return nil
}

// ListSessionKeys returns every session key, newest first.
func (s *CSVStore) ListSessionKeys(ctx context.Context) ([]string, error) {
	rows, err := s.load()
	if err != nil {
		return nil, err
	}
	return newestFirst(rows), nil
}

// FindByKey rebuilds one session. It returns ErrNotFound when the key has
// no rows and ErrMalformedRecord when the rows cannot be decoded.
func (s *CSVStore) FindByKey(ctx context.Context, key string) (*Session, error) {
	rows, err := s.load()
	if err != nil {
		return nil, err
	}
	matched := rowsForKey(rows, key)
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return FromRows(matched)
}

// ExportAll renders the whole table as CSV, or "" when it is empty or absent.
func (s *CSVStore) ExportAll(ctx context.Context) (string, error) {
	rows, err := s.load()
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
func (s *CSVStore) TrendingKeywords(ctx context.Context, window time.Duration, limit int) ([]string, error) {
	rows, err := s.load()
	if err != nil {
		return nil, err
	}
	return topKeywords(rows, s.now().Add(-window), limit), nil
}

// GetStats returns aggregate statistics about the table.
func (s *CSVStore) GetStats(ctx context.Context) (*Stats, error) {
	rows, err := s.load()
	if err != nil {
		return nil, err
	}
	return statsFromRows(rows), nil
}

// Close is a no-op; the file is opened per operation.
func (s *CSVStore) Close() error { return nil }

// load reads the table, sharing one read among concurrent callers. The
// returned slice is shared and must not be modified.
func (s *CSVStore) load() ([]Row, error) {
	v, err, _ := s.loads.Do(loadKey, func() (interface{}, error) {
		return s.readFile()
	})
	if err != nil {
		return nil, err
	}
	return v.([]Row), nil
}

func (s *CSVStore) readFile() ([]Row, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errCorruptTable, s.path, err)
	}
	return rows, nil
}

// writeFile replaces the table atomically: write a sibling temp file, sync
// it, then rename it over the old table.
func (s *CSVStore) writeFile(rows []Row) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.WriteString(utf8BOM); err != nil {
		tmp.Close()
		return fmt.Errorf("write table: %w", err)
	}
	if err := WriteCSV(tmp, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write table: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close table: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("chmod table: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace table: %w", err)
	}
	return nil
}
