package cli

import (
	"bytes"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/searchlog/internal/config"
	"github.com/runnerr0/searchlog/internal/history"
	"github.com/runnerr0/searchlog/internal/storage"
)

var testNow = time.Date(2026, 1, 18, 14, 30, 0, 0, time.Local)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// newTestBackend returns an in-memory SQLite backend whose clock reads *now.
func newTestBackend(t *testing.T) (*backend, *time.Time) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.NewMigrationRunner(db).Run())

	now := testNow
	clock := func() time.Time { return now }
	store, err := storage.NewSQLiteStore(db, storage.WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &backend{
		cfg:      config.DefaultConfig(),
		store:    store,
		svc:      history.New(store, history.WithClock(clock)),
		location: ":memory:",
	}, &now
}

// writeTestConfig writes a config that keeps storage under a temp dir.
func writeTestConfig(t *testing.T, backend string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "storage:\n  backend: " + backend + "\n  path: " + filepath.Join(dir, "data") + "\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
