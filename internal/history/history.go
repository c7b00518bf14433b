// Package history is the caller-facing API over a storage.Store. It owns
// the read error policy: in lenient mode a failed read is logged and
// answered with an empty result. Writes always report failure.
package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/runnerr0/searchlog/internal/storage"
)

// ReadMode selects how read failures are surfaced.
type ReadMode string

const (
	Lenient ReadMode = "lenient"
	Strict  ReadMode = "strict"
)

// ParseReadMode validates a read mode name.
func ParseReadMode(s string) (ReadMode, error) {
	switch m := ReadMode(strings.ToLower(strings.TrimSpace(s))); m {
	case Lenient, Strict:
		return m, nil
	case "":
		return Lenient, nil
	default:
		return "", fmt.Errorf("unknown read mode %q (use lenient or strict)", s)
	}
}

// Entry is a history list item decoded from its session key.
type Entry struct {
	Key     string
	Keyword string
	At      time.Time // minute precision
}

// Service records sessions and answers history queries.
type Service struct {
	store storage.Store
	mode  ReadMode
	log   *slog.Logger
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithReadMode sets the read error policy. The default is Lenient.
func WithReadMode(m ReadMode) Option {
	return func(s *Service) { s.mode = m }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock overrides the clock used to stamp new sessions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New returns a Service over store.
func New(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		mode:  Lenient,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record builds a session stamped with the current time and appends it.
func (s *Service) Record(ctx context.Context, keyword string, articles []storage.Article, summary string, related []string) (*storage.Session, error) {
	sess := storage.NewSession(keyword, s.now(), articles, summary, related)
	if err := s.Append(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Append persists a session. Errors always wrap storage.ErrPersistFailed.
func (s *Service) Append(ctx context.Context, sess *storage.Session) error {
	if err := s.store.Append(ctx, sess); err != nil {
		s.log.Error("append session failed", "key", sess.Key, "error", err)
		if !errors.Is(err, storage.ErrPersistFailed) {
			err = fmt.Errorf("%w: %v", storage.ErrPersistFailed, err)
		}
		return err
	}
	s.log.Info("session recorded", "key", sess.Key, "articles", len(sess.Articles))
	return nil
}

// FindByKey returns the session for key, or nil when there is none. A
// session whose rows cannot be decoded is reported as absent unless the
// service is strict.
func (s *Service) FindByKey(ctx context.Context, key string) (*storage.Session, error) {
	sess, err := s.store.FindByKey(ctx, key)
	switch {
	case err == nil:
		return sess, nil
	case errors.Is(err, storage.ErrNotFound):
		return nil, nil
	default:
		return nil, s.degrade("find_by_key", err)
	}
}

// ListSessionKeys returns all session keys, newest first.
func (s *Service) ListSessionKeys(ctx context.Context) ([]string, error) {
	keys, err := s.store.ListSessionKeys(ctx)
	if err != nil {
		return []string{}, s.degrade("list_session_keys", err)
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// Entries returns the history list with each key split into keyword and
// minute. Keys that do not decode are shown with the key as keyword.
func (s *Service) Entries(ctx context.Context) ([]Entry, error) {
	keys, err := s.ListSessionKeys(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		kw, at, err := storage.SplitKey(k)
		if err != nil {
			kw = k
		}
		entries = append(entries, Entry{Key: k, Keyword: kw, At: at})
	}
	return entries, nil
}

// ExportAll returns the whole table as CSV, "" when empty.
func (s *Service) ExportAll(ctx context.Context) (string, error) {
	out, err := s.store.ExportAll(ctx)
	if err != nil {
		return "", s.degrade("export_all", err)
	}
	return out, nil
}

// TrendingKeywords returns up to limit keywords searched in the last
// windowHours hours, most sessions first.
func (s *Service) TrendingKeywords(ctx context.Context, windowHours, limit int) ([]string, error) {
	window := time.Duration(windowHours) * time.Hour
	keywords, err := s.store.TrendingKeywords(ctx, window, limit)
	if err != nil {
		return []string{}, s.degrade("trending_keywords", err)
	}
	if keywords == nil {
		keywords = []string{}
	}
	return keywords, nil
}

// Stats returns table statistics. An unreadable table yields zero stats
// in lenient mode.
func (s *Service) Stats(ctx context.Context) (*storage.Stats, error) {
	stats, err := s.store.GetStats(ctx)
	if err != nil {
		return &storage.Stats{}, s.degrade("stats", err)
	}
	return stats, nil
}

func (s *Service) degrade(op string, err error) error {
	if s.mode == Strict {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Warn("history read degraded to empty result", "op", op, "error", err)
	return nil
}
