package storage

import (
	"errors"
	"time"
)

var (
	// ErrPersistFailed wraps any failure while writing a session.
	ErrPersistFailed = errors.New("persist failed")
	// ErrMalformedRecord marks a session whose rows cannot be decoded.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrNotFound is returned when no rows exist for a session key.
	ErrNotFound = errors.New("session not found")
)

// Article is one search hit inside a Session. Its position in the session's
// article list is its rank.
type Article struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Snippet       string `json:"snippet"`
	PublishedDate string `json:"published_date,omitempty"`
}

// Session is one completed search: the keyword, the ranked articles, and the
// AI summary produced for them.
type Session struct {
	Key             string
	CreatedAt       time.Time
	Keyword         string
	Articles        []Article
	AISummary       string
	RelatedKeywords []string
}

// NewSession builds a Session created at now, deriving its key from the
// keyword. CreatedAt is truncated to whole seconds, the storage precision.
func NewSession(keyword string, now time.Time, articles []Article, summary string, related []string) *Session {
	now = now.Truncate(time.Second)
	return &Session{
		Key:             GenerateKey(keyword, now),
		CreatedAt:       now,
		Keyword:         keyword,
		Articles:        append([]Article(nil), articles...),
		AISummary:       summary,
		RelatedKeywords: append([]string(nil), related...),
	}
}

// Equal reports whether two sessions hold the same data. Nil and empty
// slices compare equal.
func (s Session) Equal(o Session) bool {
	if s.Key != o.Key || s.Keyword != o.Keyword || s.AISummary != o.AISummary {
		return false
	}
	if !s.CreatedAt.Equal(o.CreatedAt) {
		return false
	}
	if len(s.Articles) != len(o.Articles) || len(s.RelatedKeywords) != len(o.RelatedKeywords) {
		return false
	}
	for i := range s.Articles {
		if s.Articles[i] != o.Articles[i] {
			return false
		}
	}
	for i := range s.RelatedKeywords {
		if s.RelatedKeywords[i] != o.RelatedKeywords[i] {
			return false
		}
	}
	return true
}

// Row is the long-format storage atom: one row per article, or a single
// row with ArticleIndex 0 for a session without articles. Session-level
// fields repeat on every row of a session.
type Row struct {
	SessionKey      string
	CreatedAt       string // "2006-01-02 15:04:05", local time
	Keyword         string
	ArticleIndex    int
	Title           string
	URL             string
	Snippet         string
	AISummary       string
	RelatedKeywords string // joined with RelatedKeywordSep
	PublishedDate   string
}

// Stats holds aggregate statistics about the history table.
type Stats struct {
	TotalSessions int64
	TotalRows     int64
	OldestSession time.Time
	NewestSession time.Time
	TopKeywords   []KeywordCount
}

// KeywordCount pairs a keyword with the number of sessions that used it.
type KeywordCount struct {
	Keyword string
	Count   int64
}
