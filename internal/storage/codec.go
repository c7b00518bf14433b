package storage

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// RowTimeLayout is the CreatedAt text format of a stored row.
	RowTimeLayout = "2006-01-02 15:04:05"
	// RelatedKeywordSep joins related keywords inside one column.
	RelatedKeywordSep = "|"
)

// ToRows flattens a session into long format. A session without articles
// still produces one sentinel row (ArticleIndex 0) so it stays listable.
func ToRows(s *Session) []Row {
	base := Row{
		SessionKey:      s.Key,
		CreatedAt:       s.CreatedAt.In(time.Local).Format(RowTimeLayout),
		Keyword:         s.Keyword,
		AISummary:       s.AISummary,
		RelatedKeywords: strings.Join(s.RelatedKeywords, RelatedKeywordSep),
	}

	if len(s.Articles) == 0 {
		return []Row{base}
	}

	rows := make([]Row, 0, len(s.Articles))
	for i, a := range s.Articles {
		r := base
		r.ArticleIndex = i + 1
		r.Title = a.Title
		r.URL = a.URL
		r.Snippet = a.Snippet
		r.PublishedDate = a.PublishedDate
		rows = append(rows, r)
	}
	return rows
}

// FromRows rebuilds a session from the rows sharing one session key.
// Session-level fields come from the first row; articles are ordered by
// ArticleIndex with the sentinel row skipped.
func FromRows(rows []Row) (*Session, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrMalformedRecord)
	}

	first := rows[0]
	createdAt, err := parseRowTime(first.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: session %q: %v", ErrMalformedRecord, first.SessionKey, err)
	}

	indexed := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.ArticleIndex < 0 {
			return nil, fmt.Errorf("%w: session %q: invalid article index", ErrMalformedRecord, first.SessionKey)
		}
		if r.ArticleIndex > 0 {
			indexed = append(indexed, r)
		}
	}
	sort.SliceStable(indexed, func(i, j int) bool {
		return indexed[i].ArticleIndex < indexed[j].ArticleIndex
	})

	var articles []Article
	for _, r := range indexed {
		articles = append(articles, Article{
			Title:         r.Title,
			URL:           r.URL,
			Snippet:       r.Snippet,
			PublishedDate: r.PublishedDate,
		})
	}

	return &Session{
		Key:             first.SessionKey,
		CreatedAt:       createdAt,
		Keyword:         first.Keyword,
		Articles:        articles,
		AISummary:       first.AISummary,
		RelatedKeywords: splitRelated(first.RelatedKeywords),
	}, nil
}

func parseRowTime(s string) (time.Time, error) {
	return time.ParseInLocation(RowTimeLayout, strings.TrimSpace(s), time.Local)
}

func splitRelated(raw string) []string {
	var out []string
	for _, k := range strings.Split(raw, RelatedKeywordSep) {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
