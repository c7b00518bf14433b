// Package search wires the external search provider and summarizer to the
// history service: one Run is one recorded session.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/runnerr0/searchlog/internal/config"
	"github.com/runnerr0/searchlog/internal/history"
	"github.com/runnerr0/searchlog/internal/query"
	"github.com/runnerr0/searchlog/internal/storage"
)

// FallbackKeyword is searched on the home feed when nothing is trending.
const FallbackKeyword = "최신 뉴스"

// Request is what a Provider receives for one search.
type Request struct {
	Query          string
	WindowDays     int // 0 when no recency window applies
	IncludeDomains []string
	MaxResults     int
}

// Provider runs a news search. Implementations classify failures with
// ProviderError.
type Provider interface {
	Search(ctx context.Context, req Request) ([]storage.Article, error)
}

// Summarizer condenses a result set into a summary and related keywords.
type Summarizer interface {
	Summarize(ctx context.Context, articles []storage.Article) (summary string, related []string, err error)
}

// ErrorKind classifies a provider failure.
type ErrorKind string

const (
	AuthInvalid  ErrorKind = "auth_invalid"
	RateLimited  ErrorKind = "rate_limited"
	ServerError  ErrorKind = "server_error"
	NetworkError ErrorKind = "network_error"
)

var messages = map[ErrorKind]string{
	AuthInvalid:  "API 키를 확인해주세요",
	RateLimited:  "잠시 후 다시 시도해주세요",
	ServerError:  "검색 서버 오류, 잠시 후 재시도해주세요",
	NetworkError: "네트워크 연결 또는 타임아웃이 발생했습니다",
}

// Message is the user-facing text for the kind.
func (k ErrorKind) Message() string {
	if m, ok := messages[k]; ok {
		return m
	}
	return "알 수 없는 에러가 발생했습니다"
}

// ProviderError is a classified collaborator failure.
type ProviderError struct {
	Kind ErrorKind
	Err  error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// KindOf returns the kind of a ProviderError anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

// Pipeline runs search, summarize and record.
type Pipeline struct {
	provider   Provider
	summarizer Summarizer
	history    *history.Service
	log        *slog.Logger
	now        func() time.Time
	maxResults int
}

// NewPipeline returns a Pipeline. maxResults <= 0 falls back to the
// configured default.
func NewPipeline(p Provider, s Summarizer, h *history.Service, log *slog.Logger, maxResults int) *Pipeline {
	if maxResults <= 0 {
		maxResults = config.DefaultConfig().Search.NumResults
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		provider:   p,
		summarizer: s,
		history:    h,
		log:        log,
		now:        time.Now,
		maxResults: maxResults,
	}
}

// NewPipelineFromConfig returns a Pipeline sized by the search section of
// the configuration.
func NewPipelineFromConfig(cfg config.SearchConfig, p Provider, s Summarizer, h *history.Service, log *slog.Logger) *Pipeline {
	return NewPipeline(p, s, h, log, cfg.NumResults)
}

// Run performs one search and records it. Provider and summarizer errors
// are returned unchanged and nothing is recorded; there is no retry.
func (p *Pipeline) Run(ctx context.Context, f query.Filters) (*storage.Session, error) {
	keyword := query.DisplayKeyword(f)
	if keyword == "" {
		return nil, fmt.Errorf("search needs at least one main term")
	}

	req := Request{
		Query:          query.BuildQuery(f),
		IncludeDomains: f.IncludeDomains,
		MaxResults:     p.maxResults,
	}
	if days, ok := query.ResolveWindowDays(f.DateMode, f.CustomStart, f.CustomEnd, p.now()); ok {
		req.WindowDays = days
	}

	p.log.Debug("searching", "query", req.Query, "window_days", req.WindowDays)
	articles, err := p.provider.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	summary, related, err := p.summarizer.Summarize(ctx, articles)
	if err != nil {
		return nil, err
	}

	return p.history.Record(ctx, keyword, articles, summary, related)
}

// HomeFilters returns the home feed search: the top keyword of the last
// 24 hours, or FallbackKeyword when nothing is trending.
func (p *Pipeline) HomeFilters(ctx context.Context) query.Filters {
	term := FallbackKeyword
	if top, err := p.history.TrendingKeywords(ctx, 24, 1); err == nil && len(top) > 0 {
		term = top[0]
	}
	return query.Filters{
		MainTerms: []string{term},
		DateMode:  query.Last24h,
	}
}
