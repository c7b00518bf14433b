package search

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/runnerr0/searchlog/internal/config"
	"github.com/runnerr0/searchlog/internal/history"
	"github.com/runnerr0/searchlog/internal/query"
	"github.com/runnerr0/searchlog/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 1, 18, 14, 30, 0, 0, time.Local)

type fakeProvider struct {
	articles []storage.Article
	err      error
	calls    []Request
}

func (f *fakeProvider) Search(_ context.Context, req Request) ([]storage.Article, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

type fakeSummarizer struct {
	summary string
	related []string
	err     error
}

func (f *fakeSummarizer) Summarize(context.Context, []storage.Article) (string, []string, error) {
	return f.summary, f.related, f.err
}

func setupPipeline(t *testing.T, p Provider, s Summarizer) (*Pipeline, *history.Service) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.NewMigrationRunner(db).Run())

	clock := func() time.Time { return testNow }
	store, err := storage.NewSQLiteStore(db, storage.WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := history.New(store, history.WithClock(clock), history.WithReadMode(history.Strict))
	pl := NewPipeline(p, s, svc, nil, 0)
	pl.now = clock
	return pl, svc
}

func TestRun_RecordsSession(t *testing.T) {
	provider := &fakeProvider{articles: []storage.Article{
		{Title: "고양이 젤리", URL: "https://news.example.com/1"},
	}}
	summarizer := &fakeSummarizer{summary: "요약", related: []string{"반려동물"}}
	pl, svc := setupPipeline(t, provider, summarizer)
	ctx := context.Background()

	sess, err := pl.Run(ctx, query.Filters{
		MainTerms:      []string{"고양이", "강아지"},
		AndTerms:       []string{"젤리"},
		NotTerms:       []string{"사료"},
		DateMode:       query.Last7d,
		IncludeDomains: []string{"news.example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "고양이, 강아지-202601181430", sess.Key)

	require.Len(t, provider.calls, 1)
	assert.Equal(t, Request{
		Query:          "(고양이 OR 강아지) AND 젤리 NOT 사료",
		WindowDays:     7,
		IncludeDomains: []string{"news.example.com"},
		MaxResults:     5,
	}, provider.calls[0])

	got, err := svc.FindByKey(ctx, sess.Key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "요약", got.AISummary)
	assert.Equal(t, []string{"반려동물"}, got.RelatedKeywords)
}

func TestRun_ProviderErrorPassesThrough(t *testing.T) {
	for _, kind := range []ErrorKind{AuthInvalid, RateLimited, ServerError, NetworkError} {
		t.Run(string(kind), func(t *testing.T) {
			perr := &ProviderError{Kind: kind, Err: errors.New("upstream")}
			provider := &fakeProvider{err: perr}
			pl, svc := setupPipeline(t, provider, &fakeSummarizer{})
			ctx := context.Background()

			_, err := pl.Run(ctx, query.Filters{MainTerms: []string{"AI"}})
			assert.Same(t, perr, err)
			assert.Len(t, provider.calls, 1)

			got, ok := KindOf(err)
			assert.True(t, ok)
			assert.Equal(t, kind, got)

			keys, err := svc.ListSessionKeys(ctx)
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}
}

func TestRun_SummarizerErrorRecordsNothing(t *testing.T) {
	serr := &ProviderError{Kind: RateLimited}
	pl, svc := setupPipeline(t, &fakeProvider{}, &fakeSummarizer{err: serr})
	ctx := context.Background()

	_, err := pl.Run(ctx, query.Filters{MainTerms: []string{"AI"}})
	assert.ErrorIs(t, err, serr)

	keys, err := svc.ListSessionKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRun_RequiresMainTerm(t *testing.T) {
	provider := &fakeProvider{}
	pl, _ := setupPipeline(t, provider, &fakeSummarizer{})

	_, err := pl.Run(context.Background(), query.Filters{AndTerms: []string{"AI"}})
	assert.Error(t, err)
	assert.Empty(t, provider.calls)
}

func TestRun_NoWindowForCustomWithoutStart(t *testing.T) {
	provider := &fakeProvider{}
	pl, _ := setupPipeline(t, provider, &fakeSummarizer{})

	_, err := pl.Run(context.Background(), query.Filters{MainTerms: []string{"AI"}, DateMode: query.Custom})
	require.NoError(t, err)
	assert.Equal(t, 0, provider.calls[0].WindowDays)
}

func TestHomeFilters(t *testing.T) {
	pl, svc := setupPipeline(t, &fakeProvider{}, &fakeSummarizer{})
	ctx := context.Background()

	f := pl.HomeFilters(ctx)
	assert.Equal(t, []string{FallbackKeyword}, f.MainTerms)
	assert.Equal(t, query.Last24h, f.DateMode)

	_, err := svc.Record(ctx, "환율", nil, "", nil)
	require.NoError(t, err)
	f = pl.HomeFilters(ctx)
	assert.Equal(t, []string{"환율"}, f.MainTerms)
}

func TestErrorKindMessage(t *testing.T) {
	assert.Equal(t, "API 키를 확인해주세요", AuthInvalid.Message())
	assert.NotEmpty(t, NetworkError.Message())
	assert.Equal(t, "알 수 없는 에러가 발생했습니다", ErrorKind("teapot").Message())

	err := &ProviderError{Kind: ServerError, Err: errors.New("502")}
	assert.Equal(t, "server_error: 502", err.Error())
}

func TestNewPipelineFromConfig_MaxResults(t *testing.T) {
	tests := []struct {
		name       string
		numResults int
		want       int
	}{
		{"configured", 8, 8},
		{"default", config.DefaultConfig().Search.NumResults, 5},
		{"non-positive falls back", 0, 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			provider := &fakeProvider{}
			_, svc := setupPipeline(t, &fakeProvider{}, &fakeSummarizer{})

			cfg := config.DefaultConfig().Search
			cfg.NumResults = tc.numResults
			pl := NewPipelineFromConfig(cfg, provider, &fakeSummarizer{}, svc, nil)

			_, err := pl.Run(context.Background(), query.Filters{MainTerms: []string{"AI"}, DateMode: query.Last24h})
			require.NoError(t, err)
			require.Len(t, provider.calls, 1)
			assert.Equal(t, tc.want, provider.calls[0].MaxResults)
		})
	}
}
