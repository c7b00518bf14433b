package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/searchlog/internal/config"
	"github.com/runnerr0/searchlog/internal/storage"
)

func seed(t *testing.T, b *backend, now *time.Time, keywords ...string) {
	t.Helper()
	for _, k := range keywords {
		_, err := b.svc.Record(context.Background(), k, []storage.Article{
			{Title: k + " 기사", URL: "https://news.example.com/" + k},
		}, k+" 요약", []string{"관련"})
		require.NoError(t, err)
		*now = now.Add(time.Minute)
	}
}

func TestRecord_FromJSON(t *testing.T) {
	b, _ := newTestBackend(t)
	cmd := &RecordCommand{globals: &GlobalFlags{}}

	doc := `{"keyword":" AI트렌드 ","articles":[{"title":"a","url":"https://x/1"},{"title":"b","url":"https://x/2"}],"ai_summary":"요약","related_keywords":["반도체","생성형AI"]}`
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWith(b, strings.NewReader(doc)))
	})
	assert.Contains(t, out, "Recorded AI트렌드-202601181430 (2 articles)")

	sess, err := b.svc.FindByKey(context.Background(), "AI트렌드-202601181430")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, []string{"반도체", "생성형AI"}, sess.RelatedKeywords)
}

func TestRecord_JSONOutput(t *testing.T) {
	b, _ := newTestBackend(t)
	cmd := &RecordCommand{globals: &GlobalFlags{JSON: true}}

	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWith(b, strings.NewReader(`{"keyword":"환율"}`)))
	})

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "환율-202601181430", result["key"])
	assert.Equal(t, float64(0), result["articles"])
}

func TestRecord_RejectsBadInput(t *testing.T) {
	b, _ := newTestBackend(t)
	cmd := &RecordCommand{globals: &GlobalFlags{}}

	assert.Error(t, cmd.executeWith(b, strings.NewReader(`{"keyword":"  "}`)))
	assert.Error(t, cmd.executeWith(b, strings.NewReader(`{"keyword":"AI","extra":1}`)))
	assert.Error(t, cmd.executeWith(b, strings.NewReader(`not json`)))

	keys, err := b.svc.ListSessionKeys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestHistory_NewestFirst(t *testing.T) {
	b, now := newTestBackend(t)
	seed(t, b, now, "K-pop", "환율", "AI")

	out := captureOutput(t, func() {
		require.NoError(t, (&HistoryCommand{globals: &GlobalFlags{}}).executeWith(b))
	})

	aiIdx := strings.Index(out, "AI-202601181432")
	fxIdx := strings.Index(out, "환율-202601181431")
	kpIdx := strings.Index(out, "K-pop-202601181430")
	assert.GreaterOrEqual(t, aiIdx, 0)
	assert.Less(t, aiIdx, fxIdx)
	assert.Less(t, fxIdx, kpIdx)
	assert.Contains(t, out, "2026-01-18 14:30")
}

func TestHistory_LimitAndJSON(t *testing.T) {
	b, now := newTestBackend(t)
	seed(t, b, now, "K-pop", "환율", "AI")

	cmd := &HistoryCommand{Limit: 2, globals: &GlobalFlags{JSON: true}}
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWith(b))
	})

	var entries []historyEntryJSON
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, historyEntryJSON{Key: "AI-202601181432", Keyword: "AI", SearchedAt: "2026-01-18T14:32"}, entries[0])
	assert.Equal(t, "환율", entries[1].Keyword)
}

func TestHistory_Empty(t *testing.T) {
	b, _ := newTestBackend(t)
	out := captureOutput(t, func() {
		require.NoError(t, (&HistoryCommand{globals: &GlobalFlags{}}).executeWith(b))
	})
	assert.Contains(t, out, "No search history yet.")
}

func TestShow_Session(t *testing.T) {
	b, now := newTestBackend(t)
	seed(t, b, now, "환율")

	cmd := &ShowCommand{Key: "환율-202601181430", globals: &GlobalFlags{}}
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWith(b))
	})

	assert.Contains(t, out, "Keyword:   환율")
	assert.Contains(t, out, "Searched:  2026-01-18 14:30:00")
	assert.Contains(t, out, "Related:   관련")
	assert.Contains(t, out, "환율 요약")
	assert.Contains(t, out, "1. 환율 기사")
	assert.Contains(t, out, "https://news.example.com/환율")
}

func TestShow_JSONEmptySession(t *testing.T) {
	b, _ := newTestBackend(t)
	_, err := b.svc.Record(context.Background(), "AI", nil, "결과 없음", nil)
	require.NoError(t, err)

	cmd := &ShowCommand{Key: "AI-202601181430", globals: &GlobalFlags{JSON: true}}
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWith(b))
	})

	var result sessionJSON
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "AI", result.Keyword)
	assert.Equal(t, "결과 없음", result.AISummary)
	assert.Empty(t, result.Articles)
	assert.Contains(t, out, `"articles": []`)
}

func TestShow_NotFound(t *testing.T) {
	b, _ := newTestBackend(t)
	err := (&ShowCommand{Key: "없음-202601010000", globals: &GlobalFlags{}}).executeWith(b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not found")
}

func TestExport_ToFile(t *testing.T) {
	b, now := newTestBackend(t)
	seed(t, b, now, "환율", "AI")

	path := filepath.Join(t.TempDir(), "export.csv")
	out := captureOutput(t, func() {
		require.NoError(t, (&ExportCommand{Out: path, globals: &GlobalFlags{}}).executeWith(b))
	})
	assert.Contains(t, out, "Exported history to")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\ufeffsearch_key,"))

	rows, err := storage.ReadCSV(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestExport_Empty(t *testing.T) {
	b, _ := newTestBackend(t)
	path := filepath.Join(t.TempDir(), "export.csv")

	out := captureOutput(t, func() {
		require.NoError(t, (&ExportCommand{Out: path, globals: &GlobalFlags{}}).executeWith(b))
	})
	assert.Empty(t, out)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestTrending_Output(t *testing.T) {
	b, now := newTestBackend(t)
	seed(t, b, now, "환율", "환율", "AI")

	out := captureOutput(t, func() {
		require.NoError(t, (&TrendingCommand{globals: &GlobalFlags{}}).executeWith(b))
	})
	assert.Contains(t, out, "Trending (last 24 hours)")
	assert.Less(t, strings.Index(out, "1. 환율"), strings.Index(out, "2. AI"))
}

func TestTrending_WindowExcludesOld(t *testing.T) {
	b, now := newTestBackend(t)
	seed(t, b, now, "환율")
	*now = now.Add(25 * time.Hour)

	cmd := &TrendingCommand{Hours: 24, Limit: 5, globals: &GlobalFlags{JSON: true}}
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWith(b))
	})

	var result struct {
		WindowHours int      `json:"window_hours"`
		Keywords    []string `json:"keywords"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 24, result.WindowHours)
	assert.NotNil(t, result.Keywords)
	assert.Empty(t, result.Keywords)
}

func TestQuery_Compose(t *testing.T) {
	cmd := &QueryCommand{
		Terms:   []string{"고양이, 강아지"},
		And:     []string{"젤리"},
		Not:     []string{"사료"},
		globals: &GlobalFlags{},
	}
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWith(config.DefaultConfig(), testNow))
	})
	assert.Contains(t, out, "Query:    (고양이 OR 강아지) AND 젤리 NOT 사료")
	assert.Contains(t, out, "Keyword:  고양이, 강아지")
	assert.Contains(t, out, "Window:   last 7 days")
}

func TestQuery_CustomRangeJSON(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Search.IncludeDomains = []string{"yna.co.kr"}
	cmd := &QueryCommand{
		Terms:   []string{"환율"},
		Range:   "custom",
		Start:   "2026-01-08",
		globals: &GlobalFlags{JSON: true},
	}
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWith(cfg, testNow))
	})

	var result queryJSON
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "환율", result.Query)
	assert.Equal(t, "custom", result.DateMode)
	require.NotNil(t, result.WindowDays)
	assert.Equal(t, 10, *result.WindowDays)
	assert.Equal(t, []string{"yna.co.kr"}, result.IncludeDomains)
}

func TestQuery_CustomWithoutStartHasNoWindow(t *testing.T) {
	cmd := &QueryCommand{Terms: []string{"환율"}, Range: "custom", globals: &GlobalFlags{}}
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWith(config.DefaultConfig(), testNow))
	})
	assert.Contains(t, out, "Window:   none")
}

func TestQuery_Errors(t *testing.T) {
	cfg := config.DefaultConfig()

	err := (&QueryCommand{globals: &GlobalFlags{}}).executeWith(cfg, testNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--term is required")

	err = (&QueryCommand{Terms: []string{"AI"}, Range: "1y", globals: &GlobalFlags{}}).executeWith(cfg, testNow)
	assert.Error(t, err)

	err = (&QueryCommand{Terms: []string{"AI"}, Range: "custom", Start: "18/01/2026", globals: &GlobalFlags{}}).executeWith(cfg, testNow)
	assert.Error(t, err)

	err = (&QueryCommand{Terms: []string{"AI"}, Range: "custom", Start: "2026-01-10", End: "2026-01-01", globals: &GlobalFlags{}}).executeWith(cfg, testNow)
	assert.Error(t, err)
}
