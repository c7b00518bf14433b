package storage

import (
	"sort"
	"time"
)

// rowsForKey returns the rows of one session in stored order.
func rowsForKey(rows []Row, key string) []Row {
	var out []Row
	for _, r := range rows {
		if r.SessionKey == key {
			out = append(out, r)
		}
	}
	return out
}

// sessionHead is the first stored row of a session with its parsed time.
type sessionHead struct {
	key     string
	keyword string
	at      time.Time
}

// sessionHeads keeps one entry per session key, first row wins. Sessions
// whose CreatedAt cannot be parsed are dropped.
func sessionHeads(rows []Row) []sessionHead {
	seen := make(map[string]bool)
	var heads []sessionHead
	for _, r := range rows {
		if seen[r.SessionKey] {
			continue
		}
		seen[r.SessionKey] = true
		at, err := parseRowTime(r.CreatedAt)
		if err != nil {
			continue
		}
		heads = append(heads, sessionHead{key: r.SessionKey, keyword: r.Keyword, at: at})
	}
	return heads
}

// newestFirst orders session keys by creation time descending, ties by key
// descending.
func newestFirst(rows []Row) []string {
	heads := sessionHeads(rows)
	sort.SliceStable(heads, func(i, j int) bool {
		if !heads[i].at.Equal(heads[j].at) {
			return heads[i].at.After(heads[j].at)
		}
		return heads[i].key > heads[j].key
	})

	keys := make([]string, len(heads))
	for i, h := range heads {
		keys[i] = h.key
	}
	return keys
}

// topKeywords counts distinct sessions per keyword created at or after
// since. Ties keep the order in which keywords were first seen.
func topKeywords(rows []Row, since time.Time, limit int) []string {
	if limit <= 0 {
		return []string{}
	}

	counts := make(map[string]int)
	var order []string
	for _, h := range sessionHeads(rows) {
		if h.at.Before(since) {
			continue
		}
		if _, ok := counts[h.keyword]; !ok {
			order = append(order, h.keyword)
		}
		counts[h.keyword]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	if order == nil {
		order = []string{}
	}
	return order
}

// statsFromRows computes Stats for both backends. TotalRows counts every
// stored row; session figures skip sessions with an unparseable time.
func statsFromRows(rows []Row) *Stats {
	stats := &Stats{TotalRows: int64(len(rows))}

	counts := make(map[string]int64)
	var order []string
	for _, h := range sessionHeads(rows) {
		stats.TotalSessions++
		if stats.OldestSession.IsZero() || h.at.Before(stats.OldestSession) {
			stats.OldestSession = h.at
		}
		if h.at.After(stats.NewestSession) {
			stats.NewestSession = h.at
		}
		if _, ok := counts[h.keyword]; !ok {
			order = append(order, h.keyword)
		}
		counts[h.keyword]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > 10 {
		order = order[:10]
	}
	for _, k := range order {
		stats.TopKeywords = append(stats.TopKeywords, KeywordCount{Keyword: k, Count: counts[k]})
	}
	return stats
}
