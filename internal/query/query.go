// Package query turns structured search filters into the query string and
// recency window passed to the upstream search provider.
package query

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// DateMode selects the recency window of a search.
type DateMode string

const (
	Last24h DateMode = "24h"
	Last7d  DateMode = "7d"
	Last30d DateMode = "30d"
	Custom  DateMode = "custom"
)

// ParseDateMode accepts "24h", "7d", "30d", "custom" and the long forms
// "last24h", "last7d", "last30d".
func ParseDateMode(s string) (DateMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "24h", "last24h":
		return Last24h, nil
	case "7d", "last7d":
		return Last7d, nil
	case "30d", "last30d":
		return Last30d, nil
	case "custom":
		return Custom, nil
	default:
		return "", fmt.Errorf("unknown date filter mode %q (use 24h, 7d, 30d or custom)", s)
	}
}

// Filters holds the advanced search form input.
type Filters struct {
	MainTerms      []string // OR-ed together
	AndTerms       []string // all required
	NotTerms       []string // all excluded
	DateMode       DateMode
	CustomStart    *time.Time
	CustomEnd      *time.Time
	IncludeDomains []string
}

// ParseTerms splits comma-separated input into trimmed, NFC-normalized
// terms, dropping empty ones.
func ParseTerms(raw string) []string {
	var terms []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(norm.NFC.String(t)); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// BuildQuery composes the provider query: "(a OR b) AND c NOT d". A single
// main term is used bare; with no main terms only the AND/NOT clauses remain.
func BuildQuery(f Filters) string {
	var parts []string

	switch len(f.MainTerms) {
	case 0:
	case 1:
		parts = append(parts, f.MainTerms[0])
	default:
		parts = append(parts, "("+strings.Join(f.MainTerms, " OR ")+")")
	}

	for _, t := range f.AndTerms {
		parts = append(parts, "AND "+t)
	}
	for _, t := range f.NotTerms {
		parts = append(parts, "NOT "+t)
	}

	return strings.Join(parts, " ")
}

// DisplayKeyword is the keyword recorded for a search: the main terms
// joined with ", ".
func DisplayKeyword(f Filters) string {
	return strings.Join(f.MainTerms, ", ")
}

// ResolveWindowDays maps a date mode to the provider's "last N days"
// parameter. ok is false when no window applies: an unknown mode, or a
// custom range without a start date. end is not used; the provider only
// takes a lookback in days.
func ResolveWindowDays(mode DateMode, start, end *time.Time, today time.Time) (days int, ok bool) {
	switch mode {
	case Last24h:
		return 1, true
	case Last7d:
		return 7, true
	case Last30d:
		return 30, true
	case Custom:
		if start == nil {
			return 0, false
		}
		days = daysBetween(*start, today)
		if days < 1 {
			days = 1
		}
		return days, true
	default:
		return 0, false
	}
}

// daysBetween counts calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}
