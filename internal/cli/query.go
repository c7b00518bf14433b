package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/runnerr0/searchlog/internal/config"
	"github.com/runnerr0/searchlog/internal/query"
)

type queryJSON struct {
	Query          string   `json:"query"`
	Keyword        string   `json:"keyword"`
	DateMode       string   `json:"date_mode"`
	WindowDays     *int     `json:"window_days"`
	IncludeDomains []string `json:"include_domains"`
}

// Execute implements the go-flags Commander interface for QueryCommand.
func (c *QueryCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	return c.executeWith(cfg, time.Now())
}

// filters builds search filters from the flags, falling back to cfg.
func (c *QueryCommand) filters(cfg *config.Config) (query.Filters, error) {
	f := query.Filters{
		MainTerms: splitTerms(c.Terms),
		AndTerms:  splitTerms(c.And),
		NotTerms:  splitTerms(c.Not),
	}
	if len(f.MainTerms) == 0 {
		return f, fmt.Errorf("--term is required for query command")
	}

	rng := c.Range
	if rng == "" {
		rng = cfg.Search.DateFilterMode
	}
	mode, err := query.ParseDateMode(rng)
	if err != nil {
		return f, err
	}
	f.DateMode = mode

	if f.CustomStart, err = parseDate(c.Start); err != nil {
		return f, err
	}
	if f.CustomEnd, err = parseDate(c.End); err != nil {
		return f, err
	}
	if f.CustomStart != nil && f.CustomEnd != nil && f.CustomEnd.Before(*f.CustomStart) {
		return f, fmt.Errorf("--end %s is before --start %s", c.End, c.Start)
	}

	f.IncludeDomains = cfg.Search.IncludeDomains
	if len(c.Domain) > 0 {
		f.IncludeDomains = splitTerms(c.Domain)
	}
	return f, nil
}

// executeWith prints the composed query for the given config and day (for testing).
func (c *QueryCommand) executeWith(cfg *config.Config, today time.Time) error {
	f, err := c.filters(cfg)
	if err != nil {
		return err
	}

	q := query.BuildQuery(f)
	days, ok := query.ResolveWindowDays(f.DateMode, f.CustomStart, f.CustomEnd, today)

	if c.globals != nil && c.globals.JSON {
		out := queryJSON{
			Query:          q,
			Keyword:        query.DisplayKeyword(f),
			DateMode:       string(f.DateMode),
			IncludeDomains: f.IncludeDomains,
		}
		if ok {
			out.WindowDays = &days
		}
		if out.IncludeDomains == nil {
			out.IncludeDomains = []string{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Query:    %s\n", q)
	fmt.Printf("Keyword:  %s\n", query.DisplayKeyword(f))
	if ok {
		fmt.Printf("Window:   last %d days\n", days)
	} else {
		fmt.Println("Window:   none")
	}
	if len(f.IncludeDomains) > 0 {
		fmt.Printf("Domains:  %s\n", strings.Join(f.IncludeDomains, ", "))
	}
	return nil
}

// splitTerms flattens repeated comma-separated flag values.
func splitTerms(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, query.ParseTerms(v)...)
	}
	return out
}
