package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type historyEntryJSON struct {
	Key        string `json:"key"`
	Keyword    string `json:"keyword"`
	SearchedAt string `json:"searched_at,omitempty"`
}

// Execute implements the go-flags Commander interface for HistoryCommand.
func (c *HistoryCommand) Execute(args []string) error {
	b, err := openBackend(c.globals)
	if err != nil {
		return err
	}
	defer b.Close()

	return c.executeWith(b)
}

// executeWith lists sessions from the given backend (for testing).
func (c *HistoryCommand) executeWith(b *backend) error {
	entries, err := b.svc.Entries(context.Background())
	if err != nil {
		return err
	}
	if c.Limit > 0 && len(entries) > c.Limit {
		entries = entries[:c.Limit]
	}

	if c.globals != nil && c.globals.JSON {
		out := make([]historyEntryJSON, len(entries))
		for i, e := range entries {
			out[i] = historyEntryJSON{Key: e.Key, Keyword: e.Keyword}
			if !e.At.IsZero() {
				out[i].SearchedAt = e.At.Format("2006-01-02T15:04")
			}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(entries) == 0 {
		fmt.Println("No search history yet.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		at := ""
		if !e.At.IsZero() {
			at = e.At.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), e.Keyword, at, e.Key})
	}

	table := newTable(os.Stdout)
	table.Header([]string{"#", "Keyword", "Searched", "Key"})
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("render history: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render history: %w", err)
	}
	return nil
}
