package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/runnerr0/searchlog/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version       string             `json:"version"`
	Backend       string             `json:"backend"`
	Location      string             `json:"location"`
	SizeBytes     int64              `json:"size_bytes"`
	TotalSessions int64              `json:"total_sessions"`
	TotalRows     int64              `json:"total_rows"`
	OldestSession string             `json:"oldest_session,omitempty"`
	NewestSession string             `json:"newest_session,omitempty"`
	ReadMode      string             `json:"read_mode"`
	TopKeywords   []keywordCountJSON `json:"top_keywords"`
}

type keywordCountJSON struct {
	Keyword string `json:"keyword"`
	Count   int64  `json:"count"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	b, err := openBackend(c.globals)
	if err != nil {
		return err
	}
	defer b.Close()

	return c.executeWith(b)
}

// executeWith runs status against a provided backend (for testing).
func (c *StatusCommand) executeWith(b *backend) error {
	stats, err := b.svc.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	size := fileSize(b.location)

	if c.globals != nil && c.globals.JSON {
		return c.printStatusJSON(b, stats, size)
	}
	return c.printStatusHuman(b, stats, size)
}

func (c *StatusCommand) printStatusHuman(b *backend, stats *storage.Stats, size int64) error {
	printHeader("searchlog Status")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Backend:       %s\n", b.cfg.Storage.Backend)
	fmt.Printf("Location:      %s (%s)\n", b.location, formatBytes(size))
	fmt.Printf("Sessions:      %s\n", formatNumber(stats.TotalSessions))
	fmt.Printf("Rows:          %s\n", formatNumber(stats.TotalRows))

	if stats.TotalSessions > 0 {
		fmt.Printf("Oldest:        %s\n", stats.OldestSession.Format("2006-01-02 15:04"))
		fmt.Printf("Newest:        %s\n", stats.NewestSession.Format("2006-01-02 15:04"))
	}

	fmt.Printf("Read mode:     %s\n", b.cfg.History.ReadMode)

	if len(stats.TopKeywords) > 0 {
		fmt.Println()
		fmt.Println("Top Keywords:")
		for _, k := range stats.TopKeywords {
			fmt.Printf("  %-20s %s\n", k.Keyword, formatNumber(k.Count))
		}
	}

	return nil
}

func (c *StatusCommand) printStatusJSON(b *backend, stats *storage.Stats, size int64) error {
	out := statusJSON{
		Version:       c.version,
		Backend:       b.cfg.Storage.Backend,
		Location:      b.location,
		SizeBytes:     size,
		TotalSessions: stats.TotalSessions,
		TotalRows:     stats.TotalRows,
		ReadMode:      b.cfg.History.ReadMode,
		TopKeywords:   make([]keywordCountJSON, len(stats.TopKeywords)),
	}

	if stats.TotalSessions > 0 {
		out.OldestSession = stats.OldestSession.Format(time.RFC3339)
		out.NewestSession = stats.NewestSession.Format(time.RFC3339)
	}

	for i, k := range stats.TopKeywords {
		out.TopKeywords[i] = keywordCountJSON{Keyword: k.Keyword, Count: k.Count}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// fileSize returns the size of the history file, 0 when it does not exist yet.
func fileSize(path string) int64 {
	if info, err := os.Stat(path); err == nil {
		return info.Size()
	}
	return 0
}
