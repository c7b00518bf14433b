package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Execute implements the go-flags Commander interface for TrendingCommand.
func (c *TrendingCommand) Execute(args []string) error {
	b, err := openBackend(c.globals)
	if err != nil {
		return err
	}
	defer b.Close()

	return c.executeWith(b)
}

// executeWith prints trending keywords from the given backend (for testing).
func (c *TrendingCommand) executeWith(b *backend) error {
	hours := c.Hours
	if hours <= 0 {
		hours = b.cfg.History.TrendingWindowHours
	}
	limit := c.Limit
	if limit <= 0 {
		limit = b.cfg.History.TrendingLimit
	}

	keywords, err := b.svc.TrendingKeywords(context.Background(), hours, limit)
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"window_hours": hours,
			"keywords":     keywords,
		})
	}

	if len(keywords) == 0 {
		fmt.Printf("No searches in the last %d hours.\n", hours)
		return nil
	}

	printHeader(fmt.Sprintf("Trending (last %d hours)", hours))
	for i, k := range keywords {
		fmt.Printf("%2d. %s\n", i+1, k)
	}
	return nil
}
