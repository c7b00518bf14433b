package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/runnerr0/searchlog/internal/storage"
)

type sessionJSON struct {
	Key             string            `json:"key"`
	Keyword         string            `json:"keyword"`
	CreatedAt       string            `json:"created_at"`
	Articles        []storage.Article `json:"articles"`
	AISummary       string            `json:"ai_summary"`
	RelatedKeywords []string          `json:"related_keywords"`
}

// Execute implements the go-flags Commander interface for ShowCommand.
func (c *ShowCommand) Execute(args []string) error {
	if c.Key == "" {
		return fmt.Errorf("--key is required for show command")
	}

	b, err := openBackend(c.globals)
	if err != nil {
		return err
	}
	defer b.Close()

	return c.executeWith(b)
}

// executeWith prints the session from the given backend (for testing).
func (c *ShowCommand) executeWith(b *backend) error {
	sess, err := b.svc.FindByKey(context.Background(), c.Key)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("session not found: %s", c.Key)
	}

	if c.globals != nil && c.globals.JSON {
		out := sessionJSON{
			Key:             sess.Key,
			Keyword:         sess.Keyword,
			CreatedAt:       sess.CreatedAt.Format(storage.RowTimeLayout),
			Articles:        sess.Articles,
			AISummary:       sess.AISummary,
			RelatedKeywords: sess.RelatedKeywords,
		}
		if out.Articles == nil {
			out.Articles = []storage.Article{}
		}
		if out.RelatedKeywords == nil {
			out.RelatedKeywords = []string{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Println(sess.Key)
	fmt.Printf("Keyword:   %s\n", sess.Keyword)
	fmt.Printf("Searched:  %s\n", sess.CreatedAt.Format(storage.RowTimeLayout))
	if len(sess.RelatedKeywords) > 0 {
		fmt.Printf("Related:   %s\n", strings.Join(sess.RelatedKeywords, ", "))
	}
	fmt.Println()
	fmt.Println("--- Summary ---")
	if sess.AISummary == "" {
		fmt.Println("No summary")
	} else {
		fmt.Println(sess.AISummary)
	}
	fmt.Println()
	fmt.Println("--- Articles ---")
	if len(sess.Articles) == 0 {
		fmt.Println("No articles")
	}
	for i, a := range sess.Articles {
		fmt.Printf("%d. %s\n", i+1, a.Title)
		fmt.Printf("   %s\n", a.URL)
		if a.PublishedDate != "" {
			fmt.Printf("   %s\n", a.PublishedDate)
		}
		if a.Snippet != "" {
			fmt.Printf("   %s\n", a.Snippet)
		}
	}
	return nil
}
