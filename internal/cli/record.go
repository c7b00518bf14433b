package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/runnerr0/searchlog/internal/storage"
)

// recordInput is the JSON document accepted by the record command.
type recordInput struct {
	Keyword         string            `json:"keyword"`
	Articles        []storage.Article `json:"articles"`
	AISummary       string            `json:"ai_summary"`
	RelatedKeywords []string          `json:"related_keywords"`
}

// Execute implements the go-flags Commander interface for RecordCommand.
func (c *RecordCommand) Execute(args []string) error {
	var in io.Reader = os.Stdin
	if c.File != "" {
		f, err := os.Open(c.File)
		if err != nil {
			return fmt.Errorf("open session file: %w", err)
		}
		defer f.Close()
		in = f
	}

	b, err := openBackend(c.globals)
	if err != nil {
		return err
	}
	defer b.Close()

	return c.executeWith(b, in)
}

// executeWith records the session read from in (for testing).
func (c *RecordCommand) executeWith(b *backend, in io.Reader) error {
	var doc recordInput
	dec := json.NewDecoder(in)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parse session JSON: %w", err)
	}

	keyword := strings.TrimSpace(norm.NFC.String(doc.Keyword))
	if keyword == "" {
		return fmt.Errorf("session JSON needs a non-empty \"keyword\"")
	}

	sess, err := b.svc.Record(context.Background(), keyword, doc.Articles, doc.AISummary, doc.RelatedKeywords)
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"key":      sess.Key,
			"articles": len(sess.Articles),
		})
	}

	printSuccess("Recorded %s (%d articles)", sess.Key, len(sess.Articles))
	return nil
}
