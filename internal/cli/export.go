package cli

import (
	"context"
	"fmt"
	"os"
)

// Execute implements the go-flags Commander interface for ExportCommand.
func (c *ExportCommand) Execute(args []string) error {
	b, err := openBackend(c.globals)
	if err != nil {
		return err
	}
	defer b.Close()

	return c.executeWith(b)
}

// executeWith exports the table of the given backend (for testing).
func (c *ExportCommand) executeWith(b *backend) error {
	out, err := b.svc.ExportAll(context.Background())
	if err != nil {
		return err
	}
	if out == "" {
		printWarning("No history to export.")
		return nil
	}

	if c.Out == "" {
		fmt.Print(out)
		return nil
	}

	// Spreadsheet tools need the BOM to detect UTF-8.
	if err := os.WriteFile(c.Out, []byte("\ufeff"+out), 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	printSuccess("Exported history to %s", c.Out)
	return nil
}
