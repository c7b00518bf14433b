package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/runnerr0/searchlog/internal/config"
	"github.com/runnerr0/searchlog/internal/history"
	"github.com/runnerr0/searchlog/internal/storage"
)

// backend is an opened history store and the service over it.
type backend struct {
	cfg      *config.Config
	store    storage.Store
	svc      *history.Service
	location string // database or CSV file path
	closeFn  func() error
}

func (b *backend) Close() error {
	if b.closeFn == nil {
		return nil
	}
	return b.closeFn()
}

// loadConfig resolves configuration.
// Priority: --config flag > default config file (created if missing) > defaults.
// SEARCHLOG_* environment variables override whichever file was read.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if globals != nil && globals.Config != "" {
		cfg, err = config.Load(globals.Config)
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = config.LoadOrCreate()
		if err != nil {
			cfg = config.DefaultConfig()
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the stderr logger; --verbose forces debug level.
func newLogger(cfg *config.Config, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// openBackend opens the configured store and wraps it in a history service.
func openBackend(globals *GlobalFlags) (*backend, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}
	verbose := globals != nil && globals.Verbose
	log := newLogger(cfg, verbose)

	dir, err := cfg.StorageDir()
	if err != nil {
		return nil, err
	}

	b := &backend{cfg: cfg}
	switch cfg.Storage.Backend {
	case "csv":
		b.location = filepath.Join(dir, cfg.Storage.CSVFile)
		store, err := storage.NewCSVStore(b.location)
		if err != nil {
			return nil, err
		}
		b.store = store
		b.closeFn = store.Close
	default:
		b.location = filepath.Join(dir, cfg.Storage.SQLiteFile)
		store, db, err := storage.OpenSQLite(b.location, cfg.Storage.SQLiteJournalMode)
		if err != nil {
			return nil, err
		}
		b.store = store
		b.closeFn = func() error {
			store.Close()
			return db.Close()
		}
	}

	mode, err := history.ParseReadMode(cfg.History.ReadMode)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.svc = history.New(b.store, history.WithReadMode(mode), history.WithLogger(log))

	log.Debug("history store opened",
		"backend", cfg.Storage.Backend,
		"location", b.location,
		"read_mode", mode,
	)
	return b, nil
}

// newTable returns a borderless left-aligned table writing to w.
func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
}

func printSuccess(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(os.Stdout, format+"\n", args...)
}

func printWarning(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(os.Stderr, format+"\n", args...)
}

func printHeader(title string) {
	color.New(color.Bold).Fprintln(os.Stdout, title)
	fmt.Println(strings.Repeat("=", len(title)))
}

// parseDate parses a YYYY-MM-DD flag value as local midnight.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return &t, nil
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if i > 0 {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
