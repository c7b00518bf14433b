package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Record   *RecordCommand
	History  *HistoryCommand
	Show     *ShowCommand
	Export   *ExportCommand
	Trending *TrendingCommand
	Query    *QueryCommand
	Status   *StatusCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "searchlog"
	parser.LongDescription = "Local search history with trending keywords."

	cmds := &commands{
		Record:   &RecordCommand{globals: &globals, version: version},
		History:  &HistoryCommand{globals: &globals, version: version},
		Show:     &ShowCommand{globals: &globals, version: version},
		Export:   &ExportCommand{globals: &globals, version: version},
		Trending: &TrendingCommand{globals: &globals, version: version},
		Query:    &QueryCommand{globals: &globals, version: version},
		Status:   &StatusCommand{globals: &globals, version: version},
	}

	parser.AddCommand("record", "Record a search session", "Record a completed search session read from a JSON document.", cmds.Record)
	parser.AddCommand("history", "List recorded sessions", "List recorded search sessions, newest first.", cmds.History)
	parser.AddCommand("show", "Print one session", "Print the articles, summary and related keywords of one session.", cmds.Show)
	parser.AddCommand("export", "Export history as CSV", "Export the whole history table as CSV.", cmds.Export)
	parser.AddCommand("trending", "Show trending keywords", "Show the most searched keywords in a trailing time window.", cmds.Trending)
	parser.AddCommand("query", "Compose a search query", "Compose the provider query string and recency window from search filters.", cmds.Query)
	parser.AddCommand("status", "Show storage statistics", "Show storage location, session counts and top keywords.", cmds.Status)

	return parser, &globals, cmds
}

// Run is the main entry point for the searchlog CLI using os.Args.
// A .env file in the working directory is loaded first, if present.
func Run(version string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("searchlog %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
