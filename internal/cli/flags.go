package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// RecordCommand appends a completed search session.
type RecordCommand struct {
	File string `long:"file" short:"f" description:"Session JSON document (default: stdin)"`

	globals *GlobalFlags
	version string
}

// HistoryCommand lists recorded sessions, newest first.
type HistoryCommand struct {
	Limit int `long:"limit" description:"Maximum sessions to list (0 = all)" default:"0"`

	globals *GlobalFlags
	version string
}

// ShowCommand prints one recorded session.
type ShowCommand struct {
	Key string `long:"key" description:"Session key, e.g. AI-202601181430 (required)"`

	globals *GlobalFlags
	version string
}

// ExportCommand dumps the history table as CSV.
type ExportCommand struct {
	Out string `long:"out" short:"o" description:"Write to file instead of stdout"`

	globals *GlobalFlags
	version string
}

// TrendingCommand prints the most searched keywords in a trailing window.
type TrendingCommand struct {
	Hours int `long:"hours" description:"Window size in hours (default from config)"`
	Limit int `long:"limit" description:"Maximum keywords (default from config)"`

	globals *GlobalFlags
	version string
}

// QueryCommand composes a provider query from search filters.
type QueryCommand struct {
	Terms  []string `long:"term" description:"Main term(s), comma-separated or repeated; OR-ed"`
	And    []string `long:"and" description:"Required term(s)"`
	Not    []string `long:"not" description:"Excluded term(s)"`
	Range  string   `long:"range" description:"Date range: 24h | 7d | 30d | custom (default from config)"`
	Start  string   `long:"start" description:"Custom range start, YYYY-MM-DD"`
	End    string   `long:"end" description:"Custom range end, YYYY-MM-DD"`
	Domain []string `long:"domain" description:"Restrict to domain (repeatable)"`

	globals *GlobalFlags
	version string
}

// StatusCommand prints the storage location and history statistics.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}
