package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:           "sqlite",
			Path:              "~/.config/searchlog",
			SQLiteFile:        "history.db",
			CSVFile:           "search_history.csv",
			SQLiteJournalMode: "wal",
		},
		History: HistoryConfig{
			ReadMode:            "lenient",
			TrendingWindowHours: 24,
			TrendingLimit:       10,
		},
		Search: SearchConfig{
			DateFilterMode: "7d",
			NumResults:     5,
			IncludeDomains: []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
