package main

import (
	"os"

	"github.com/runnerr0/searchlog/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Run(version); err != nil {
		os.Exit(1)
	}
}
