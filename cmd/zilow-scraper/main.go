// Package main is the entry point for the zilow-scraper CLI.
package main

import (
	"os"

	"github.com/sanskar800/zilow-scraper/cmd/zilow-scraper/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
