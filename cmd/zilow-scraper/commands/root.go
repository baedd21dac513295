// Package commands implements the CLI commands for zilow-scraper.
package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "zilow-scraper",
	Short: "Scrape real-estate agent listings and profile stats from Zillow",
	Long: `zilow-scraper walks Zillow's agent search results page by page,
collects each agent's profile link, then visits the profiles with bounded
concurrency to pull sales stats, pricing, badges and team size.

Anti-bot challenges are detected and the crawl pauses for a human to clear
them in the visible browser window before continuing.

Examples:
  # Scrape the default agent directory, 50 agents, JSON to stdout
  zilow-scraper crawl

  # A specific region, more agents, JSONL to a file
  zilow-scraper crawl -u "https://www.zillow.com/professionals/real-estate-agent-reviews/new-york-ny/" \
      --limit 200 --format jsonl -o agents.jsonl

  # Re-extract from a saved page without a browser
  zilow-scraper crawl -u "file:///tmp/agents.html" --fetch-mode static`,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.zilow-scraper.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".zilow-scraper")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("ZILLOW")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
