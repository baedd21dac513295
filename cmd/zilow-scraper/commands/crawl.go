package commands

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sanskar800/zilow-scraper/internal/browser"
	"github.com/sanskar800/zilow-scraper/internal/config"
	"github.com/sanskar800/zilow-scraper/internal/crawl"
	"github.com/sanskar800/zilow-scraper/internal/logger"
	"github.com/sanskar800/zilow-scraper/internal/output"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl agent search results and profile pages",
	Long: `Crawl walks the agent search results sequentially, deduplicating
profile URLs across pages, then fetches each discovered profile with bounded
concurrency. Output order matches discovery order.

Detail fields that cannot be located are emitted as null rather than
dropped, so every discovered agent produces exactly one record.

Examples:
  # Default directory, first 50 agents
  zilow-scraper crawl

  # Slower pacing on a touchy network
  zilow-scraper crawl --page-delay-min 5s --page-delay-max 10s -c 2

  # Settings from a profile file, overridden per-run
  zilow-scraper crawl --profile boston.yaml --limit 25`,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	flags := crawlCmd.Flags()
	defaults := config.Default()

	// Crawl scope
	flags.StringP("url", "u", defaults.BaseURL, "agent search results URL to start from")
	flags.IntP("limit", "l", defaults.Limit, "max agents to collect")
	flags.IntP("concurrency", "c", defaults.Concurrency, "concurrent profile fetches")
	flags.Bool("repeat-stop", defaults.RepeatStop, "stop when a page yields no new agents (use --repeat-stop=false to disable)")

	// Pacing
	flags.Duration("page-delay-min", defaults.PageDelayMin, "min delay between results pages")
	flags.Duration("page-delay-max", defaults.PageDelayMax, "max delay between results pages")
	flags.Duration("batch-delay-min", defaults.BatchDelayMin, "min delay between profile batches")
	flags.Duration("batch-delay-max", defaults.BatchDelayMax, "max delay between profile batches")

	// Waits
	flags.Duration("nav-timeout", defaults.NavTimeout, "per-navigation timeout")
	flags.Duration("anchor-wait", defaults.AnchorWait, "wait for page data to attach before assuming a challenge")
	flags.Duration("challenge-wait", defaults.ChallengeWait, "how long to wait for a human to clear a challenge")

	// Browser
	flags.String("user-agent", "", "override browser user-agent")
	flags.Bool("headless", defaults.Headless, "run the browser headless (use --headless=false to watch and clear challenges)")
	flags.Bool("stealth", defaults.Stealth, "enable anti-bot detection evasion")
	flags.String("fetch-mode", defaults.FetchMode, "fetch mode: browser, static")
	flags.StringArray("cookie", nil, "name=value cookie preset into each session (repeatable)")

	// Output
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", defaults.Format, "output format: json, jsonl, yaml")

	// Profile
	flags.String("profile", "", "YAML profile file with crawl settings")
}

// buildConfig layers defaults, the optional profile file, then explicit
// flags.
func buildConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	if profilePath, _ := cmd.Flags().GetString("profile"); profilePath != "" {
		if err := config.LoadProfile(profilePath, &cfg); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.BaseURL, _ = flags.GetString("url")
	}
	if flags.Changed("limit") {
		cfg.Limit, _ = flags.GetInt("limit")
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("repeat-stop") {
		cfg.RepeatStop, _ = flags.GetBool("repeat-stop")
	}
	if flags.Changed("page-delay-min") {
		cfg.PageDelayMin, _ = flags.GetDuration("page-delay-min")
	}
	if flags.Changed("page-delay-max") {
		cfg.PageDelayMax, _ = flags.GetDuration("page-delay-max")
	}
	if flags.Changed("batch-delay-min") {
		cfg.BatchDelayMin, _ = flags.GetDuration("batch-delay-min")
	}
	if flags.Changed("batch-delay-max") {
		cfg.BatchDelayMax, _ = flags.GetDuration("batch-delay-max")
	}
	if flags.Changed("nav-timeout") {
		cfg.NavTimeout, _ = flags.GetDuration("nav-timeout")
	}
	if flags.Changed("anchor-wait") {
		cfg.AnchorWait, _ = flags.GetDuration("anchor-wait")
	}
	if flags.Changed("challenge-wait") {
		cfg.ChallengeWait, _ = flags.GetDuration("challenge-wait")
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent, _ = flags.GetString("user-agent")
	}
	if flags.Changed("headless") {
		cfg.Headless, _ = flags.GetBool("headless")
	}
	if flags.Changed("stealth") {
		cfg.Stealth, _ = flags.GetBool("stealth")
	}
	if flags.Changed("fetch-mode") {
		cfg.FetchMode, _ = flags.GetString("fetch-mode")
	}
	if flags.Changed("cookie") {
		cfg.Cookies, _ = flags.GetStringArray("cookie")
	}
	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}

	return cfg, cfg.Validate()
}

func runCrawl(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := buildConfig(cmd)
	if err != nil {
		logger.Error("configuration rejected", "error", err)
		return err
	}
	logger.Debug("configuration resolved",
		"url", cfg.BaseURL,
		"limit", cfg.Limit,
		"concurrency", cfg.Concurrency,
		"fetch_mode", cfg.FetchMode)

	browserCfg := browser.DefaultConfig()
	browserCfg.Headless = cfg.Headless
	browserCfg.Stealth = cfg.Stealth
	browserCfg.Timeout = cfg.NavTimeout
	if cfg.UserAgent != "" {
		browserCfg.UserAgent = cfg.UserAgent
	}
	browserCfg.Cookies = presetCookies(cfg)

	var loader crawl.Loader
	switch cfg.FetchMode {
	case "browser":
		chrome, err := browser.NewChrome(browserCfg)
		if err != nil {
			logger.Error("failed to start browser", "error", err)
			return err
		}
		defer func() { _ = chrome.Close() }()
		loader = crawl.NewBrowserLoader(chrome, cfg.AnchorWait, cfg.ChallengeWait)
	case "static":
		loader = &crawl.StaticLoader{Fetcher: browser.NewStatic(browserCfg)}
	default:
		return fmt.Errorf("unknown fetch mode: %s (use 'browser' or 'static')", cfg.FetchMode)
	}

	policy := crawl.NewPolicy(cfg.PageDelayMin, cfg.PageDelayMax, cfg.BatchDelayMin, cfg.BatchDelayMax)
	scraper := crawl.NewScraper(loader, policy, crawl.Options{
		BaseURL:     cfg.BaseURL,
		Limit:       cfg.Limit,
		Concurrency: cfg.Concurrency,
		RepeatStop:  cfg.RepeatStop,
	})

	logger.Info("starting crawl",
		"url", cfg.BaseURL,
		"limit", cfg.Limit,
		"concurrency", cfg.Concurrency)

	start := time.Now()
	records := scraper.Run(ctx)
	elapsed := time.Since(start)

	// Setup output
	outFile := os.Stdout
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output) //#nosec G304 -- CLI tool writes to user-specified output file
		if err != nil {
			logger.Error("failed to create output file", "path", cfg.Output, "error", err)
			return err
		}
		defer func() { _ = f.Close() }()
		outFile = f
	}

	writer, err := output.NewWriter(outFile, output.Format(cfg.Format))
	if err != nil {
		logger.Error("failed to create output writer", "format", cfg.Format, "error", err)
		return err
	}
	if err := writer.WriteAll(records); err != nil {
		logger.Error("failed to write output", "error", err)
		return err
	}
	if err := writer.Flush(); err != nil {
		logger.Error("failed to flush output", "error", err)
		return err
	}

	logger.Info(output.Summary(records, elapsed))
	return nil
}

// presetCookies converts configured name=value cookies into browser cookies
// scoped to the crawl's host.
func presetCookies(cfg config.Config) []browser.Cookie {
	if len(cfg.Cookies) == 0 {
		return nil
	}

	domain := ""
	if u, err := url.Parse(cfg.BaseURL); err == nil {
		domain = u.Hostname()
	}

	cookies := make([]browser.Cookie, 0, len(cfg.Cookies))
	for _, raw := range cfg.Cookies {
		name, value, ok := strings.Cut(raw, "=")
		if !ok {
			continue
		}
		cookies = append(cookies, browser.Cookie{
			Name:   strings.TrimSpace(name),
			Value:  value,
			Domain: domain,
		})
	}
	return cookies
}
