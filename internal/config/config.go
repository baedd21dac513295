// Package config holds the runtime configuration surface for the scraper.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// Config is the full configuration surface consumed by the crawl. Values
// come from defaults, an optional YAML profile file, then CLI flags, in
// that order.
type Config struct {
	// Crawl scope
	BaseURL     string `mapstructure:"base_url" yaml:"base_url" validate:"required,url"`
	Limit       int    `mapstructure:"limit" yaml:"limit" validate:"gt=0"`
	Concurrency int    `mapstructure:"concurrency" yaml:"concurrency" validate:"gt=0,lte=32"`

	// Pacing
	PageDelayMin  time.Duration `mapstructure:"page_delay_min" yaml:"page_delay_min" validate:"gte=0"`
	PageDelayMax  time.Duration `mapstructure:"page_delay_max" yaml:"page_delay_max" validate:"gte=0"`
	BatchDelayMin time.Duration `mapstructure:"batch_delay_min" yaml:"batch_delay_min" validate:"gte=0"`
	BatchDelayMax time.Duration `mapstructure:"batch_delay_max" yaml:"batch_delay_max" validate:"gte=0"`

	// Waits
	NavTimeout    time.Duration `mapstructure:"nav_timeout" yaml:"nav_timeout" validate:"gt=0"`
	AnchorWait    time.Duration `mapstructure:"anchor_wait" yaml:"anchor_wait" validate:"gt=0"`
	ChallengeWait time.Duration `mapstructure:"challenge_wait" yaml:"challenge_wait" validate:"gt=0"`

	// Browser
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
	Headless  bool   `mapstructure:"headless" yaml:"headless"`
	Stealth   bool   `mapstructure:"stealth" yaml:"stealth"`
	FetchMode string `mapstructure:"fetch_mode" yaml:"fetch_mode" validate:"oneof=browser static"`

	// Cookies preset into every browser session, "name=value" form. A
	// clearance cookie obtained by hand can be reused across runs.
	Cookies []string `mapstructure:"cookies" yaml:"cookies"`

	// RepeatStop stops pagination when a page repeats only known items.
	// Exposed because the repeat-echo behavior of the target is observed,
	// not contractual.
	RepeatStop bool `mapstructure:"repeat_stop" yaml:"repeat_stop"`

	// Output
	Output string `mapstructure:"output" yaml:"output"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json jsonl yaml"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		BaseURL:       "https://www.zillow.com/professionals/real-estate-agent-reviews/",
		Limit:         50,
		Concurrency:   5,
		PageDelayMin:  3 * time.Second,
		PageDelayMax:  6 * time.Second,
		BatchDelayMin: 1 * time.Second,
		BatchDelayMax: 2 * time.Second,
		NavTimeout:    30 * time.Second,
		AnchorWait:    15 * time.Second,
		ChallengeWait: 3 * time.Minute,
		Headless:      true,
		Stealth:       true,
		FetchMode:     "browser",
		RepeatStop:    true,
		Format:        "json",
	}
}

// LoadProfile overlays a YAML profile file onto c. Keys absent from the
// file leave the existing values untouched. Durations accept human forms
// like "5s" or "2m".
func LoadProfile(path string, c *Config) error {
	data, err := os.ReadFile(path) //#nosec G304 -- CLI tool reads a user-specified profile
	if err != nil {
		return fmt.Errorf("read profile: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse profile %s: %w", path, err)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     c,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("parse profile %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.PageDelayMax < c.PageDelayMin {
		return fmt.Errorf("invalid configuration: page_delay_max below page_delay_min")
	}
	if c.BatchDelayMax < c.BatchDelayMin {
		return fmt.Errorf("invalid configuration: batch_delay_max below batch_delay_min")
	}
	for _, cookie := range c.Cookies {
		if !strings.Contains(cookie, "=") {
			return fmt.Errorf("invalid configuration: cookie %q is not name=value", cookie)
		}
	}
	return nil
}
