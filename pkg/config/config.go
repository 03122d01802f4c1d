package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"review-scraper/pkg/extract"
)

// BrowserConfig holds everything about the rendering session: the binary,
// the persistent profile, and the concurrency gate over open pages.
type BrowserConfig struct {
	ProfileDir         string `yaml:"profile_dir,omitempty"` // persistent user-data dir; keeps solved challenges across runs
	ChromeBin          string `yaml:"chrome_bin,omitempty"`  // empty = let the launcher find/download one
	Locale             string `yaml:"locale,omitempty"`
	UserAgent          string `yaml:"user_agent,omitempty"`
	Headless           *bool  `yaml:"headless,omitempty"` // pointer for tri-state: nil=default (headless)
	ViewportWidth      int    `yaml:"viewport_width,omitempty"`
	ViewportHeight     int    `yaml:"viewport_height,omitempty"`
	MaxConcurrentPages int    `yaml:"max_concurrent_pages,omitempty"`
}

// FetchConfig holds the per-fetch timing knobs and hard caps.
type FetchConfig struct {
	NavigationTimeout  time.Duration `yaml:"navigation_timeout,omitempty"`
	HeadingWaitTimeout time.Duration `yaml:"heading_wait_timeout,omitempty"`
	RatingsWaitTimeout time.Duration `yaml:"ratings_wait_timeout,omitempty"`
	ClickTimeout       time.Duration `yaml:"click_timeout,omitempty"`
	MaxShowMoreClicks  int           `yaml:"max_show_more_clicks,omitempty"` // hard cap on in-page expansion
	GrowthPollInterval time.Duration `yaml:"growth_poll_interval,omitempty"`
	GrowthWaitBudget   time.Duration `yaml:"growth_wait_budget,omitempty"` // how long one click may take to add content
	MaxReviewPages     int           `yaml:"max_review_pages,omitempty"`   // hard cap on pagination depth
	PageDelay          time.Duration `yaml:"page_delay,omitempty"`         // pause between review pages
}

// Config is the root application configuration.
type Config struct {
	ListenAddr   string                  `yaml:"listen_addr,omitempty"`
	MetricsAddr  string                  `yaml:"metrics_addr,omitempty"` // empty disables the metrics listener
	DatabasePath string                  `yaml:"database_path,omitempty"`
	Browser      BrowserConfig           `yaml:"browser,omitempty"`
	Fetch        FetchConfig             `yaml:"fetch,omitempty"`
	Locales      []extract.LocaleMarkers `yaml:"locales,omitempty"` // empty = built-in marker sets
}

// Load reads and parses a YAML config file. Call Validate on the result
// before use.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %q: %w", path, err)
	}
	return &cfg, nil
}
