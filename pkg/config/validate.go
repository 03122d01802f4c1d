package config

import (
	"fmt"
	"time"

	"review-scraper/pkg/extract"
	"review-scraper/pkg/utils"
)

// Validate checks Config fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *Config) Validate() (warnings []string, err error) {
	// ListenAddr
	if c.ListenAddr == "" {
		warnings = append(warnings, "listen_addr is empty, defaulting to ':8080'")
		c.ListenAddr = ":8080"
	}

	// DatabasePath
	if c.DatabasePath == "" {
		warnings = append(warnings, "database_path is empty, defaulting to './reviews.db'")
		c.DatabasePath = "./reviews.db"
	}

	// Locales: fall back to the built-in marker sets, but a partially
	// specified custom set is a config error, not something to paper over.
	if len(c.Locales) == 0 {
		c.Locales = extract.DefaultMarkers()
	}
	for i, loc := range c.Locales {
		if loc.ReviewStart == "" {
			return warnings, fmt.Errorf("%w: locales[%d] needs review_start", utils.ErrConfigValidation, i)
		}
	}

	ws, err := c.Browser.validate()
	warnings = append(warnings, ws...)
	if err != nil {
		return warnings, err
	}
	warnings = append(warnings, c.Fetch.validate()...)

	return warnings, nil
}

func (b *BrowserConfig) validate() (warnings []string, err error) {
	if b.ProfileDir == "" {
		warnings = append(warnings, "browser.profile_dir is empty, defaulting to './browser_profile'")
		b.ProfileDir = "./browser_profile"
	}
	if b.Locale == "" {
		b.Locale = "uk-UA"
	}
	if b.ViewportWidth <= 0 {
		b.ViewportWidth = 1366
	}
	if b.ViewportHeight <= 0 {
		b.ViewportHeight = 900
	}
	if b.MaxConcurrentPages < 0 {
		return warnings, fmt.Errorf("%w: browser.max_concurrent_pages cannot be negative", utils.ErrConfigValidation)
	}
	if b.MaxConcurrentPages == 0 {
		b.MaxConcurrentPages = 2
	}
	return warnings, nil
}

func (f *FetchConfig) validate() (warnings []string) {
	if f.NavigationTimeout <= 0 {
		f.NavigationTimeout = 120 * time.Second
	}
	if f.HeadingWaitTimeout <= 0 {
		f.HeadingWaitTimeout = 20 * time.Second
	}
	if f.RatingsWaitTimeout <= 0 {
		f.RatingsWaitTimeout = 30 * time.Second
	}
	if f.ClickTimeout <= 0 {
		f.ClickTimeout = 3 * time.Second
	}
	if f.MaxShowMoreClicks <= 0 {
		warnings = append(warnings, "fetch.max_show_more_clicks should be > 0, defaulting to 120")
		f.MaxShowMoreClicks = 120
	}
	if f.GrowthPollInterval <= 0 {
		f.GrowthPollInterval = 250 * time.Millisecond
	}
	if f.GrowthWaitBudget <= 0 {
		f.GrowthWaitBudget = 15 * time.Second
	}
	if f.MaxReviewPages <= 0 {
		warnings = append(warnings, "fetch.max_review_pages should be > 0, defaulting to 200")
		f.MaxReviewPages = 200
	}
	if f.PageDelay < 0 {
		warnings = append(warnings, "fetch.page_delay cannot be negative, using default")
		f.PageDelay = 0
	}
	if f.PageDelay == 0 {
		f.PageDelay = 600 * time.Millisecond
	}
	return warnings
}
