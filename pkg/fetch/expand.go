package fetch

import (
	"time"

	"github.com/sirupsen/logrus"

	"review-scraper/pkg/config"
)

// Expander repeatedly clicks the "show more" control until the review
// list stops growing, the control disappears, or the click cap is hit.
// The cap exists because the control can survive DOM churn and keep
// matching after the last batch loaded.
type Expander struct {
	cfg config.FetchConfig
	log *logrus.Entry
}

func NewExpander(cfg config.FetchConfig, log *logrus.Entry) *Expander {
	return &Expander{cfg: cfg, log: log}
}

// Expand runs the click loop on an already-loaded page and returns the
// number of successful clicks. Growth is measured by the count of rating
// widgets, one per review block.
func (e *Expander) Expand(page Page, labels []string) int {
	clicks := 0
	for clicks < e.cfg.MaxShowMoreClicks {
		ctl, ok := page.FindVisibleByText(labels)
		if !ok {
			break
		}

		before := page.Count(ratingSelector)

		if err := ctl.ScrollIntoView(); err == nil {
			page.Sleep(200 * time.Millisecond)
		}
		if err := ctl.Click(e.cfg.ClickTimeout); err != nil {
			if serr := ctl.ScriptClick(); serr != nil {
				e.log.WithError(serr).Debug("Show-more click failed both ways, stopping expansion")
				break
			}
		}
		clicks++

		if !e.waitForGrowth(page, before) {
			e.log.WithFields(logrus.Fields{"clicks": clicks, "reviews": before}).
				Debug("Review count stopped growing, stopping expansion")
			break
		}
	}
	return clicks
}

// waitForGrowth polls the rating-widget count until it exceeds before or
// the wait budget runs out.
func (e *Expander) waitForGrowth(page Page, before int) bool {
	deadline := time.Now().Add(e.cfg.GrowthWaitBudget)
	for time.Now().Before(deadline) {
		page.Sleep(e.cfg.GrowthPollInterval)
		if page.Count(ratingSelector) > before {
			return true
		}
	}
	return false
}
