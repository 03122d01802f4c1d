package fetch

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"review-scraper/pkg/config"
	"review-scraper/pkg/detect"
	"review-scraper/pkg/extract"
	"review-scraper/pkg/metrics"
	"review-scraper/pkg/models"
	"review-scraper/pkg/utils"
)

// Walker traverses the review pagination chain on one page handle,
// capturing a payload per page. A visited set guards against pagination
// cycles (the last page's "next" often points at itself) and a hard page
// cap bounds the walk on broken chains.
type Walker struct {
	cfg      config.FetchConfig
	expander *Expander
	locales  []extract.LocaleMarkers
	metrics  *metrics.Metrics
	log      *logrus.Entry
}

func NewWalker(cfg config.FetchConfig, expander *Expander, locales []extract.LocaleMarkers, m *metrics.Metrics, log *logrus.Entry) *Walker {
	return &Walker{cfg: cfg, expander: expander, locales: locales, metrics: m, log: log}
}

// Walk navigates to startURL and follows "next" links until the chain
// ends, repeats a URL, or maxPages is reached. Each page is expanded
// in place before capture. A challenge page anywhere in the walk discards
// every payload collected so far: partial data from a session the site
// has started blocking is not trustworthy.
func (w *Walker) Walk(page Page, startURL string, maxPages int) ([]models.FetchPayload, error) {
	if err := page.Navigate(startURL, w.cfg.NavigationTimeout); err != nil {
		return nil, fmt.Errorf("navigating to %s: %w", startURL, err)
	}

	var payloads []models.FetchPayload
	visited := make(map[string]struct{})

	for len(payloads) < maxPages {
		current := page.URL()
		if _, seen := visited[current]; seen {
			w.log.WithField("url", current).Debug("Pagination cycle detected, stopping walk")
			break
		}
		visited[current] = struct{}{}

		// Best effort: pages with zero reviews never show the widget.
		if err := page.WaitVisible(ratingSelector, w.cfg.RatingsWaitTimeout); err != nil {
			w.log.WithField("url", current).Debug("No rating widgets appeared within budget")
		}

		clicks := w.expander.Expand(page, extract.LoadMoreLabels(w.locales))
		w.metrics.AddShowMoreClicks(clicks)

		markup, err := page.HTML()
		if err != nil {
			return nil, fmt.Errorf("capturing HTML of %s: %w", current, err)
		}
		if detect.IsChallenge(markup) {
			return nil, fmt.Errorf("%w: challenge on review page %d (%s)", utils.ErrBlocked, len(payloads)+1, current)
		}

		payloads = append(payloads, models.FetchPayload{
			HTML:    markup,
			Ratings: extract.DecodeRatings(page.Styles(ratingSelector)),
			URL:     current,
			Title:   page.Title(),
		})
		w.metrics.IncPagesWalked()

		if !w.nextPage(page) {
			break
		}
		page.Sleep(w.cfg.PageDelay)
	}

	if len(payloads) == maxPages {
		w.log.WithField("pages", maxPages).Warn("Review walk hit the page cap, chain may be truncated")
	}
	return payloads, nil
}

// nextPage advances to the following review page, preferring the
// machine-readable rel=next link over localized link text. Returns false
// when no next control exists or clicking it went nowhere.
func (w *Walker) nextPage(page Page) bool {
	before := page.URL()

	ctl, ok := page.Find(nextRelSelector)
	if !ok {
		ctl, ok = page.FindVisibleByText(extract.NextPageLabels(w.locales))
	}
	if !ok {
		return false
	}

	if err := ctl.Click(w.cfg.ClickTimeout); err != nil {
		if serr := ctl.ScriptClick(); serr != nil {
			w.log.WithError(serr).Debug("Next-page click failed both ways")
			return false
		}
	}
	if err := page.WaitStable(w.cfg.NavigationTimeout); err != nil {
		w.log.WithError(err).Debug("Page did not settle after next-page click")
	}
	return page.URL() != before
}
