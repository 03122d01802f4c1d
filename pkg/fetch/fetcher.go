package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"review-scraper/pkg/config"
	"review-scraper/pkg/detect"
	"review-scraper/pkg/extract"
	"review-scraper/pkg/metrics"
	"review-scraper/pkg/models"
	"review-scraper/pkg/utils"
)

// Fetcher is the pipeline entry point: it renders product pages, walks
// review pagination, and runs extraction over the captures. One Fetcher
// serves all requests; per-fetch state lives on the stack.
type Fetcher struct {
	pages    PageSource
	expander *Expander
	walker   *Walker
	cfg      config.FetchConfig
	locales  []extract.LocaleMarkers
	metrics  *metrics.Metrics
	log      *logrus.Entry
}

func NewFetcher(pages PageSource, cfg config.FetchConfig, locales []extract.LocaleMarkers, m *metrics.Metrics, log *logrus.Entry) *Fetcher {
	expander := NewExpander(cfg, log)
	return &Fetcher{
		pages:    pages,
		expander: expander,
		walker:   NewWalker(cfg, expander, locales, m, log),
		cfg:      cfg,
		locales:  locales,
		metrics:  m,
		log:      log,
	}
}

// FetchOne renders a single page and captures it. A non-timeout failure
// gets one self-heal attempt: the session is torn down and the fetch
// retried on a fresh browser. Timeouts are surfaced directly since a
// slow site is not cured by a restart. A challenge capture is Blocked.
func (f *Fetcher) FetchOne(ctx context.Context, pageURL string) (models.FetchPayload, error) {
	started := time.Now()
	payload, err := f.fetchOnce(ctx, pageURL)
	if err != nil {
		if utils.IsTimeout(err) {
			f.metrics.IncFetches("timeout")
			return models.FetchPayload{}, fmt.Errorf("%w: %w", utils.ErrTimeout, err)
		}

		f.log.WithError(err).WithField("url", pageURL).Warn("Fetch failed, restarting browser session")
		f.pages.Reset(ctx)

		payload, err = f.fetchOnce(ctx, pageURL)
		if err != nil {
			f.metrics.IncFetches("failed")
			return models.FetchPayload{}, fmt.Errorf("%w: %w", utils.ErrFetchFailed, err)
		}
	}

	if detect.IsChallenge(payload.HTML) {
		f.metrics.IncFetches("blocked")
		return models.FetchPayload{}, fmt.Errorf("%w: %s", utils.ErrBlocked, pageURL)
	}

	f.metrics.IncFetches("ok")
	f.metrics.ObserveFetchDuration(time.Since(started))
	return payload, nil
}

// fetchOnce performs one render attempt on a leased page. Element waits
// are best effort: a product page without reviews never shows rating
// widgets, and some layouts delay the heading.
func (f *Fetcher) fetchOnce(ctx context.Context, pageURL string) (models.FetchPayload, error) {
	page, err := f.pages.Lease(ctx)
	if err != nil {
		return models.FetchPayload{}, err
	}
	defer f.pages.Release(page)

	if err := page.Navigate(pageURL, f.cfg.NavigationTimeout); err != nil {
		return models.FetchPayload{}, fmt.Errorf("navigating to %s: %w", pageURL, err)
	}
	if err := page.WaitVisible(headingSelector, f.cfg.HeadingWaitTimeout); err != nil {
		f.log.WithField("url", pageURL).Debug("Heading never became visible")
	}
	if err := page.WaitVisible(ratingSelector, f.cfg.RatingsWaitTimeout); err != nil {
		f.log.WithField("url", pageURL).Debug("No rating widgets appeared within budget")
	}

	f.metrics.AddShowMoreClicks(f.expander.Expand(page, extract.LoadMoreLabels(f.locales)))

	markup, err := page.HTML()
	if err != nil {
		return models.FetchPayload{}, fmt.Errorf("capturing HTML of %s: %w", pageURL, err)
	}

	return models.FetchPayload{
		HTML:    markup,
		Ratings: extract.DecodeRatings(page.Styles(ratingSelector)),
		URL:     page.URL(),
		Title:   page.Title(),
	}, nil
}

// FetchProductAndReviews runs the full pipeline for one listing: product
// page capture and extraction, then the review pagination walk with
// per-page extraction and positional rating assignment.
func (f *Fetcher) FetchProductAndReviews(ctx context.Context, rawURL string) (*models.FetchResult, error) {
	productURL := NormalizeProductURL(rawURL)
	log := f.log.WithField("url", productURL)

	payload, err := f.FetchOne(ctx, productURL)
	if err != nil {
		return nil, err
	}
	product, err := extract.ExtractProduct(payload.HTML, productURL)
	if err != nil {
		return nil, err
	}

	reviewsURL := productURL + "comments/"
	payloads, err := f.walkReviews(ctx, reviewsURL)
	if err != nil {
		return nil, err
	}

	var reviews []models.Review
	for _, p := range payloads {
		pageReviews, err := extract.ExtractReviews(p.HTML, reviewsURL, f.locales)
		if err != nil {
			return nil, err
		}
		assignRatings(pageReviews, p.Ratings, log)
		reviews = append(reviews, pageReviews...)
	}
	f.metrics.AddReviewsExtracted(len(reviews))

	log.WithFields(logrus.Fields{
		"title":   product.Title,
		"pages":   len(payloads),
		"reviews": len(reviews),
	}).Info("Listing fetched")

	return &models.FetchResult{Product: product, Reviews: reviews, Pages: len(payloads)}, nil
}

// walkReviews runs the pagination walker on a leased page. The walk has
// no self-heal: a failure mid-chain means partial data, and the caller
// retries the whole listing instead.
func (f *Fetcher) walkReviews(ctx context.Context, reviewsURL string) ([]models.FetchPayload, error) {
	page, err := f.pages.Lease(ctx)
	if err != nil {
		return nil, err
	}
	defer f.pages.Release(page)

	payloads, err := f.walker.Walk(page, reviewsURL, f.cfg.MaxReviewPages)
	if err != nil {
		if utils.IsTimeout(err) {
			return nil, fmt.Errorf("%w: %w", utils.ErrTimeout, err)
		}
		return nil, err
	}
	return payloads, nil
}

// assignRatings attaches decoded star ratings to reviews by position.
// The two sequences come from different traversals of the same page, so
// a length mismatch means the alignment cannot be trusted and every
// rating on the page is dropped.
func assignRatings(reviews []models.Review, ratings []*int, log *logrus.Entry) {
	if len(reviews) != len(ratings) {
		if len(reviews) > 0 {
			log.WithFields(logrus.Fields{
				"reviews": len(reviews),
				"ratings": len(ratings),
			}).Warn("Rating count does not match review count, dropping page ratings")
		}
		return
	}
	for i := range reviews {
		reviews[i].Rating = ratings[i]
	}
}

// NormalizeProductURL strips the query string and guarantees exactly one
// trailing slash, so the review-page URL can be formed by suffixing.
func NormalizeProductURL(rawURL string) string {
	u := rawURL
	if i := strings.Index(u, "?"); i >= 0 {
		u = u[:i]
	}
	return strings.TrimRight(u, "/") + "/"
}
