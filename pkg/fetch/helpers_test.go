package fetch

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"review-scraper/pkg/config"
	"review-scraper/pkg/extract"
)

func newTestLog() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func testFetchConfig() config.FetchConfig {
	return config.FetchConfig{
		NavigationTimeout:  time.Second,
		HeadingWaitTimeout: time.Second,
		RatingsWaitTimeout: time.Second,
		ClickTimeout:       time.Second,
		MaxShowMoreClicks:  120,
		GrowthPollInterval: time.Millisecond,
		GrowthWaitBudget:   10 * time.Millisecond,
		MaxReviewPages:     200,
		PageDelay:          time.Millisecond,
	}
}

// pageState is one position in a fake pagination chain.
type pageState struct {
	url      string
	title    string
	html     string
	styles   []string
	relNext  bool // expose an a[rel='next'] control
	textNext bool // expose a localized "next" link instead
	next     int  // chain index the next control leads to; -1 = dead link
}

// fakePage simulates a rendered tab: a chain of page states for
// pagination plus an optional "show more" control for expansion.
type fakePage struct {
	states []pageState
	idx    int

	navErr         error
	htmlErr        error
	waitVisibleErr error

	// show-more behaviour
	showMoreLeft   int // how many more times the control is findable
	growthPerClick int
	reviewCount    int

	clickErr  error
	scriptErr error

	navigated []string
	closed    bool
}

func (p *fakePage) cur() *pageState { return &p.states[p.idx] }

func (p *fakePage) Navigate(url string, _ time.Duration) error {
	p.navigated = append(p.navigated, url)
	if p.navErr != nil {
		return p.navErr
	}
	for i, s := range p.states {
		if s.url == url {
			p.idx = i
			break
		}
	}
	return nil
}

func (p *fakePage) URL() string   { return p.cur().url }
func (p *fakePage) Title() string { return p.cur().title }

func (p *fakePage) HTML() (string, error) {
	if p.htmlErr != nil {
		return "", p.htmlErr
	}
	return p.cur().html, nil
}

func (p *fakePage) WaitVisible(string, time.Duration) error { return p.waitVisibleErr }
func (p *fakePage) WaitStable(time.Duration) error          { return nil }

func (p *fakePage) Count(string) int {
	if p.reviewCount > 0 {
		return p.reviewCount
	}
	return len(p.cur().styles)
}

func (p *fakePage) Styles(string) []string { return p.cur().styles }

func (p *fakePage) Find(sel string) (Control, bool) {
	if sel == nextRelSelector && p.cur().relNext {
		return &fakeNextControl{page: p}, true
	}
	return nil, false
}

func (p *fakePage) FindVisibleByText(labels []string) (Control, bool) {
	for _, label := range labels {
		for _, loc := range extract.DefaultMarkers() {
			if label == loc.LoadMore && p.showMoreLeft > 0 {
				return &fakeShowMoreControl{page: p}, true
			}
			if label == loc.NextPage && p.cur().textNext {
				return &fakeNextControl{page: p}, true
			}
		}
	}
	return nil, false
}

func (p *fakePage) Sleep(time.Duration) {}
func (p *fakePage) Close() error        { p.closed = true; return nil }

type fakeShowMoreControl struct{ page *fakePage }

func (c *fakeShowMoreControl) Visible() bool         { return true }
func (c *fakeShowMoreControl) ScrollIntoView() error { return nil }

func (c *fakeShowMoreControl) Click(time.Duration) error {
	if c.page.clickErr != nil {
		return c.page.clickErr
	}
	c.click()
	return nil
}

func (c *fakeShowMoreControl) ScriptClick() error {
	if c.page.scriptErr != nil {
		return c.page.scriptErr
	}
	c.click()
	return nil
}

func (c *fakeShowMoreControl) click() {
	c.page.showMoreLeft--
	c.page.reviewCount += c.page.growthPerClick
}

type fakeNextControl struct{ page *fakePage }

func (c *fakeNextControl) Visible() bool         { return true }
func (c *fakeNextControl) ScrollIntoView() error { return nil }

func (c *fakeNextControl) Click(time.Duration) error {
	if c.page.clickErr != nil {
		return c.page.clickErr
	}
	c.click()
	return nil
}

func (c *fakeNextControl) ScriptClick() error {
	if c.page.scriptErr != nil {
		return c.page.scriptErr
	}
	c.click()
	return nil
}

func (c *fakeNextControl) click() {
	if next := c.page.cur().next; next >= 0 && next < len(c.page.states) {
		c.page.idx = next
	}
}

// fakeSource hands out a scripted sequence of pages.
type fakeSource struct {
	pages     []*fakePage
	leaseErrs []error

	leases   int
	resets   int
	released []Page
}

func (s *fakeSource) Lease(_ context.Context) (Page, error) {
	i := s.leases
	s.leases++
	if i < len(s.leaseErrs) && s.leaseErrs[i] != nil {
		return nil, s.leaseErrs[i]
	}
	return s.pages[i], nil
}

func (s *fakeSource) Release(p Page) { s.released = append(s.released, p) }

func (s *fakeSource) Reset(context.Context) { s.resets++ }
