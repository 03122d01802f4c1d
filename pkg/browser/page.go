package browser

import (
	"regexp"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"review-scraper/pkg/fetch"
)

// openPage creates a fresh tab on the shared session with the stealth
// script, user agent and viewport applied before any navigation.
func (m *Manager) openPage(b *rod.Browser) (fetch.Page, error) {
	page, err := stealth.Page(b)
	if err != nil {
		return nil, err
	}

	if m.cfg.UserAgent != "" {
		override := proto.NetworkSetUserAgentOverride{UserAgent: m.cfg.UserAgent}
		if m.cfg.Locale != "" {
			override.AcceptLanguage = m.cfg.Locale
		}
		if err := page.SetUserAgent(&override); err != nil {
			_ = page.Close()
			return nil, err
		}
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             m.cfg.ViewportWidth,
		Height:            m.cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		_ = page.Close()
		return nil, err
	}

	return &rodPage{page: page}, nil
}

// rodPage adapts a rod tab to the pipeline's page surface. Every bounded
// operation goes through page.Timeout, which surfaces expiry as
// context.DeadlineExceeded.
type rodPage struct {
	page *rod.Page
}

func (p *rodPage) Navigate(url string, timeout time.Duration) error {
	pg := p.page.Timeout(timeout)
	if err := pg.Navigate(url); err != nil {
		return err
	}
	return pg.WaitLoad()
}

func (p *rodPage) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *rodPage) Title() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.Title
}

func (p *rodPage) HTML() (string, error) {
	return p.page.HTML()
}

func (p *rodPage) WaitVisible(sel string, timeout time.Duration) error {
	el, err := p.page.Timeout(timeout).Element(sel)
	if err != nil {
		return err
	}
	return el.WaitVisible()
}

func (p *rodPage) WaitStable(timeout time.Duration) error {
	return p.page.Timeout(timeout).WaitStable(time.Second)
}

func (p *rodPage) Count(sel string) int {
	els, err := p.page.Elements(sel)
	if err != nil {
		return 0
	}
	return len(els)
}

func (p *rodPage) Styles(sel string) []string {
	els, err := p.page.Elements(sel)
	if err != nil {
		return nil
	}
	styles := make([]string, 0, len(els))
	for _, el := range els {
		attr, err := el.Attribute("style")
		if err != nil || attr == nil {
			styles = append(styles, "")
			continue
		}
		styles = append(styles, *attr)
	}
	return styles
}

func (p *rodPage) Find(sel string) (fetch.Control, bool) {
	has, el, err := p.page.Has(sel)
	if err != nil || !has {
		return nil, false
	}
	return &rodControl{el: el}, true
}

func (p *rodPage) FindVisibleByText(labels []string) (fetch.Control, bool) {
	for _, label := range labels {
		el, err := p.page.Sleeper(rod.NotFoundSleeper).
			ElementR("button, a", regexp.QuoteMeta(label))
		if err != nil {
			continue
		}
		visible, err := el.Visible()
		if err != nil || !visible {
			continue
		}
		return &rodControl{el: el}, true
	}
	return nil, false
}

func (p *rodPage) Sleep(d time.Duration) {
	time.Sleep(d)
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

type rodControl struct {
	el *rod.Element
}

func (c *rodControl) Visible() bool {
	v, err := c.el.Visible()
	return err == nil && v
}

func (c *rodControl) ScrollIntoView() error {
	return c.el.ScrollIntoView()
}

func (c *rodControl) Click(timeout time.Duration) error {
	return c.el.Timeout(timeout).Click(proto.InputMouseButtonLeft, 1)
}

func (c *rodControl) ScriptClick() error {
	_, err := c.el.Eval(`() => this.click()`)
	return err
}
