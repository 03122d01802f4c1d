// Package browser owns the single shared rendering session: one Chromium
// process with a persistent profile, a semaphore gating how many pages
// may be open at once, and a reset path for tearing the session down
// when it stops responding.
package browser

import (
	"context"
	"fmt"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"review-scraper/pkg/config"
	"review-scraper/pkg/fetch"
	"review-scraper/pkg/metrics"
	"review-scraper/pkg/utils"
)

// Manager lazily launches the browser on first lease and keeps it alive
// across fetches. The persistent profile directory is the main anti-bot
// measure: a profile that has passed a challenge once keeps its clearance
// cookies between runs.
type Manager struct {
	cfg     config.BrowserConfig
	metrics *metrics.Metrics
	log     *logrus.Entry

	gate *semaphore.Weighted

	mu       chan struct{} // 1-slot channel used as a context-aware mutex
	browser  *rod.Browser
	launcher *launcher.Launcher

	// Overridable in tests to avoid touching a real Chromium.
	launchFn func() (*rod.Browser, *launcher.Launcher, error)
	openFn   func(*rod.Browser) (fetch.Page, error)
	closeFn  func(*rod.Browser, *launcher.Launcher)
}

func NewManager(cfg config.BrowserConfig, m *metrics.Metrics, log *logrus.Entry) *Manager {
	mgr := &Manager{
		cfg:     cfg,
		metrics: m,
		log:     log,
		gate:    semaphore.NewWeighted(int64(cfg.MaxConcurrentPages)),
		mu:      make(chan struct{}, 1),
	}
	mgr.launchFn = mgr.launchBrowser
	mgr.openFn = mgr.openPage
	mgr.closeFn = mgr.closeBrowser
	return mgr
}

// Capacity reports how many pages may be open concurrently.
func (m *Manager) Capacity() int {
	return m.cfg.MaxConcurrentPages
}

// Start eagerly launches the browser so the first request does not pay
// the startup cost. Safe to skip; Lease launches on demand.
func (m *Manager) Start(ctx context.Context) error {
	_, err := m.session(ctx)
	return err
}

// Lease acquires a page slot and opens a fresh page on the shared
// session, launching the browser first if needed. Every failure after
// the semaphore acquire returns the slot.
func (m *Manager) Lease(ctx context.Context) (fetch.Page, error) {
	if err := m.gate.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: acquiring page slot: %s", utils.ErrResourceExhausted, err)
	}

	b, err := m.session(ctx)
	if err != nil {
		m.gate.Release(1)
		return nil, fmt.Errorf("%w: %s", utils.ErrResourceExhausted, err)
	}

	page, err := m.openFn(b)
	if err != nil {
		m.gate.Release(1)
		return nil, fmt.Errorf("%w: %s", utils.ErrResourceExhausted, err)
	}

	m.metrics.LeaseAcquired()
	return page, nil
}

// Release closes the page and returns its slot. The slot comes back even
// if the close fails; a leaked CDP target is recovered by the next Reset.
func (m *Manager) Release(p fetch.Page) {
	defer func() {
		m.metrics.LeaseReleased()
		m.gate.Release(1)
	}()
	if err := p.Close(); err != nil {
		m.log.WithError(err).Warn("Closing page failed")
	}
}

// Reset discards the current browser session. In-flight pages die with
// it; callers are expected to have failed already. The next Lease
// launches a fresh browser against the same profile.
func (m *Manager) Reset(ctx context.Context) {
	select {
	case m.mu <- struct{}{}:
		defer func() { <-m.mu }()
	case <-ctx.Done():
		return
	}

	if m.browser == nil && m.launcher == nil {
		return
	}
	m.closeFn(m.browser, m.launcher)
	m.browser = nil
	m.launcher = nil
	m.log.Info("Browser session discarded")
}

// session returns the shared browser, launching it on first use.
func (m *Manager) session(ctx context.Context) (*rod.Browser, error) {
	select {
	case m.mu <- struct{}{}:
		defer func() { <-m.mu }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if m.browser != nil {
		return m.browser, nil
	}

	b, l, err := m.launchFn()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}
	m.browser = b
	m.launcher = l
	m.log.WithField("profile_dir", m.cfg.ProfileDir).Info("Browser session started")
	return m.browser, nil
}

func (m *Manager) closeBrowser(b *rod.Browser, l *launcher.Launcher) {
	if b != nil {
		if err := b.Close(); err != nil {
			m.log.WithError(err).Debug("Closing browser during reset")
		}
	}
	if l != nil {
		l.Kill()
	}
}

func (m *Manager) launchBrowser() (*rod.Browser, *launcher.Launcher, error) {
	if err := os.MkdirAll(m.cfg.ProfileDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating profile dir %q: %w", m.cfg.ProfileDir, err)
	}

	headless := true
	if m.cfg.Headless != nil {
		headless = *m.cfg.Headless
	}

	l := launcher.New().
		Headless(headless).
		UserDataDir(m.cfg.ProfileDir).
		Set("disable-blink-features", "AutomationControlled")
	if m.cfg.ChromeBin != "" {
		l = l.Bin(m.cfg.ChromeBin)
	}
	if m.cfg.Locale != "" {
		l = l.Set("lang", m.cfg.Locale)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, nil, err
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, nil, err
	}
	return b, l, nil
}
