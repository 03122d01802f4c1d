// Package fetch drives a rendering session through the product and
// review pages of a single listing: navigation, in-page expansion,
// pagination, and the one-retry self-heal around a wedged session.
package fetch

import (
	"context"
	"time"
)

// Selectors fixed by the site's markup.
const (
	headingSelector = "h1"
	ratingSelector  = `rz-comment-rating [data-testid="stars-rating"]`
	nextRelSelector = `a[rel='next']`
)

// Control is an element handle for the few interactions the pipeline
// performs on buttons and links.
type Control interface {
	Visible() bool
	ScrollIntoView() error
	// Click dispatches a trusted click, failing after timeout if the
	// element never becomes interactable.
	Click(timeout time.Duration) error
	// ScriptClick clicks via injected script, bypassing hit testing. Used
	// as the fallback when an overlay intercepts the trusted click.
	ScriptClick() error
}

// Page is the surface the pipeline needs from one rendered page. The
// browser package provides the real implementation.
type Page interface {
	Navigate(url string, timeout time.Duration) error
	URL() string
	Title() string
	HTML() (string, error)
	// WaitVisible blocks until sel has a visible match or timeout expires.
	WaitVisible(sel string, timeout time.Duration) error
	// WaitStable blocks until the page stops mutating, best effort.
	WaitStable(timeout time.Duration) error
	// Count returns how many elements currently match sel, without waiting.
	Count(sel string) int
	// Styles returns the style attribute of every current match of sel,
	// in document order, empty string for elements without one.
	Styles(sel string) []string
	// Find returns the first current match of sel, without waiting.
	Find(sel string) (Control, bool)
	// FindVisibleByText returns the first visible button or link whose
	// text contains any of the given labels, tried in order.
	FindVisibleByText(labels []string) (Control, bool)
	Sleep(d time.Duration)
	Close() error
}

// PageSource hands out pages under the session's concurrency gate and can
// tear the whole session down when it stops responding.
type PageSource interface {
	Lease(ctx context.Context) (Page, error)
	Release(p Page)
	// Reset discards the current browser session; the next Lease starts a
	// fresh one.
	Reset(ctx context.Context)
}
