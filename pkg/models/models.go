package models

// FetchPayload is the raw capture of one rendered page: its markup, the
// decoded per-review rating sequence in document order, and the URL the
// page ended up on. It is immutable once produced; the extractor consumes it.
type FetchPayload struct {
	HTML    string
	Ratings []*int // index i belongs to the i-th review block on the page
	URL     string
	Title   string
}

// Product is the structured record extracted from a product page.
// Optional fields are pointers so "absent" stays distinguishable from "empty".
type Product struct {
	URL             string
	ExternalID      *string // digits captured from the /p<digits>/ URL segment
	Title           string  // never empty; falls back to "Unknown title"
	Brand           *string
	SKU             *string
	DescriptionHTML *string
	DescriptionText *string
	Specs           map[string]string
}

// Review is a single buyer review scraped from a reviews page.
type Review struct {
	Text      *string
	Pros      *string
	Cons      *string
	Date      *string // raw localized date string, e.g. "15 травня 2024"
	Rating    *int    // 1..5, assigned positionally from FetchPayload.Ratings
	SourceURL string
}

// Empty reports whether the review carries no content at all. Such reviews
// are discarded during extraction.
func (r Review) Empty() bool {
	return r.Text == nil && r.Pros == nil && r.Cons == nil
}

// FetchResult is what the orchestrator hands back to the service shell.
type FetchResult struct {
	Product Product
	Reviews []Review
	Pages   int
}
