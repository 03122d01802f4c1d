package extract

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"review-scraper/pkg/models"
)

// Dates inside flattened review text look like "15 травня 2024".
var inlineDatePattern = regexp.MustCompile(`\b(\d{1,2}\s+[^\d\n]+?\s+\d{4})\b`)

// ExtractReviews segments the flattened text of a review-listing page into
// individual reviews. The site renders no stable per-review containers, so
// segmentation is driven entirely by fixed UI phrases: each review block
// opens with a screen-reader delimiter ("Відгук від покупця." or its
// Russian equivalent) and ends at the reply affordance. Ratings are not
// recoverable from text and are attached separately by the caller.
func ExtractReviews(markup, sourceURL string, locales []LocaleMarkers) ([]models.Review, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing reviews HTML: %w", err)
	}
	text := flattenText(doc)

	blocks := splitReviewBlocks(text, locales)
	reviews := make([]models.Review, 0, len(blocks))
	for _, block := range blocks {
		if r, ok := parseReviewBlock(block, sourceURL, locales); ok {
			reviews = append(reviews, r)
		}
	}
	return reviews, nil
}

// splitReviewBlocks tries each locale's review delimiter in order and splits
// on the first one that actually occurs. The chunk before the first
// delimiter is page chrome, not a review.
func splitReviewBlocks(text string, locales []LocaleMarkers) []string {
	for _, loc := range locales {
		if loc.ReviewStart == "" {
			continue
		}
		chunks := strings.Split(text, loc.ReviewStart)
		if len(chunks) > 1 {
			return chunks[1:]
		}
	}
	return nil
}

// parseReviewBlock pulls date, body, pros and cons out of one delimited
// block. A block containing none of body, pros or cons is page noise and is
// dropped.
func parseReviewBlock(block, sourceURL string, locales []LocaleMarkers) (models.Review, bool) {
	for _, loc := range locales {
		if loc.Reply == "" {
			continue
		}
		if i := strings.Index(block, loc.Reply); i >= 0 {
			block = block[:i]
		}
	}

	r := models.Review{SourceURL: sourceURL}

	if m := inlineDatePattern.FindStringSubmatch(block); m != nil {
		if _, ok := ParseReviewDate(m[1]); ok {
			r.Date = optStr(NormalizeWS(m[1]))
		}
	}

	r.Pros, r.Cons = prosConsFromBlock(block, locales)
	r.Text = bodyFromBlock(block, locales)

	if r.Empty() {
		return models.Review{}, false
	}
	return r, true
}

// prosConsFromBlock extracts the labelled advantage/disadvantage sections.
// Pros run from the pros label up to the cons label of any locale; cons run
// from the cons label onward.
func prosConsFromBlock(block string, locales []LocaleMarkers) (pros, cons *string) {
	for _, loc := range locales {
		if pros == nil && loc.Pros != "" {
			if i := strings.Index(block, loc.Pros); i >= 0 {
				section := block[i+len(loc.Pros):]
				if j := firstConsIndex(section, locales); j >= 0 {
					section = section[:j]
				}
				pros = optStr(NormalizeWS(section))
			}
		}
		if cons == nil && loc.Cons != "" {
			if i := strings.Index(block, loc.Cons); i >= 0 {
				cons = optStr(NormalizeWS(block[i+len(loc.Cons):]))
			}
		}
	}
	return pros, cons
}

func firstConsIndex(s string, locales []LocaleMarkers) int {
	best := -1
	for _, loc := range locales {
		if loc.Cons == "" {
			continue
		}
		if i := strings.Index(s, loc.Cons); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}

// bodyFromBlock finds the free-text body: the first line before any
// pros/cons label that is neither a date nor interleaved product-variant
// metadata. The scan stops at the first section label so section content
// can never double as body.
func bodyFromBlock(block string, locales []LocaleMarkers) *string {
	for _, line := range strings.Split(block, "\n") {
		line = NormalizeWS(line)
		if line == "" {
			continue
		}
		if isSectionLabel(line, locales) {
			break
		}
		if isDateLine(line) || isMetadataLine(line, locales) {
			continue
		}
		return optStr(line)
	}
	return nil
}

func isSectionLabel(line string, locales []LocaleMarkers) bool {
	for _, loc := range locales {
		if loc.Pros != "" && strings.HasPrefix(line, loc.Pros) {
			return true
		}
		if loc.Cons != "" && strings.HasPrefix(line, loc.Cons) {
			return true
		}
	}
	return false
}

func isDateLine(line string) bool {
	if !inlineDatePattern.MatchString(line) {
		return false
	}
	_, ok := ParseReviewDate(line)
	return ok
}

func isMetadataLine(line string, locales []LocaleMarkers) bool {
	for _, loc := range locales {
		for _, meta := range loc.Metadata {
			if strings.Contains(line, meta) {
				return true
			}
		}
	}
	return false
}

// flattenText walks the node tree and joins every visible text node with
// newlines, mirroring how the segmentation markers appear in rendered text.
func flattenText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				if b.Len() > 0 {
					b.WriteByte('\n')
				}
				b.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
