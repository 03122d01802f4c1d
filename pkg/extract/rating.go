package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// The rating widget renders the filled-star overlay as an inline width,
// either "width: calc(100% - 2px);" or "width: 80%;".
var stylePctPattern = regexp.MustCompile(`width:(?:calc\()?(\d+(?:\.\d+)?)%?`)

// DecodeRating converts a star-widget style attribute into a 1..5 rating.
// The percentage maps linearly onto 0..5, is rounded half-up and clamped
// into [1,5]. A missing or unparseable style yields nil.
func DecodeRating(style string) *int {
	if style == "" {
		return nil
	}
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	m := stylePctPattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	r := int(math.Round(5 * pct / 100))
	if r < 1 {
		r = 1
	}
	if r > 5 {
		r = 5
	}
	return &r
}

// DecodeRatings decodes a sequence of style attributes, preserving order
// and keeping nil entries for widgets that could not be decoded.
func DecodeRatings(styles []string) []*int {
	ratings := make([]*int, 0, len(styles))
	for _, style := range styles {
		ratings = append(ratings, DecodeRating(style))
	}
	return ratings
}
