// Package detect classifies fetched markup as real content or an
// anti-bot interstitial. Classification is pure string matching over the
// raw document, so it works on partially rendered pages too.
package detect

import "strings"

// Signatures the interstitial pages carry. The list is intentionally
// broad: a false positive only delays a retry, a false negative stores a
// challenge page as product data.
var challengeSignatures = []string{
	"cf-chl-",
	"/cdn-cgi/challenge",
	"/cdn-cgi/l/chk_captcha",
	"managed challenge",
	"just a moment",
	"checking your browser",
	"cf-ray",
}

// IsChallenge reports whether the markup looks like an anti-bot
// interstitial rather than site content. Matching is case-insensitive.
func IsChallenge(markup string) bool {
	if markup == "" {
		return false
	}
	lower := strings.ToLower(markup)
	for _, sig := range challengeSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}
