package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsChallenge(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   bool
	}{
		{"empty", "", false},
		{"plain product page", "<html><h1>Smartphone X 128GB</h1></html>", false},
		{"interstitial title", "<title>Just a moment...</title>", true},
		{"uppercase interstitial", "<title>JUST A MOMENT</title>", true},
		{"challenge script path", `<script src="/cdn-cgi/challenge-platform/h/b.js"></script>`, true},
		{"captcha fallback link", `<a href="/cdn-cgi/l/chk_captcha">retry</a>`, true},
		{"challenge token class", `<div class="cf-chl-widget"></div>`, true},
		{"managed challenge text", "This request was met with a Managed Challenge", true},
		{"browser check text", "<p>Checking your browser before accessing</p>", true},
		{"ray id footer", `<span>Cloudflare Ray ID: <code class="cf-ray">8a7b</code></span>`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsChallenge(tt.markup))
		})
	}
}
