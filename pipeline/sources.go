package pipeline

import (
	"regexp"
	"strings"

	"github.com/stellarsnaps/stellarsnaps-go/resolver"
)

// CandidateSource extracts candidate payment-link URLs from a document.
type CandidateSource interface {
	Candidates(doc Document) []string
}

// AnchorSource yields anchor hrefs. When a shortener strips the href and
// leaves only display text, the text is used instead if it still looks like
// a URL.
type AnchorSource struct{}

func (AnchorSource) Candidates(doc Document) []string {
	var out []string
	for _, a := range doc.Anchors() {
		href := strings.TrimSpace(a.Href)
		if skipHref(href) {
			continue
		}
		if href != "" {
			out = append(out, href)
			continue
		}
		if text := strings.TrimSpace(a.Text); looksLikeURL(text) {
			out = append(out, text)
		}
	}
	return out
}

// FeedCardSource finds shortened links pasted into plain text, the way feed
// posts render them. Only known shortener URLs are picked up: arbitrary text
// URLs would flood the pipeline with noise.
type FeedCardSource struct{}

var textURLRe = regexp.MustCompile(`https?://[^\s<>"']+`)

func (FeedCardSource) Candidates(doc Document) []string {
	var out []string
	for _, block := range doc.TextBlocks() {
		for _, match := range textURLRe.FindAllString(block, -1) {
			match = strings.TrimRight(match, ".,;:!?)")
			if resolver.IsShortener(match) {
				out = append(out, match)
			}
		}
	}
	return out
}

func skipHref(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "#") ||
		strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:")
}

func looksLikeURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
