package snaps

import (
	"html"
	"strings"
)

// MetaTag is one key/value meta tag.
type MetaTag struct {
	Key   string
	Value string
}

// MetaTags groups the tags for a snap share page, in render order.
type MetaTags struct {
	OG       []MetaTag
	Twitter  []MetaTag
	Standard []MetaTag
}

// PageInfo describes a snap share page for tag generation.
type PageInfo struct {
	Title       string
	Description string
	ImageURL    string
	Amount      string
	AssetCode   string
	URL         string
	SiteName    string
}

// GenerateMetaTags builds OpenGraph, Twitter, and standard meta tags for a
// snap share page. A missing description is synthesized from the amount and
// asset.
func GenerateMetaTags(info PageInfo) MetaTags {
	assetCode := info.AssetCode
	if assetCode == "" {
		assetCode = "XLM"
	}
	siteName := info.SiteName
	if siteName == "" {
		siteName = "Stellar Snaps"
	}

	description := info.Description
	if description == "" {
		if info.Amount != "" {
			description = "Pay " + info.Amount + " " + assetCode + " - " + info.Title
		} else {
			description = "Make a payment - " + info.Title
		}
	}

	og := []MetaTag{
		{Key: "og:title", Value: info.Title},
		{Key: "og:description", Value: description},
		{Key: "og:url", Value: info.URL},
		{Key: "og:site_name", Value: siteName},
		{Key: "og:type", Value: "website"},
	}
	if info.ImageURL != "" {
		og = append(og, MetaTag{Key: "og:image", Value: info.ImageURL})
	}

	card := "summary"
	if info.ImageURL != "" {
		card = "summary_large_image"
	}
	twitter := []MetaTag{
		{Key: "twitter:card", Value: card},
		{Key: "twitter:title", Value: info.Title},
		{Key: "twitter:description", Value: description},
	}
	if info.ImageURL != "" {
		twitter = append(twitter, MetaTag{Key: "twitter:image", Value: info.ImageURL})
	}

	return MetaTags{
		OG:      og,
		Twitter: twitter,
		Standard: []MetaTag{
			{Key: "title", Value: info.Title + " | " + siteName},
			{Key: "description", Value: description},
		},
	}
}

// HTML renders the tags as head markup, one element per line.
func (t MetaTags) HTML() string {
	var b strings.Builder
	for _, tag := range t.Standard {
		if tag.Key == "title" {
			b.WriteString("<title>" + html.EscapeString(tag.Value) + "</title>\n")
			continue
		}
		b.WriteString(`<meta name="` + html.EscapeString(tag.Key) + `" content="` + html.EscapeString(tag.Value) + "\" />\n")
	}
	for _, tag := range t.OG {
		b.WriteString(`<meta property="` + html.EscapeString(tag.Key) + `" content="` + html.EscapeString(tag.Value) + "\" />\n")
	}
	for _, tag := range t.Twitter {
		b.WriteString(`<meta name="` + html.EscapeString(tag.Key) + `" content="` + html.EscapeString(tag.Value) + "\" />\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// JSONLD returns schema.org structured data for a snap share page.
func JSONLD(info PageInfo) map[string]any {
	assetCode := info.AssetCode
	if assetCode == "" {
		assetCode = "XLM"
	}

	description := info.Description
	if description == "" {
		amount := info.Amount
		if amount == "" {
			amount = "any amount"
		}
		description = "Pay " + amount + " " + assetCode
	}

	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "PaymentService",
		"name":        info.Title,
		"description": description,
		"url":         info.URL,
	}
	if info.ImageURL != "" {
		data["image"] = info.ImageURL
	}
	if info.Amount != "" {
		data["offers"] = map[string]any{
			"@type":         "Offer",
			"price":         info.Amount,
			"priceCurrency": assetCode,
		}
	}
	return data
}
