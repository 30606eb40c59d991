package snaps

import (
	"strings"
	"testing"
)

func TestGenerateMetaTags(t *testing.T) {
	tags := GenerateMetaTags(PageInfo{
		Title:     "Pay for Coffee",
		Amount:    "5",
		AssetCode: "XLM",
		URL:       "https://snaps.example.com/s/abc123",
	})

	want := map[string]string{
		"og:title":       "Pay for Coffee",
		"og:description": "Pay 5 XLM - Pay for Coffee",
		"og:url":         "https://snaps.example.com/s/abc123",
		"og:site_name":   "Stellar Snaps",
		"og:type":        "website",
	}
	got := map[string]string{}
	for _, tag := range tags.OG {
		got[tag.Key] = tag.Value
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("expected %s=%q, got %q", k, v, got[k])
		}
	}

	if tags.Twitter[0].Value != "summary" {
		t.Fatalf("expected summary card without image, got %q", tags.Twitter[0].Value)
	}
	if tags.Standard[0].Value != "Pay for Coffee | Stellar Snaps" {
		t.Fatalf("unexpected page title %q", tags.Standard[0].Value)
	}
}

func TestGenerateMetaTagsWithImage(t *testing.T) {
	tags := GenerateMetaTags(PageInfo{
		Title:       "Pay for Coffee",
		Description: "morning espresso",
		ImageURL:    "https://cdn.example.com/coffee.png",
		URL:         "https://snaps.example.com/s/abc123",
	})

	if tags.Twitter[0].Value != "summary_large_image" {
		t.Fatalf("expected large image card, got %q", tags.Twitter[0].Value)
	}
	found := false
	for _, tag := range tags.OG {
		if tag.Key == "og:image" && tag.Value == "https://cdn.example.com/coffee.png" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected og:image tag, got %+v", tags.OG)
	}
	if tags.Standard[1].Value != "morning espresso" {
		t.Fatalf("explicit description should win, got %q", tags.Standard[1].Value)
	}
}

func TestMetaTagsHTMLEscapes(t *testing.T) {
	tags := GenerateMetaTags(PageInfo{
		Title: `Coffee <&> "fund"`,
		URL:   "https://snaps.example.com/s/abc123",
	})
	out := tags.HTML()

	if !strings.Contains(out, "<title>Coffee &lt;&amp;&gt; &#34;fund&#34; | Stellar Snaps</title>") {
		t.Fatalf("title not escaped:\n%s", out)
	}
	if strings.Contains(out, `content="Coffee <`) {
		t.Fatalf("attribute not escaped:\n%s", out)
	}
	if !strings.Contains(out, `<meta property="og:type" content="website" />`) {
		t.Fatalf("missing og:type tag:\n%s", out)
	}
}

func TestJSONLD(t *testing.T) {
	data := JSONLD(PageInfo{
		Title:     "Pay for Coffee",
		Amount:    "5",
		AssetCode: "XLM",
		URL:       "https://snaps.example.com/s/abc123",
	})

	if data["@type"] != "PaymentService" {
		t.Fatalf("unexpected type %v", data["@type"])
	}
	offers, ok := data["offers"].(map[string]any)
	if !ok {
		t.Fatalf("expected offers for a fixed amount, got %+v", data)
	}
	if offers["price"] != "5" || offers["priceCurrency"] != "XLM" {
		t.Fatalf("unexpected offer %+v", offers)
	}

	open := JSONLD(PageInfo{Title: "Tip jar", URL: "https://snaps.example.com/s/tip1"})
	if _, ok := open["offers"]; ok {
		t.Fatalf("open snaps should carry no offer")
	}
	if open["description"] != "Pay any amount XLM" {
		t.Fatalf("unexpected description %v", open["description"])
	}
}
