package pipeline

import (
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// HTMLDocument adapts a parsed HTML page to the Document interface. Inserted
// cards are collected rather than written back into the tree; one-shot tools
// read them off with Cards.
type HTMLDocument struct {
	anchors []Anchor
	blocks  []string

	mu    sync.Mutex
	cards []Card
	byID  map[string]struct{}
}

// Compile-time interface check.
var _ Document = (*HTMLDocument)(nil)

// ParseHTML reads an HTML page and extracts its anchors and text blocks.
func ParseHTML(r io.Reader) (*HTMLDocument, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	doc := &HTMLDocument{byID: make(map[string]struct{})}
	doc.walk(root)
	return doc, nil
}

func (d *HTMLDocument) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style":
			return
		case "a":
			d.anchors = append(d.anchors, Anchor{
				Href: attr(n, "href"),
				Text: strings.TrimSpace(textContent(n)),
			})
			return
		}
	}
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			d.blocks = append(d.blocks, text)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.walk(c)
	}
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return b.String()
}

func (d *HTMLDocument) Anchors() []Anchor { return d.anchors }

func (d *HTMLDocument) TextBlocks() []string { return d.blocks }

func (d *HTMLDocument) HasCard(snapID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.byID[snapID]
	return ok
}

func (d *HTMLDocument) InsertCard(card Card) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.byID[card.SnapID]; ok {
		return nil
	}
	d.byID[card.SnapID] = struct{}{}
	d.cards = append(d.cards, card)
	return nil
}

// Cards returns the cards attached so far.
func (d *HTMLDocument) Cards() []Card {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
