// Package pipeline discovers payment links in a document and renders them as
// cards.
package pipeline

import (
	snaps "github.com/stellarsnaps/stellarsnaps-go"
)

// Anchor is one link found in a document.
type Anchor struct {
	Href string
	Text string
}

// Card is a rendered payment card attached to a document. Display fields are
// already escaped by the time a Card exists.
type Card struct {
	// SnapID identifies the payment target. At most one card per SnapID
	// exists in a document at any time.
	SnapID string
	// SourceURL is the resolved link the card was rendered for.
	SourceURL string

	Domain string
	Status snaps.DomainStatus

	Title       string
	Description string
	ImageURL    string
	Destination string
	Amount      string
	AssetCode   string

	// Metadata is the raw, unescaped metadata the card was built from,
	// kept for the payment flow.
	Metadata snaps.SnapMetadata
}

// Document is the page being scanned. Implementations are not required to be
// safe for concurrent use; the pipeline serializes card insertion itself.
type Document interface {
	// Anchors returns every link in the document.
	Anchors() []Anchor
	// TextBlocks returns visible text fragments, for links pasted as plain
	// text rather than marked up.
	TextBlocks() []string
	// HasCard reports whether a card for the given snap id is already
	// attached.
	HasCard(snapID string) bool
	// InsertCard attaches a card to the document.
	InsertCard(card Card) error
}
