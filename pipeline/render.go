package pipeline

import (
	"html"
	"log/slog"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
)

// render claims the metadata id and attaches a card to the document. Two
// concurrent tasks can both reach this point with the same id via different
// URLs, so the id is claimed under lock and the document is asked once more
// right before insertion.
func (p *Pipeline) render(doc Document, resolved snaps.ResolvedURL, entry snaps.RegistryEntry, meta snaps.SnapMetadata) {
	if !p.markRendered(meta.ID) {
		return
	}
	if doc.HasCard(meta.ID) {
		return
	}

	card := Card{
		SnapID:      meta.ID,
		SourceURL:   resolved.URL,
		Domain:      entry.Domain,
		Status:      entry.Status,
		Title:       html.EscapeString(meta.Title),
		Description: html.EscapeString(meta.Description),
		ImageURL:    meta.ImageURL,
		Destination: meta.Destination,
		Amount:      meta.Amount,
		AssetCode:   meta.AssetCode,
		Metadata:    meta,
	}

	if err := doc.InsertCard(card); err != nil {
		slog.Warn("failed to insert card",
			slog.String("snap_id", meta.ID),
			slog.String("error", err.Error()),
			slog.String("module", "pipeline"),
		)
	}
}
