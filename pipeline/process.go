package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/stellarsnaps/stellarsnaps-go/discovery"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
)

// process runs one candidate through resolution, registry lookup, discovery
// matching, metadata fetch, and finally rendering. Every abandonment before
// the blocked-domain case is silent: most links on a page are simply not
// payment links.
func (p *Pipeline) process(ctx context.Context, doc Document, candidate string) {
	resolved, err := p.resolver.Resolve(ctx, candidate)
	if err != nil {
		return
	}

	entry, registered, err := p.registry.Lookup(ctx, resolved.Domain)
	if err != nil || !registered {
		return
	}
	if entry.Status == snaps.StatusBlocked {
		slog.Warn("refusing to render link from blocked domain",
			slog.String("domain", entry.Domain),
			slog.String("url", resolved.URL),
			slog.String("module", "pipeline"),
		)
		return
	}

	file, err := p.discovery.FetchDiscoveryFile(ctx, entry.Domain)
	if err != nil {
		return
	}

	apiPath := discovery.MatchPath(snaps.ExtractPath(resolved.URL), file.Rules)
	if apiPath == "" {
		return
	}

	// Cheap dedup before the metadata fetch, keyed by the path's trailing
	// segment. The authoritative check against the metadata's own id comes
	// after.
	if key := trailingSegment(apiPath); key != "" && p.isRendered(key) {
		return
	}

	scheme := "https"
	if strings.HasPrefix(entry.Domain, "localhost") || strings.HasPrefix(entry.Domain, "127.0.0.1") {
		scheme = "http"
	}
	meta, err := p.metadata.FetchMetadata(ctx, scheme+"://"+entry.Domain+apiPath)
	if err != nil {
		return
	}
	if meta.ID == "" || meta.Destination == "" {
		return
	}

	p.render(doc, resolved, entry, meta)
}

// trailingSegment returns the last path segment, or "" when the path has no
// usable identifier.
func trailingSegment(path string) string {
	trimmed := strings.TrimSuffix(path, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return ""
	}
	return trimmed[idx+1:]
}
