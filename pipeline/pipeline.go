package pipeline

import (
	"context"
	"sync"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
)

// DefaultMaxInFlight caps concurrent candidate processing.
const DefaultMaxInFlight = 16

// URLResolver expands shortened candidate URLs.
type URLResolver interface {
	Resolve(ctx context.Context, rawurl string) (snaps.ResolvedURL, error)
}

// RegistryLookup answers domain trust queries. The second return value
// reports whether the domain is registered at all.
type RegistryLookup interface {
	Lookup(ctx context.Context, domain string) (snaps.RegistryEntry, bool, error)
}

// DiscoveryFetcher retrieves a domain's discovery file.
type DiscoveryFetcher interface {
	FetchDiscoveryFile(ctx context.Context, domain string) (snaps.DiscoveryFile, error)
}

// MetadataFetcher retrieves snap metadata from a matched API path.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, rawurl string) (snaps.SnapMetadata, error)
}

// Pipeline turns candidate links into rendered cards. Three sets guard
// against duplicate work: visited holds every candidate URL ever picked up,
// rendered holds snap ids that produced a card, pending holds candidates
// whose processing is still in flight. Candidates are marked visited before
// any slow call so a rescan arriving mid-flight cannot start the same work
// twice; the rendered set is re-checked right before insertion because many
// candidates race toward the same snap id.
type Pipeline struct {
	resolver  URLResolver
	registry  RegistryLookup
	discovery DiscoveryFetcher
	metadata  MetadataFetcher
	sources   []CandidateSource

	mu       sync.Mutex
	visited  map[string]struct{}
	rendered map[string]struct{}
	pending  map[string]struct{}

	sem chan struct{}
	wg  sync.WaitGroup
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSources replaces the default candidate sources.
func WithSources(sources ...CandidateSource) Option {
	return func(p *Pipeline) { p.sources = sources }
}

// WithMaxInFlight caps concurrent candidate processing.
func WithMaxInFlight(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.sem = make(chan struct{}, n)
		}
	}
}

func New(resolver URLResolver, registry RegistryLookup, discovery DiscoveryFetcher, metadata MetadataFetcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		resolver:  resolver,
		registry:  registry,
		discovery: discovery,
		metadata:  metadata,
		sources:   []CandidateSource{AnchorSource{}, FeedCardSource{}},
		visited:   make(map[string]struct{}),
		rendered:  make(map[string]struct{}),
		pending:   make(map[string]struct{}),
		sem:       make(chan struct{}, DefaultMaxInFlight),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Scan collects candidates from the document and processes the new ones
// asynchronously. Safe to call repeatedly; already-seen candidates are
// skipped without any network traffic.
func (p *Pipeline) Scan(ctx context.Context, doc Document) {
	for _, source := range p.sources {
		for _, candidate := range source.Candidates(doc) {
			p.mu.Lock()
			if _, seen := p.visited[candidate]; seen {
				p.mu.Unlock()
				continue
			}
			if _, inFlight := p.pending[candidate]; inFlight {
				p.mu.Unlock()
				continue
			}
			p.visited[candidate] = struct{}{}
			p.pending[candidate] = struct{}{}
			p.mu.Unlock()

			p.wg.Add(1)
			go func(candidate string) {
				defer p.wg.Done()
				p.sem <- struct{}{}
				defer func() { <-p.sem }()

				defer func() {
					p.mu.Lock()
					delete(p.pending, candidate)
					p.mu.Unlock()
				}()
				p.process(ctx, doc, candidate)
			}(candidate)
		}
	}
}

// Wait blocks until all in-flight candidates finish.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Run scans once and waits for every candidate to settle. This is the
// synchronous entrypoint for one-shot tools.
func (p *Pipeline) Run(ctx context.Context, doc Document) {
	p.Scan(ctx, doc)
	p.Wait()
}

// ResetNavigation prepares the pipeline for a new logical page: a fresh page
// may legitimately reuse a snap id, so the rendered set is cleared. The
// visited set is keyed by URL rather than by document element here, so it is
// cleared too or links shared across pages would never render again.
func (p *Pipeline) ResetNavigation() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rendered = make(map[string]struct{})
	p.visited = make(map[string]struct{})
}

// isRendered checks the rendered set without claiming the id.
func (p *Pipeline) isRendered(snapID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, done := p.rendered[snapID]
	return done
}

// markRendered claims a snap id, returning false if another task already
// holds it.
func (p *Pipeline) markRendered(snapID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, done := p.rendered[snapID]; done {
		return false
	}
	p.rendered[snapID] = struct{}{}
	return true
}
