// Package registry maintains the local view of domain trust status.
package registry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
)

// DefaultTTL is how long a fetched registry listing stays fresh.
const DefaultTTL = 5 * time.Minute

// Fetcher retrieves the current registry listing from the central service.
type Fetcher interface {
	FetchRegistry(ctx context.Context) (snaps.RegistryListing, error)
}

// Store persists the registry listing between runs.
type Store interface {
	Load() (snaps.RegistryListing, time.Time, error)
	Save(listing snaps.RegistryListing, fetchedAt time.Time) error
}

// Client answers domain trust lookups, refreshing its listing from the
// central service when the cached copy goes stale. A fetch failure keeps
// serving the stale listing.
type Client struct {
	fetcher Fetcher
	store   Store
	ttl     time.Duration

	mu        sync.Mutex
	listing   snaps.RegistryListing
	fetchedAt time.Time

	// selfDomain is always trusted regardless of the listing, so the
	// service's own links render without a registry round trip.
	selfDomain string
}

// Option configures a Client.
type Option func(*Client)

// WithTTL overrides the refresh interval.
func WithTTL(ttl time.Duration) Option {
	return func(c *Client) { c.ttl = ttl }
}

// WithStore persists the listing across restarts.
func WithStore(s Store) Option {
	return func(c *Client) { c.store = s }
}

// WithSelfDomain marks a domain as always trusted.
func WithSelfDomain(domain string) Option {
	return func(c *Client) { c.selfDomain = snaps.NormalizeDomain(domain) }
}

func NewClient(fetcher Fetcher, opts ...Option) *Client {
	c := &Client{
		fetcher: fetcher,
		ttl:     DefaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store != nil {
		listing, fetchedAt, err := c.store.Load()
		if err != nil {
			slog.Warn("failed to load registry store",
				slog.String("error", err.Error()),
				slog.String("module", "registry"),
			)
		} else {
			c.listing = listing
			c.fetchedAt = fetchedAt
		}
	}
	return c
}

// Lookup returns the trust entry for a domain, and whether the domain is
// registered at all. The domain is normalized (lowercased, one leading
// "www." stripped) before matching.
func (c *Client) Lookup(ctx context.Context, domain string) (snaps.RegistryEntry, bool, error) {
	normalized := snaps.NormalizeDomain(domain)

	if c.selfDomain != "" && normalized == c.selfDomain {
		return snaps.RegistryEntry{Domain: normalized, Status: snaps.StatusTrusted}, true, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Since(c.fetchedAt) >= c.ttl {
		c.refresh(ctx)
	}

	for _, entry := range c.listing.Domains {
		if snaps.NormalizeDomain(entry.Domain) == normalized {
			e := entry
			e.Domain = normalized
			return e, true, nil
		}
	}
	return snaps.RegistryEntry{}, false, nil
}

// Refresh forces a fetch regardless of TTL.
func (c *Client) Refresh(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refresh(ctx)
}

// refresh fetches a new listing; caller holds c.mu.
func (c *Client) refresh(ctx context.Context) {
	listing, err := c.fetcher.FetchRegistry(ctx)
	if err != nil {
		slog.Warn("registry fetch failed, serving stale listing",
			slog.String("error", err.Error()),
			slog.String("module", "registry"),
		)
		// Bump fetchedAt anyway so a dead registry is not hammered on
		// every lookup.
		c.fetchedAt = time.Now()
		return
	}

	c.listing = listing
	c.fetchedAt = time.Now()

	if c.store != nil {
		if err := c.store.Save(listing, c.fetchedAt); err != nil {
			slog.Warn("failed to persist registry listing",
				slog.String("error", err.Error()),
				slog.String("module", "registry"),
			)
		}
	}
}
