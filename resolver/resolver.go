// Package resolver classifies and expands shortened URLs.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
)

// ShortenerDomains lists the known URL shortener services. A hostname equal to
// or under any of these is treated as shortened.
var ShortenerDomains = []string{
	"t.co", "bit.ly", "goo.gl", "tinyurl.com", "ow.ly", "is.gd", "buff.ly",
	"adf.ly", "bit.do", "mcaf.ee", "su.pr", "twit.ac", "tiny.cc", "lnkd.in",
	"db.tt", "qr.ae", "cur.lv", "ity.im", "q.gs", "po.st", "bc.vc", "u.to",
	"j.mp", "buzurl.com", "cutt.us", "u.bb", "yourls.org", "x.co",
	"prettylinkpro.com", "viralurl.com", "twitthis.com", "shorturl.at",
	"rb.gy", "shorturl.com",
}

const defaultTimeout = 10 * time.Second

// Resolver expands shortened URLs, caching results by the exact input string
// for its own lifetime. With a proxy URL configured it delegates resolution to
// the central resolve endpoint instead of following redirects itself, for
// callers that cannot traverse cross-origin redirects.
type Resolver struct {
	client   *http.Client
	cache    *cache.Cache
	proxyURL string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithProxy routes resolution through the central resolve endpoint.
func WithProxy(proxyURL string) Option {
	return func(r *Resolver) { r.proxyURL = proxyURL }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

func New(opts ...Option) *Resolver {
	r := &Resolver{
		client: &http.Client{Timeout: defaultTimeout},
		cache:  cache.New(cache.NoExpiration, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsShortener reports whether the URL's hostname is, or is a subdomain of, a
// known shortener. Unparseable URLs are not shorteners.
func IsShortener(rawurl string) bool {
	u, err := url.Parse(rawurl)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range ShortenerDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Resolve expands rawurl. Non-shortened URLs return immediately without any
// network call. Shortened URLs are followed via HEAD (or the proxy endpoint)
// and cached; a failed resolution falls back to the original URL rather than
// erroring, since not every dead short link matters.
func (r *Resolver) Resolve(ctx context.Context, rawurl string) (snaps.ResolvedURL, error) {
	u, err := url.Parse(rawurl)
	if err != nil || u.Host == "" {
		return snaps.ResolvedURL{}, fmt.Errorf("unparseable url: %s", rawurl)
	}

	if !IsShortener(rawurl) {
		return snaps.ResolvedURL{
			URL:         rawurl,
			Domain:      strings.ToLower(u.Host),
			OriginalURL: rawurl,
		}, nil
	}

	if cached, found := r.cache.Get(rawurl); found {
		return cached.(snaps.ResolvedURL), nil
	}

	resolved, err := r.follow(ctx, rawurl)
	if err != nil {
		return snaps.ResolvedURL{
			URL:          rawurl,
			Domain:       strings.ToLower(u.Host),
			OriginalURL:  rawurl,
			WasShortened: true,
		}, nil
	}

	r.cache.Set(rawurl, resolved, cache.NoExpiration)
	return resolved, nil
}

func (r *Resolver) follow(ctx context.Context, rawurl string) (snaps.ResolvedURL, error) {
	if r.proxyURL != "" {
		return r.viaProxy(ctx, rawurl)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawurl, nil)
	if err != nil {
		return snaps.ResolvedURL{}, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return snaps.ResolvedURL{}, err
	}
	defer resp.Body.Close()

	final := resp.Request.URL
	return snaps.ResolvedURL{
		URL:          final.String(),
		Domain:       strings.ToLower(final.Host),
		OriginalURL:  rawurl,
		WasShortened: true,
	}, nil
}

func (r *Resolver) viaProxy(ctx context.Context, rawurl string) (snaps.ResolvedURL, error) {
	endpoint := r.proxyURL + "?url=" + url.QueryEscape(rawurl)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return snaps.ResolvedURL{}, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return snaps.ResolvedURL{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return snaps.ResolvedURL{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body snaps.ResolvedURL
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return snaps.ResolvedURL{}, fmt.Errorf("failed to decode resolve response: %v", err)
	}
	body.OriginalURL = rawurl
	body.WasShortened = true
	return body, nil
}
