// Package client talks to the snap service, the registry, and Horizon.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	client    *http.Client
	cache     *cache.Cache
	baseURL   string
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithUserAgent sets the User-Agent header on outgoing requests.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a client for the snap service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		client:  &http.Client{Timeout: defaultTimeout},
		cache:   cache.New(10*time.Minute, 15*time.Minute),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, rawurl string, body any, result any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, rawurl, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return NotFoundError{Resource: rawurl}
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return UnauthorizedError{Resource: rawurl}
	case resp.StatusCode >= 400:
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}

// CreateSnap registers a new snap and returns it with its assigned ID.
func (c *Client) CreateSnap(ctx context.Context, snap snaps.Snap) (snaps.Snap, error) {
	var created snaps.Snap
	err := c.do(ctx, http.MethodPost, c.baseURL+"/api/snaps", snap, &created)
	if err != nil {
		return snaps.Snap{}, fmt.Errorf("failed to create snap: %w", err)
	}
	return created, nil
}

// GetSnap fetches a snap by ID.
func (c *Client) GetSnap(ctx context.Context, id string) (snaps.Snap, error) {
	var snap snaps.Snap
	err := c.do(ctx, http.MethodGet, c.baseURL+"/api/snap/"+url.PathEscape(id), nil, &snap)
	if err != nil {
		return snaps.Snap{}, err
	}
	return snap, nil
}

// ListSnaps fetches the snaps created by an owner address.
func (c *Client) ListSnaps(ctx context.Context, owner string) ([]snaps.Snap, error) {
	var list []snaps.Snap
	err := c.do(ctx, http.MethodGet, c.baseURL+"/api/snaps?owner="+url.QueryEscape(owner), nil, &list)
	if err != nil {
		return nil, fmt.Errorf("failed to list snaps: %w", err)
	}
	return list, nil
}

// DeleteSnap removes a snap owned by the caller.
func (c *Client) DeleteSnap(ctx context.Context, id, owner string) error {
	rawurl := c.baseURL + "/api/snap/" + url.PathEscape(id) + "?owner=" + url.QueryEscape(owner)
	return c.do(ctx, http.MethodDelete, rawurl, nil, nil)
}

// FetchRegistry retrieves the current domain trust listing.
func (c *Client) FetchRegistry(ctx context.Context) (snaps.RegistryListing, error) {
	var listing snaps.RegistryListing
	err := c.do(ctx, http.MethodGet, c.baseURL+"/api/registry", nil, &listing)
	if err != nil {
		return snaps.RegistryListing{}, fmt.Errorf("failed to fetch registry: %w", err)
	}
	return listing, nil
}

// ResolveURL asks the service to expand a shortened URL.
func (c *Client) ResolveURL(ctx context.Context, rawurl string) (snaps.ResolvedURL, error) {
	var resolved snaps.ResolvedURL
	endpoint := c.baseURL + "/api/resolve?url=" + url.QueryEscape(rawurl)
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resolved)
	if err != nil {
		return snaps.ResolvedURL{}, fmt.Errorf("failed to resolve url: %w", err)
	}
	return resolved, nil
}

// FetchDiscoveryFile retrieves and caches a domain's discovery file from its
// well-known path. Localhost domains are fetched over plain HTTP so local
// development works.
func (c *Client) FetchDiscoveryFile(ctx context.Context, domain string) (snaps.DiscoveryFile, error) {
	cacheKey := "discovery:" + domain
	if x, found := c.cache.Get(cacheKey); found {
		return x.(snaps.DiscoveryFile), nil
	}

	scheme := "https"
	if strings.HasPrefix(domain, "localhost") || strings.HasPrefix(domain, "127.0.0.1") {
		scheme = "http"
	}

	var file snaps.DiscoveryFile
	err := c.do(ctx, http.MethodGet, scheme+"://"+domain+snaps.WellKnownPath, nil, &file)
	if err != nil {
		return snaps.DiscoveryFile{}, err
	}

	c.cache.Set(cacheKey, file, cache.DefaultExpiration)
	return file, nil
}

// FetchMetadata retrieves display metadata for a snap from a domain's API.
func (c *Client) FetchMetadata(ctx context.Context, rawurl string) (snaps.SnapMetadata, error) {
	var meta snaps.SnapMetadata
	err := c.do(ctx, http.MethodGet, rawurl, nil, &meta)
	if err != nil {
		return snaps.SnapMetadata{}, err
	}
	return meta, nil
}

// BuildTransaction asks the service to build an unsigned payment envelope.
func (c *Client) BuildTransaction(ctx context.Context, req snaps.BuildTxRequest) (string, error) {
	var resp snaps.BuildTxResponse
	err := c.do(ctx, http.MethodPost, c.baseURL+"/api/build-tx", req, &resp)
	if err != nil {
		return "", fmt.Errorf("failed to build transaction: %w", err)
	}
	return resp.XDR, nil
}

// GetAccountSequence fetches an account's current sequence number from
// Horizon. An account missing from the ledger returns ErrAccountNotFunded.
func (c *Client) GetAccountSequence(ctx context.Context, horizonURL, address string) (int64, error) {
	var account struct {
		Sequence string `json:"sequence"`
	}
	endpoint := strings.TrimSuffix(horizonURL, "/") + "/accounts/" + url.PathEscape(address)
	err := c.do(ctx, http.MethodGet, endpoint, nil, &account)
	if err != nil {
		if errors.Is(err, NotFoundError{}) {
			return 0, ErrAccountNotFunded
		}
		return 0, fmt.Errorf("failed to fetch account: %w", err)
	}

	seq, err := strconv.ParseInt(account.Sequence, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse sequence number: %v", err)
	}
	return seq, nil
}

// SubmitTransaction posts a signed envelope to Horizon. A rejected
// transaction surfaces its result code as a SubmissionError.
func (c *Client) SubmitTransaction(ctx context.Context, horizonURL, signedXDR string) (string, error) {
	form := url.Values{"tx": {signedXDR}}
	endpoint := strings.TrimSuffix(horizonURL, "/") + "/transactions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var failure struct {
			Extras struct {
				ResultCodes struct {
					Transaction string `json:"transaction"`
				} `json:"result_codes"`
			} `json:"extras"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		code := failure.Extras.ResultCodes.Transaction
		if code == "" {
			code = "tx_failed"
		}
		return "", SubmissionError{ResultCode: code}
	}

	var success struct {
		Hash string `json:"hash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&success); err != nil {
		return "", fmt.Errorf("failed to decode submit response: %v", err)
	}
	return success.Hash, nil
}
