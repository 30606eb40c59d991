package snaps

import (
	"time"
)

// Network identifies a Stellar network.
type Network string

const (
	NetworkPublic  Network = "public"
	NetworkTestnet Network = "testnet"
)

// NetworkPassphrases maps each network to its signing passphrase.
var NetworkPassphrases = map[Network]string{
	NetworkPublic:  "Public Global Stellar Network ; September 2015",
	NetworkTestnet: "Test SDF Network ; September 2015",
}

// HorizonURLs maps each network to its Horizon REST endpoint.
var HorizonURLs = map[Network]string{
	NetworkPublic:  "https://horizon.stellar.org",
	NetworkTestnet: "https://horizon-testnet.stellar.org",
}

// MemoType selects how a transaction memo is encoded.
type MemoType string

const (
	MemoText   MemoType = "MEMO_TEXT"
	MemoID     MemoType = "MEMO_ID"
	MemoHash   MemoType = "MEMO_HASH"
	MemoReturn MemoType = "MEMO_RETURN"
)

// WellKnownPath is where a domain publishes its discovery file.
const WellKnownPath = "/.well-known/stellar-snap.json"

// Snap is a shareable payment request as stored and served by a snap server.
type Snap struct {
	ID          string    `json:"id"`
	Creator     string    `json:"creator,omitempty"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	Destination string    `json:"destination"`
	Amount      *string   `json:"amount,omitempty"`
	AssetCode   string    `json:"assetCode"`
	AssetIssuer *string   `json:"assetIssuer,omitempty"`
	Memo        *string   `json:"memo,omitempty"`
	MemoType    string    `json:"memoType,omitempty"`
	Network     string    `json:"network"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// SnapMetadata is what a domain's metadata endpoint returns for rendering.
// It is untrusted third-party input: display fields must be escaped before
// they reach any markup.
type SnapMetadata struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Destination string `json:"destination"`
	Amount      string `json:"amount,omitempty"`
	AssetCode   string `json:"assetCode,omitempty"`
	AssetIssuer string `json:"assetIssuer,omitempty"`
	Memo        string `json:"memo,omitempty"`
	MemoType    string `json:"memoType,omitempty"`
	Network     string `json:"network,omitempty"`
}

// DomainStatus is the trust level of a registered domain.
type DomainStatus string

const (
	StatusTrusted    DomainStatus = "trusted"
	StatusUnverified DomainStatus = "unverified"
	StatusBlocked    DomainStatus = "blocked"
)

// RegistryEntry is one domain's record in the central trust registry.
type RegistryEntry struct {
	Domain      string       `json:"domain"`
	Status      DomainStatus `json:"status"`
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	Icon        string       `json:"icon,omitempty"`
}

// RegistryListing is the wire format of the registry endpoint.
type RegistryListing struct {
	Domains []RegistryEntry `json:"domains"`
}

// DiscoveryRule maps a URL path pattern to the API path serving its metadata.
// The pattern uses `*` as a greedy wildcard; the API path uses $1..$n for the
// captured groups in order.
type DiscoveryRule struct {
	PathPattern string `json:"pathPattern"`
	APIPath     string `json:"apiPath"`
}

// DiscoveryFile is a domain's self-declared routing manifest, served at
// WellKnownPath.
type DiscoveryFile struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Icon        string          `json:"icon,omitempty"`
	Rules       []DiscoveryRule `json:"rules"`
}

// ResolvedURL is the outcome of short-link resolution.
type ResolvedURL struct {
	URL          string `json:"url"`
	Domain       string `json:"domain"`
	OriginalURL  string `json:"originalUrl"`
	WasShortened bool   `json:"wasShortened"`
}

// BuildTxRequest is the body of a domain's transaction-build endpoint.
type BuildTxRequest struct {
	Source      string `json:"source"`
	Sequence    string `json:"sequence"`
	Destination string `json:"destination"`
	Amount      string `json:"amount"`
	AssetCode   string `json:"assetCode,omitempty"`
	AssetIssuer string `json:"assetIssuer,omitempty"`
	Memo        string `json:"memo,omitempty"`
	MemoType    string `json:"memoType,omitempty"`
	Network     string `json:"network"`
}

// BuildTxResponse carries the unsigned transaction envelope.
type BuildTxResponse struct {
	XDR string `json:"xdr"`
}
