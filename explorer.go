package snaps

import "net/url"

// Explorer identifies a block explorer service.
type Explorer string

const (
	ExplorerStellarExpert Explorer = "stellar.expert"
	ExplorerStellarchain  Explorer = "stellarchain"
	ExplorerHorizon       Explorer = "horizon"
)

// ExplorerURLs maps each explorer to its per-network base URL.
var ExplorerURLs = map[Explorer]map[Network]string{
	ExplorerStellarExpert: {
		NetworkPublic:  "https://stellar.expert/explorer/public",
		NetworkTestnet: "https://stellar.expert/explorer/testnet",
	},
	ExplorerStellarchain: {
		NetworkPublic:  "https://stellarchain.io",
		NetworkTestnet: "https://testnet.stellarchain.io",
	},
	ExplorerHorizon: {
		NetworkPublic:  "https://horizon.stellar.org",
		NetworkTestnet: "https://horizon-testnet.stellar.org",
	},
}

func explorerBase(explorer Explorer, network Network) (string, bool) {
	networks, ok := ExplorerURLs[explorer]
	if !ok {
		return "", false
	}
	base, ok := networks[network]
	return base, ok
}

// TransactionURL links a submitted transaction on the given explorer.
func TransactionURL(hash string, network Network, explorer Explorer) string {
	base, ok := explorerBase(explorer, network)
	if !ok {
		return ""
	}
	if explorer == ExplorerStellarExpert {
		return base + "/tx/" + hash
	}
	return base + "/transactions/" + hash
}

// AccountURL links an account on the given explorer.
func AccountURL(address string, network Network, explorer Explorer) string {
	base, ok := explorerBase(explorer, network)
	if !ok {
		return ""
	}
	if explorer == ExplorerStellarExpert {
		return base + "/account/" + address
	}
	return base + "/accounts/" + address
}

// AssetURL links an issued asset on the given explorer.
func AssetURL(code, issuer string, network Network, explorer Explorer) string {
	base, ok := explorerBase(explorer, network)
	if !ok {
		return ""
	}
	switch explorer {
	case ExplorerStellarExpert:
		return base + "/asset/" + code + "-" + issuer
	case ExplorerStellarchain:
		return base + "/assets/" + code + ":" + issuer
	default:
		return base + "/assets?asset_code=" + url.QueryEscape(code) + "&asset_issuer=" + url.QueryEscape(issuer)
	}
}

// OperationURL links a single operation on the given explorer.
func OperationURL(operationID string, network Network, explorer Explorer) string {
	base, ok := explorerBase(explorer, network)
	if !ok {
		return ""
	}
	if explorer == ExplorerStellarExpert {
		return base + "/op/" + operationID
	}
	return base + "/operations/" + operationID
}
