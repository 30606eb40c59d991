// Package sep7 constructs and parses web+stellar: payment and transaction
// URIs (SEP-0007).
package sep7

import (
	"net/url"
	"strings"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
)

const (
	// Scheme is the SEP-0007 URI scheme literal, including the colon.
	Scheme = "web+stellar:"

	// OpPay and OpTx are the two supported operations.
	OpPay = "pay"
	OpTx  = "tx"

	maxMessageLength = 300
)

// Param is one key/value pair of a URI query, pre-encoding.
type Param struct {
	Key   string
	Value string
}

// Result is a constructed URI together with its structured parameters in
// serialization order.
type Result struct {
	URI    string
	Params []Param
}

// PaymentOptions configures CreatePayment.
type PaymentOptions struct {
	Destination string
	Amount      string
	AssetCode   string
	AssetIssuer string
	Memo        string
	MemoType    snaps.MemoType
	// Network defaults to public; the public passphrase is implicit and
	// never serialized.
	Network  snaps.Network
	Message  string
	Callback string
}

// TransactionOptions configures CreateTransaction.
type TransactionOptions struct {
	XDR      string
	Network  snaps.Network
	Message  string
	Callback string
	Pubkey   string
}

// Parsed is the structured form of a web+stellar: URI.
type Parsed struct {
	Kind              string
	Destination       string
	Amount            string
	AssetCode         string
	AssetIssuer       string
	Memo              string
	MemoType          string
	NetworkPassphrase string
	Message           string
	Callback          string
	XDR               string
	Pubkey            string
}

// CreatePayment builds a web+stellar:pay URI.
func CreatePayment(opts PaymentOptions) (Result, error) {
	if !snaps.IsValidAddress(opts.Destination) {
		return Result{}, InvalidAddressError{Address: opts.Destination}
	}

	if opts.Amount != "" && !snaps.IsValidAmount(opts.Amount) {
		return Result{}, InvalidAmountError{Amount: opts.Amount}
	}

	if opts.AssetCode != "" && opts.AssetCode != "XLM" && opts.AssetIssuer == "" {
		return Result{}, InvalidAssetError{Reason: "asset_issuer required for non-XLM assets"}
	}

	if len(opts.Message) > maxMessageLength {
		return Result{}, InvalidURIError{Reason: "Message cannot exceed 300 characters"}
	}

	params := []Param{{Key: "destination", Value: opts.Destination}}

	if opts.Amount != "" {
		params = append(params, Param{Key: "amount", Value: opts.Amount})
	}
	if opts.AssetCode != "" && opts.AssetCode != "XLM" {
		params = append(params,
			Param{Key: "asset_code", Value: opts.AssetCode},
			Param{Key: "asset_issuer", Value: opts.AssetIssuer},
		)
	}
	if opts.Memo != "" {
		params = append(params, Param{Key: "memo", Value: opts.Memo})
		memoType := opts.MemoType
		if memoType == "" {
			memoType = snaps.MemoText
		}
		params = append(params, Param{Key: "memo_type", Value: string(memoType)})
	}
	params = appendCommon(params, opts.Network, opts.Message, opts.Callback)

	return Result{URI: Scheme + OpPay + "?" + encode(params), Params: params}, nil
}

// CreateTransaction builds a web+stellar:tx URI carrying an opaque XDR blob.
// Pubkey is passed through without address validation.
func CreateTransaction(opts TransactionOptions) (Result, error) {
	if opts.XDR == "" {
		return Result{}, MissingParameterError{Param: "xdr"}
	}

	if len(opts.Message) > maxMessageLength {
		return Result{}, InvalidURIError{Reason: "Message cannot exceed 300 characters"}
	}

	params := []Param{{Key: "xdr", Value: opts.XDR}}
	params = appendCommon(params, opts.Network, opts.Message, opts.Callback)
	if opts.Pubkey != "" {
		params = append(params, Param{Key: "pubkey", Value: opts.Pubkey})
	}

	return Result{URI: Scheme + OpTx + "?" + encode(params), Params: params}, nil
}

// appendCommon adds the parameters shared by both operations. The network
// passphrase is only serialized when the network is not public, since public
// is the implicit default.
func appendCommon(params []Param, network snaps.Network, message, callback string) []Param {
	if network != "" && network != snaps.NetworkPublic {
		if passphrase, ok := snaps.NetworkPassphrases[network]; ok {
			params = append(params, Param{Key: "network_passphrase", Value: passphrase})
		}
	}
	if message != "" {
		params = append(params, Param{Key: "msg", Value: message})
	}
	if callback != "" {
		params = append(params, Param{Key: "callback", Value: "url:" + callback})
	}
	return params
}

// encode joins params as key=value pairs in order, percent-encoding values.
func encode(params []Param) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(encodeComponent(p.Value))
	}
	return b.String()
}

// encodeComponent percent-encodes a value, using %20 for spaces.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Parse decodes a web+stellar: URI into its structured form. The url: prefix
// on callback values is stripped.
func Parse(uri string) (Parsed, error) {
	if !strings.HasPrefix(uri, Scheme) {
		return Parsed{}, InvalidURIError{Reason: "Invalid SEP-0007 URI: must start with web+stellar:"}
	}

	rest := uri[len(Scheme):]
	op := rest
	query := ""
	if idx := strings.IndexByte(rest, '?'); idx >= 0 {
		op = rest[:idx]
		query = rest[idx+1:]
	}

	if op != OpPay && op != OpTx {
		return Parsed{}, InvalidOperationError{Operation: op}
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return Parsed{}, InvalidURIError{Reason: "Invalid SEP-0007 URI: malformed query"}
	}

	parsed := Parsed{
		Kind:              op,
		Destination:       values.Get("destination"),
		Amount:            values.Get("amount"),
		AssetCode:         values.Get("asset_code"),
		AssetIssuer:       values.Get("asset_issuer"),
		Memo:              values.Get("memo"),
		MemoType:          values.Get("memo_type"),
		NetworkPassphrase: values.Get("network_passphrase"),
		Message:           values.Get("msg"),
		Callback:          strings.TrimPrefix(values.Get("callback"), "url:"),
		XDR:               values.Get("xdr"),
		Pubkey:            values.Get("pubkey"),
	}

	switch op {
	case OpPay:
		if parsed.Destination == "" {
			return Parsed{}, MissingParameterError{Param: "destination"}
		}
	case OpTx:
		if parsed.XDR == "" {
			return Parsed{}, MissingParameterError{Param: "xdr"}
		}
	}

	return parsed, nil
}
