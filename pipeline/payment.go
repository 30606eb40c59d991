package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
	"github.com/stellarsnaps/stellarsnaps-go/bridge"
)

// PaymentState is one stage of the payment flow.
type PaymentState int

const (
	StateIdle PaymentState = iota
	StateConnecting
	StateBuilding
	StateAwaitingSignature
	StateSubmitting
	StateSuccess
	StateFailed
	StateCancelled
)

func (s PaymentState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateBuilding:
		return "building"
	case StateAwaitingSignature:
		return "awaiting_signature"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

var (
	// ErrWalletNotConnected means no usable wallet address was available.
	ErrWalletNotConnected = errors.New("wallet not connected")
	// ErrWrongNetwork means the wallet is on a different network than the
	// snap declares. The user must switch manually.
	ErrWrongNetwork = errors.New("wallet is on the wrong network")
	// ErrPaymentDone means Execute was called on a finished payment.
	ErrPaymentDone = errors.New("payment already completed")
	// ErrPaymentInFlight means Execute was called while a previous call is
	// still running.
	ErrPaymentInFlight = errors.New("payment already in progress")
)

// WalletBridge is the wallet side of the payment flow.
type WalletBridge interface {
	IsConnected(ctx context.Context) (bool, error)
	IsAllowed(ctx context.Context) (bool, error)
	SetAllowed(ctx context.Context) (bool, error)
	GetAddress(ctx context.Context) (string, error)
	GetNetwork(ctx context.Context) (snaps.Network, error)
	SignTransaction(ctx context.Context, xdr, passphrase string) (string, error)
}

// TxService builds and submits transactions.
type TxService interface {
	BuildTransaction(ctx context.Context, req snaps.BuildTxRequest) (string, error)
	GetAccountSequence(ctx context.Context, horizonURL, address string) (int64, error)
	SubmitTransaction(ctx context.Context, horizonURL, signedXDR string) (string, error)
}

// Payment drives one card's pay button through its states. Success and
// Cancelled are terminal; a Failed payment can be executed again.
type Payment struct {
	wallet WalletBridge
	txs    TxService
	meta   snaps.SnapMetadata

	// onState, when set, observes every transition.
	onState func(PaymentState)

	mu    sync.Mutex
	state PaymentState
	hash  string
}

// NewPayment creates an idle payment for a card's metadata.
func NewPayment(wallet WalletBridge, txs TxService, meta snaps.SnapMetadata) *Payment {
	return &Payment{wallet: wallet, txs: txs, meta: meta, state: StateIdle}
}

// OnStateChange registers a transition observer. Must be called before
// Execute.
func (p *Payment) OnStateChange(fn func(PaymentState)) {
	p.onState = fn
}

// State returns the current state.
func (p *Payment) State() PaymentState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Hash returns the transaction hash after a successful submit.
func (p *Payment) Hash() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hash
}

// ExplorerURL links the submitted transaction on stellar.expert, or "" before
// a successful submit.
func (p *Payment) ExplorerURL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hash == "" {
		return ""
	}
	network := snaps.Network(p.meta.Network)
	if network == "" {
		network = snaps.NetworkTestnet
	}
	return snaps.TransactionURL(p.hash, network, snaps.ExplorerStellarExpert)
}

func (p *Payment) transition(state PaymentState) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
	if p.onState != nil {
		p.onState(state)
	}
}

// Execute runs the payment to a terminal state. amount is the operator-entered
// amount for open snaps; ignored when the snap fixes one. Returns the
// transaction hash on success. A user declining the signature lands in
// StateCancelled, not StateFailed; the error is still returned so callers can
// show why nothing was submitted.
func (p *Payment) Execute(ctx context.Context, amount string) (string, error) {
	p.mu.Lock()
	switch p.state {
	case StateSuccess, StateCancelled:
		p.mu.Unlock()
		return "", ErrPaymentDone
	case StateIdle, StateFailed:
	default:
		p.mu.Unlock()
		return "", ErrPaymentInFlight
	}
	// Claim the payment under the same lock so two Execute calls cannot
	// interleave their transitions.
	p.state = StateConnecting
	p.mu.Unlock()
	if p.onState != nil {
		p.onState(StateConnecting)
	}

	hash, err := p.run(ctx, amount)
	switch {
	case err == nil:
		p.mu.Lock()
		p.hash = hash
		p.mu.Unlock()
		p.transition(StateSuccess)
	case isCancellation(err):
		p.transition(StateCancelled)
	default:
		p.transition(StateFailed)
	}
	return hash, err
}

func (p *Payment) run(ctx context.Context, amount string) (string, error) {
	address, err := p.connect(ctx)
	if err != nil {
		return "", err
	}

	p.transition(StateBuilding)

	// Metadata that omits the network means testnet, never the public
	// ledger; the wallet has to disagree loudly rather than spend real
	// funds on a guess.
	network := snaps.Network(p.meta.Network)
	if network == "" {
		network = snaps.NetworkTestnet
	}
	passphrase, ok := snaps.NetworkPassphrases[network]
	if !ok {
		return "", fmt.Errorf("unknown network %q", p.meta.Network)
	}

	walletNetwork, err := p.wallet.GetNetwork(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read wallet network: %w", err)
	}
	if snaps.NetworkPassphrases[walletNetwork] != passphrase {
		return "", ErrWrongNetwork
	}

	finalAmount := p.meta.Amount
	if finalAmount == "" {
		finalAmount = amount
	}
	if !snaps.IsValidAmount(finalAmount) {
		return "", fmt.Errorf("invalid amount: %q", finalAmount)
	}

	horizonURL := snaps.HorizonURLs[network]
	seq, err := p.txs.GetAccountSequence(ctx, horizonURL, address)
	if err != nil {
		return "", err
	}

	xdr, err := p.txs.BuildTransaction(ctx, snaps.BuildTxRequest{
		Source:      address,
		Sequence:    strconv.FormatInt(seq, 10),
		Destination: p.meta.Destination,
		Amount:      finalAmount,
		AssetCode:   p.meta.AssetCode,
		AssetIssuer: p.meta.AssetIssuer,
		Memo:        p.meta.Memo,
		MemoType:    p.meta.MemoType,
		Network:     string(network),
	})
	if err != nil {
		return "", err
	}

	p.transition(StateAwaitingSignature)

	signed, err := p.wallet.SignTransaction(ctx, xdr, passphrase)
	if err != nil {
		return "", err
	}

	p.transition(StateSubmitting)

	return p.txs.SubmitTransaction(ctx, horizonURL, signed)
}

// connect verifies the wallet connection, requests permission if needed, and
// returns the active address.
func (p *Payment) connect(ctx context.Context) (string, error) {
	connected, err := p.wallet.IsConnected(ctx)
	if err != nil || !connected {
		return "", ErrWalletNotConnected
	}

	allowed, err := p.wallet.IsAllowed(ctx)
	if err != nil {
		return "", ErrWalletNotConnected
	}
	if !allowed {
		allowed, err = p.wallet.SetAllowed(ctx)
		if err != nil || !allowed {
			return "", ErrWalletNotConnected
		}
	}

	address, err := p.wallet.GetAddress(ctx)
	if err != nil || address == "" {
		return "", ErrWalletNotConnected
	}
	return address, nil
}

// isCancellation distinguishes a user declining the wallet prompt from a real
// failure. The wallet reports declines as call errors with human phrasing, so
// this is a message match.
func isCancellation(err error) bool {
	var callErr bridge.CallError
	if !errors.As(err, &callErr) {
		return false
	}
	msg := strings.ToLower(callErr.Message)
	return strings.Contains(msg, "declin") ||
		strings.Contains(msg, "cancel") ||
		strings.Contains(msg, "reject")
}
