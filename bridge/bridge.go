// Package bridge multiplexes wallet requests over an asynchronous transport.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
)

// DefaultTimeout bounds how long a wallet call may stay pending. Signature
// requests sit behind a human approving a prompt, so this is generous.
const DefaultTimeout = 60 * time.Second

var (
	// ErrNotReady is returned for calls made before the wallet side has
	// announced itself.
	ErrNotReady = errors.New("wallet bridge is not ready")
	// ErrTimeout is returned when the wallet never answers a request.
	ErrTimeout = errors.New("wallet request timed out")
	// ErrClosed is returned for calls made after the bridge has shut down.
	ErrClosed = errors.New("wallet bridge is closed")
)

// CallError is a failure reported by the wallet itself, as opposed to a
// transport problem.
type CallError struct {
	Method  string
	Message string
}

func (e CallError) Error() string {
	return fmt.Sprintf("wallet call %s failed: %s", e.Method, e.Message)
}

// Request is one outbound wallet call.
type Request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is one inbound wallet message: either an answer to a Request,
// matched by ID, or a readiness announcement.
type Response struct {
	ID     string          `json:"id,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
	Ready  bool            `json:"ready,omitempty"`
}

// Transport moves messages to and from the wallet side.
type Transport interface {
	Send(ctx context.Context, req Request) error
	// Receive blocks until the next wallet message arrives. It returns an
	// error when the transport is gone for good.
	Receive(ctx context.Context) (Response, error)
	Close() error
}

// Bridge correlates requests with responses by ID so any number of callers
// can share one transport. Calls made before the wallet announces readiness
// fail fast instead of queueing.
type Bridge struct {
	transport Transport
	timeout   time.Duration

	mu      sync.Mutex
	pending map[string]chan Response
	ready   bool
	closed  bool

	done chan struct{}
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(b *Bridge) { b.timeout = d }
}

// New creates a Bridge and starts its receive loop.
func New(transport Transport, opts ...Option) *Bridge {
	b := &Bridge{
		transport: transport,
		timeout:   DefaultTimeout,
		pending:   make(map[string]chan Response),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.receiveLoop()
	return b
}

// Ready reports whether the wallet side has announced itself.
func (b *Bridge) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ready
}

// Close shuts down the bridge. Pending calls fail with ErrClosed.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for id, ch := range b.pending {
		close(ch)
		delete(b.pending, id)
	}
	b.mu.Unlock()

	close(b.done)
	return b.transport.Close()
}

func (b *Bridge) receiveLoop() {
	ctx := context.Background()
	for {
		select {
		case <-b.done:
			return
		default:
		}

		resp, err := b.transport.Receive(ctx)
		if err != nil {
			select {
			case <-b.done:
			default:
				slog.Warn("wallet transport receive failed",
					slog.String("error", err.Error()),
					slog.String("module", "bridge"),
				)
			}
			return
		}

		if resp.Ready {
			b.mu.Lock()
			b.ready = true
			b.mu.Unlock()
			continue
		}

		b.mu.Lock()
		ch, ok := b.pending[resp.ID]
		if ok {
			delete(b.pending, resp.ID)
		}
		b.mu.Unlock()

		if !ok {
			// Stale answer for a call that already timed out.
			continue
		}
		ch <- resp
	}
}

// Call sends one request and waits for its answer.
func (b *Bridge) Call(ctx context.Context, method string, params any, result any) error {
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("encode wallet params: %w", err)
		}
		raw = data
	}

	req := Request{
		ID:     snaps.GenerateSnapID(16),
		Method: method,
		Params: raw,
	}

	ch := make(chan Response, 1)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	if !b.ready {
		b.mu.Unlock()
		return ErrNotReady
	}
	b.pending[req.ID] = ch
	b.mu.Unlock()

	if err := b.transport.Send(ctx, req); err != nil {
		b.mu.Lock()
		delete(b.pending, req.ID)
		b.mu.Unlock()
		return fmt.Errorf("send wallet request: %w", err)
	}

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	select {
	case resp, ok := <-ch:
		if !ok {
			return ErrClosed
		}
		if resp.Error != "" {
			return CallError{Method: method, Message: resp.Error}
		}
		if result != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("decode wallet result: %w", err)
			}
		}
		return nil
	case <-timer.C:
		b.mu.Lock()
		delete(b.pending, req.ID)
		b.mu.Unlock()
		return ErrTimeout
	case <-ctx.Done():
		b.mu.Lock()
		delete(b.pending, req.ID)
		b.mu.Unlock()
		return ctx.Err()
	}
}

// IsConnected reports whether the wallet is connected to the page.
func (b *Bridge) IsConnected(ctx context.Context) (bool, error) {
	var connected bool
	err := b.Call(ctx, "isConnected", nil, &connected)
	return connected, err
}

// IsAllowed reports whether the page is authorized to request signatures.
func (b *Bridge) IsAllowed(ctx context.Context) (bool, error) {
	var allowed bool
	err := b.Call(ctx, "isAllowed", nil, &allowed)
	return allowed, err
}

// SetAllowed asks the wallet to authorize the page, prompting the user.
func (b *Bridge) SetAllowed(ctx context.Context) (bool, error) {
	var allowed bool
	err := b.Call(ctx, "setAllowed", nil, &allowed)
	return allowed, err
}

// GetAddress returns the active wallet address.
func (b *Bridge) GetAddress(ctx context.Context) (string, error) {
	var out struct {
		Address string `json:"address"`
	}
	if err := b.Call(ctx, "getAddress", nil, &out); err != nil {
		return "", err
	}
	return out.Address, nil
}

// GetNetwork returns the network the wallet is currently on.
func (b *Bridge) GetNetwork(ctx context.Context) (snaps.Network, error) {
	var out struct {
		Network string `json:"network"`
	}
	if err := b.Call(ctx, "getNetwork", nil, &out); err != nil {
		return "", err
	}
	return snaps.Network(out.Network), nil
}

// SignTransaction asks the wallet to sign a transaction envelope, returning
// the signed XDR.
func (b *Bridge) SignTransaction(ctx context.Context, xdr string, passphrase string) (string, error) {
	params := map[string]string{
		"xdr":               xdr,
		"networkPassphrase": passphrase,
	}
	var out struct {
		SignedTxXdr string `json:"signedTxXdr"`
	}
	if err := b.Call(ctx, "signTransaction", params, &out); err != nil {
		return "", err
	}
	return out.SignedTxXdr, nil
}
