package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
	"github.com/stellarsnaps/stellarsnaps-go/bridge"
)

type fakeWallet struct {
	connected bool
	allowed   bool
	address   string
	network   snaps.Network
	signErr   error
}

func (w *fakeWallet) IsConnected(ctx context.Context) (bool, error) { return w.connected, nil }
func (w *fakeWallet) IsAllowed(ctx context.Context) (bool, error)   { return w.allowed, nil }
func (w *fakeWallet) SetAllowed(ctx context.Context) (bool, error) {
	w.allowed = true
	return true, nil
}
func (w *fakeWallet) GetAddress(ctx context.Context) (string, error) { return w.address, nil }
func (w *fakeWallet) GetNetwork(ctx context.Context) (snaps.Network, error) {
	return w.network, nil
}
func (w *fakeWallet) SignTransaction(ctx context.Context, xdr, passphrase string) (string, error) {
	if w.signErr != nil {
		return "", w.signErr
	}
	return "signed:" + xdr, nil
}

type fakeTxService struct {
	buildErr  error
	seqErr    error
	submitErr error
	lastBuild snaps.BuildTxRequest
}

func (s *fakeTxService) BuildTransaction(ctx context.Context, req snaps.BuildTxRequest) (string, error) {
	s.lastBuild = req
	if s.buildErr != nil {
		return "", s.buildErr
	}
	return "unsigned-xdr", nil
}

func (s *fakeTxService) GetAccountSequence(ctx context.Context, horizonURL, address string) (int64, error) {
	if s.seqErr != nil {
		return 0, s.seqErr
	}
	return 42, nil
}

func (s *fakeTxService) SubmitTransaction(ctx context.Context, horizonURL, signedXDR string) (string, error) {
	if s.submitErr != nil {
		return "", s.submitErr
	}
	return "txhash", nil
}

// slowWallet holds the connection check open until gate closes.
type slowWallet struct {
	*fakeWallet
	gate chan struct{}
}

func (w *slowWallet) IsConnected(ctx context.Context) (bool, error) {
	<-w.gate
	return w.fakeWallet.IsConnected(ctx)
}

func goodWallet() *fakeWallet {
	return &fakeWallet{
		connected: true,
		allowed:   true,
		address:   "GSOURCE",
		network:   snaps.NetworkTestnet,
	}
}

func testMeta() snaps.SnapMetadata {
	return snaps.SnapMetadata{
		ID:          "abc123",
		Title:       "Coffee fund",
		Destination: "GDEST",
		Amount:      "5",
		AssetCode:   "XLM",
		Network:     "testnet",
	}
}

func TestPaymentSuccess(t *testing.T) {
	wallet := goodWallet()
	txs := &fakeTxService{}
	p := NewPayment(wallet, txs, testMeta())

	var states []PaymentState
	p.OnStateChange(func(s PaymentState) { states = append(states, s) })

	hash, err := p.Execute(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "txhash", hash)
	assert.Equal(t, StateSuccess, p.State())
	assert.Equal(t, []PaymentState{
		StateConnecting, StateBuilding, StateAwaitingSignature, StateSubmitting, StateSuccess,
	}, states)

	assert.Equal(t, "GSOURCE", txs.lastBuild.Source)
	assert.Equal(t, "42", txs.lastBuild.Sequence)
	assert.Equal(t, "5", txs.lastBuild.Amount)

	assert.Equal(t, "https://stellar.expert/explorer/testnet/tx/txhash", p.ExplorerURL())
}

func TestPaymentNotConnected(t *testing.T) {
	wallet := goodWallet()
	wallet.connected = false
	p := NewPayment(wallet, &fakeTxService{}, testMeta())

	_, err := p.Execute(context.Background(), "")
	assert.ErrorIs(t, err, ErrWalletNotConnected)
	assert.Equal(t, StateFailed, p.State())
}

func TestPaymentPermissionGrantedOnDemand(t *testing.T) {
	wallet := goodWallet()
	wallet.allowed = false
	p := NewPayment(wallet, &fakeTxService{}, testMeta())

	_, err := p.Execute(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, wallet.allowed)
}

func TestPaymentWrongNetwork(t *testing.T) {
	wallet := goodWallet()
	wallet.network = snaps.NetworkPublic
	p := NewPayment(wallet, &fakeTxService{}, testMeta())

	_, err := p.Execute(context.Background(), "")
	assert.ErrorIs(t, err, ErrWrongNetwork)
	assert.Equal(t, StateFailed, p.State())
}

func TestPaymentMissingNetworkMeansTestnet(t *testing.T) {
	meta := testMeta()
	meta.Network = ""

	// A public wallet must not satisfy metadata that left the network out.
	wallet := goodWallet()
	wallet.network = snaps.NetworkPublic
	p := NewPayment(wallet, &fakeTxService{}, meta)

	_, err := p.Execute(context.Background(), "")
	require.ErrorIs(t, err, ErrWrongNetwork)
	assert.Equal(t, StateFailed, p.State())

	txs := &fakeTxService{}
	p2 := NewPayment(goodWallet(), txs, meta)

	_, err = p2.Execute(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "testnet", txs.lastBuild.Network)
	assert.Equal(t, "https://stellar.expert/explorer/testnet/tx/txhash", p2.ExplorerURL())
}

func TestPaymentRejectsConcurrentExecute(t *testing.T) {
	wallet := &slowWallet{fakeWallet: goodWallet(), gate: make(chan struct{})}
	p := NewPayment(wallet, &fakeTxService{}, testMeta())

	done := make(chan error, 1)
	go func() {
		_, err := p.Execute(context.Background(), "")
		done <- err
	}()

	require.Eventually(t, func() bool {
		return p.State() == StateConnecting
	}, time.Second, time.Millisecond)

	_, err := p.Execute(context.Background(), "")
	require.ErrorIs(t, err, ErrPaymentInFlight)

	close(wallet.gate)
	require.NoError(t, <-done)
	assert.Equal(t, StateSuccess, p.State())
}

func TestPaymentOpenAmount(t *testing.T) {
	meta := testMeta()
	meta.Amount = ""
	txs := &fakeTxService{}
	p := NewPayment(goodWallet(), txs, meta)

	_, err := p.Execute(context.Background(), "25.5")
	require.NoError(t, err)
	assert.Equal(t, "25.5", txs.lastBuild.Amount)

	p2 := NewPayment(goodWallet(), &fakeTxService{}, meta)
	_, err = p2.Execute(context.Background(), "not-a-number")
	assert.Error(t, err)
	assert.Equal(t, StateFailed, p2.State())
}

func TestPaymentCancelled(t *testing.T) {
	wallet := goodWallet()
	wallet.signErr = bridge.CallError{Method: "signTransaction", Message: "User declined access"}
	p := NewPayment(wallet, &fakeTxService{}, testMeta())

	_, err := p.Execute(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, StateCancelled, p.State())

	// Cancelled is terminal.
	_, err = p.Execute(context.Background(), "")
	assert.ErrorIs(t, err, ErrPaymentDone)
}

func TestPaymentFailedIsRetryable(t *testing.T) {
	txs := &fakeTxService{submitErr: errors.New("tx_bad_seq")}
	p := NewPayment(goodWallet(), txs, testMeta())

	_, err := p.Execute(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, StateFailed, p.State())

	txs.submitErr = nil
	hash, err := p.Execute(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "txhash", hash)
	assert.Equal(t, StateSuccess, p.State())
}
