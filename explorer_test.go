package snaps

import "testing"

func TestTransactionURL(t *testing.T) {
	hash := "abc123"

	got := TransactionURL(hash, NetworkTestnet, ExplorerStellarExpert)
	if got != "https://stellar.expert/explorer/testnet/tx/abc123" {
		t.Fatalf("unexpected url %q", got)
	}

	got = TransactionURL(hash, NetworkPublic, ExplorerStellarchain)
	if got != "https://stellarchain.io/transactions/abc123" {
		t.Fatalf("unexpected url %q", got)
	}

	if TransactionURL(hash, Network("mainnet"), ExplorerHorizon) != "" {
		t.Fatalf("expected empty url for unknown network")
	}
}

func TestAccountURL(t *testing.T) {
	addr := "GDQP2KPQGKIHYJGXNUIYOMHARUARCA7DJT5FO2FFOOUJ3DTJE4QRK764"

	got := AccountURL(addr, NetworkTestnet, ExplorerStellarExpert)
	if got != "https://stellar.expert/explorer/testnet/account/"+addr {
		t.Fatalf("unexpected url %q", got)
	}

	got = AccountURL(addr, NetworkPublic, ExplorerHorizon)
	if got != "https://horizon.stellar.org/accounts/"+addr {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestAssetURL(t *testing.T) {
	issuer := "GCNY5OXYSY4FKHOPT2SPOQZAOEIGXB5LBYW3HVU3OWSTQITS65M5RCNY"

	got := AssetURL("USDC", issuer, NetworkPublic, ExplorerStellarExpert)
	if got != "https://stellar.expert/explorer/public/asset/USDC-"+issuer {
		t.Fatalf("unexpected url %q", got)
	}

	got = AssetURL("USDC", issuer, NetworkPublic, ExplorerStellarchain)
	if got != "https://stellarchain.io/assets/USDC:"+issuer {
		t.Fatalf("unexpected url %q", got)
	}

	got = AssetURL("USDC", issuer, NetworkTestnet, ExplorerHorizon)
	if got != "https://horizon-testnet.stellar.org/assets?asset_code=USDC&asset_issuer="+issuer {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestOperationURL(t *testing.T) {
	got := OperationURL("123456", NetworkPublic, ExplorerStellarExpert)
	if got != "https://stellar.expert/explorer/public/op/123456" {
		t.Fatalf("unexpected url %q", got)
	}
}
