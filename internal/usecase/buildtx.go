package usecase

import (
	"context"
	"encoding/hex"
	"strconv"

	"github.com/pkg/errors"
	"github.com/stellar/go/txnbuild"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
	"github.com/stellarsnaps/stellarsnaps-go/internal/domain"
)

// txTimeout bounds how long a built envelope stays signable.
const txTimeout = 180

type BuildTxUsecase struct{}

func NewBuildTxUsecase() *BuildTxUsecase {
	return &BuildTxUsecase{}
}

// Build assembles an unsigned payment envelope for the requested transfer.
// Signing is the wallet's job; this never sees a key.
func (uc *BuildTxUsecase) Build(ctx context.Context, req snaps.BuildTxRequest) (snaps.BuildTxResponse, error) {
	_, span := tracer.Start(ctx, "BuildTx.Usecase.Build")
	defer span.End()

	if !snaps.IsValidAddress(req.Source) {
		return snaps.BuildTxResponse{}, domain.ValidationError{Reason: "invalid source address"}
	}
	if !snaps.IsValidAddress(req.Destination) {
		return snaps.BuildTxResponse{}, domain.ValidationError{Reason: "invalid destination address"}
	}
	if !snaps.IsValidAmount(req.Amount) {
		return snaps.BuildTxResponse{}, domain.ValidationError{Reason: "invalid amount"}
	}

	seq, err := strconv.ParseInt(req.Sequence, 10, 64)
	if err != nil {
		return snaps.BuildTxResponse{}, domain.ValidationError{Reason: "invalid sequence number"}
	}

	asset, err := buildAsset(req.AssetCode, req.AssetIssuer)
	if err != nil {
		return snaps.BuildTxResponse{}, err
	}

	memo, err := buildMemo(req.Memo, req.MemoType)
	if err != nil {
		return snaps.BuildTxResponse{}, err
	}

	sourceAccount := txnbuild.SimpleAccount{
		AccountID: req.Source,
		Sequence:  seq,
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &sourceAccount,
		IncrementSequenceNum: true,
		BaseFee:              txnbuild.MinBaseFee,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimeout(txTimeout),
		},
		Memo: memo,
		Operations: []txnbuild.Operation{
			&txnbuild.Payment{
				Destination: req.Destination,
				Amount:      req.Amount,
				Asset:       asset,
			},
		},
	})
	if err != nil {
		span.RecordError(errors.Wrap(err, "failed to build transaction"))
		return snaps.BuildTxResponse{}, errors.Wrap(err, "failed to build transaction")
	}

	xdr, err := tx.Base64()
	if err != nil {
		span.RecordError(errors.Wrap(err, "failed to encode transaction"))
		return snaps.BuildTxResponse{}, errors.Wrap(err, "failed to encode transaction")
	}

	return snaps.BuildTxResponse{XDR: xdr}, nil
}

// buildAsset selects native XLM or a credit asset with its issuer.
func buildAsset(code, issuer string) (txnbuild.Asset, error) {
	if code == "" || code == "XLM" {
		return txnbuild.NativeAsset{}, nil
	}
	if !snaps.IsValidAssetCode(code) {
		return nil, domain.ValidationError{Reason: "invalid asset code"}
	}
	if !snaps.IsValidAddress(issuer) {
		return nil, domain.ValidationError{Reason: "non-native asset requires an issuer address"}
	}
	return txnbuild.CreditAsset{Code: code, Issuer: issuer}, nil
}

func buildMemo(memo, memoType string) (txnbuild.Memo, error) {
	if memo == "" {
		return nil, nil
	}

	switch snaps.MemoType(memoType) {
	case snaps.MemoText, "":
		if len(memo) > 28 {
			return nil, domain.ValidationError{Reason: "text memo exceeds 28 bytes"}
		}
		return txnbuild.MemoText(memo), nil
	case snaps.MemoID:
		id, err := strconv.ParseUint(memo, 10, 64)
		if err != nil {
			return nil, domain.ValidationError{Reason: "id memo must be an unsigned integer"}
		}
		return txnbuild.MemoID(id), nil
	case snaps.MemoHash, snaps.MemoReturn:
		raw, err := hex.DecodeString(memo)
		if err != nil || len(raw) != 32 {
			return nil, domain.ValidationError{Reason: "hash memo must be 32 hex-encoded bytes"}
		}
		var h [32]byte
		copy(h[:], raw)
		if snaps.MemoType(memoType) == snaps.MemoReturn {
			return txnbuild.MemoReturn(h), nil
		}
		return txnbuild.MemoHash(h), nil
	default:
		return nil, domain.ValidationError{Reason: "unknown memo type"}
	}
}
