package usecase

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
	"github.com/stellarsnaps/stellarsnaps-go/internal/domain"
)

var tracer = otel.Tracer("usecase")

// EventChannel is the pubsub channel snap lifecycle events are published on.
const EventChannel = "snaps:events"

type SnapUsecase struct {
	repo   SnapRepository
	events EventPublisher
}

func NewSnapUsecase(repo SnapRepository, events EventPublisher) *SnapUsecase {
	return &SnapUsecase{repo: repo, events: events}
}

// Create validates and stores a new snap, assigning it an identifier.
func (uc *SnapUsecase) Create(ctx context.Context, snap snaps.Snap) (snaps.Snap, error) {
	ctx, span := tracer.Start(ctx, "Snap.Usecase.Create")
	defer span.End()

	if !snaps.IsValidAddress(snap.Creator) {
		return snaps.Snap{}, domain.ValidationError{Reason: "invalid creator address"}
	}
	if !snaps.IsValidAddress(snap.Destination) {
		return snaps.Snap{}, domain.ValidationError{Reason: "invalid destination address"}
	}
	if snap.Amount != nil && !snaps.IsValidAmount(*snap.Amount) {
		return snaps.Snap{}, domain.ValidationError{Reason: "invalid amount"}
	}
	if snap.AssetCode == "" {
		snap.AssetCode = "XLM"
	}
	if !snaps.IsValidAssetCode(snap.AssetCode) {
		return snaps.Snap{}, domain.ValidationError{Reason: "invalid asset code"}
	}
	if snap.AssetCode != "XLM" {
		if snap.AssetIssuer == nil || !snaps.IsValidAddress(*snap.AssetIssuer) {
			return snaps.Snap{}, domain.ValidationError{Reason: "non-native asset requires an issuer address"}
		}
	}
	if snap.Title == "" {
		return snaps.Snap{}, domain.ValidationError{Reason: "title is required"}
	}
	if snap.Network == "" {
		snap.Network = string(snaps.NetworkPublic)
	}
	if _, ok := snaps.NetworkPassphrases[snaps.Network(snap.Network)]; !ok {
		return snaps.Snap{}, domain.ValidationError{Reason: "unknown network"}
	}

	snap.ID = snaps.GenerateSnapID(8)

	if err := uc.repo.Create(ctx, snap); err != nil {
		span.RecordError(errors.Wrap(err, "failed to store snap"))
		return snaps.Snap{}, errors.Wrap(err, "failed to store snap")
	}

	if err := uc.events.Publish(ctx, EventChannel, Event{Type: "snap.created", Snap: snap}); err != nil {
		slog.Warn("failed to publish snap event",
			slog.String("error", err.Error()),
			slog.String("module", "usecase"),
		)
	}

	return snap, nil
}

// Get fetches a snap by ID.
func (uc *SnapUsecase) Get(ctx context.Context, id string) (snaps.Snap, error) {
	ctx, span := tracer.Start(ctx, "Snap.Usecase.Get")
	defer span.End()

	if !snaps.IsValidSnapID(id) {
		return snaps.Snap{}, domain.NotFoundError{Resource: "snap"}
	}
	return uc.repo.Get(ctx, id)
}

// List fetches the snaps created by an address.
func (uc *SnapUsecase) List(ctx context.Context, creator string) ([]snaps.Snap, error) {
	ctx, span := tracer.Start(ctx, "Snap.Usecase.List")
	defer span.End()

	if !snaps.IsValidAddress(creator) {
		return nil, domain.ValidationError{Reason: "invalid creator address"}
	}
	return uc.repo.ListByCreator(ctx, creator)
}

// Delete removes a snap; only its creator may do so.
func (uc *SnapUsecase) Delete(ctx context.Context, id, caller string) error {
	ctx, span := tracer.Start(ctx, "Snap.Usecase.Delete")
	defer span.End()

	snap, err := uc.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if snap.Creator != caller {
		return domain.UnauthorizedError{Resource: "snap"}
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		span.RecordError(errors.Wrap(err, "failed to delete snap"))
		return errors.Wrap(err, "failed to delete snap")
	}

	if err := uc.events.Publish(ctx, EventChannel, Event{Type: "snap.deleted", Snap: snap}); err != nil {
		slog.Warn("failed to publish snap event",
			slog.String("error", err.Error()),
			slog.String("module", "usecase"),
		)
	}
	return nil
}
