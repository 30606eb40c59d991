package usecase

import (
	"context"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
	"github.com/stellarsnaps/stellarsnaps-go/internal/domain"
)

type RegistryUsecase struct {
	repo RegistryRepository
}

func NewRegistryUsecase(repo RegistryRepository) *RegistryUsecase {
	return &RegistryUsecase{repo: repo}
}

// List returns every registered domain.
func (uc *RegistryUsecase) List(ctx context.Context) (snaps.RegistryListing, error) {
	ctx, span := tracer.Start(ctx, "Registry.Usecase.List")
	defer span.End()

	entries, err := uc.repo.List(ctx)
	if err != nil {
		return snaps.RegistryListing{}, err
	}
	return snaps.RegistryListing{Domains: entries}, nil
}

// Get returns one domain's entry. The domain is normalized before lookup.
func (uc *RegistryUsecase) Get(ctx context.Context, domainName string) (snaps.RegistryEntry, error) {
	ctx, span := tracer.Start(ctx, "Registry.Usecase.Get")
	defer span.End()

	normalized := snaps.NormalizeDomain(domainName)
	if normalized == "" {
		return snaps.RegistryEntry{}, domain.ValidationError{Reason: "domain is required"}
	}
	return uc.repo.Get(ctx, normalized)
}

// Register upserts a domain entry. Unknown statuses are rejected.
func (uc *RegistryUsecase) Register(ctx context.Context, entry snaps.RegistryEntry) error {
	ctx, span := tracer.Start(ctx, "Registry.Usecase.Register")
	defer span.End()

	entry.Domain = snaps.NormalizeDomain(entry.Domain)
	if entry.Domain == "" {
		return domain.ValidationError{Reason: "domain is required"}
	}
	switch entry.Status {
	case snaps.StatusTrusted, snaps.StatusUnverified, snaps.StatusBlocked:
	default:
		return domain.ValidationError{Reason: "unknown status"}
	}
	return uc.repo.Upsert(ctx, entry)
}
