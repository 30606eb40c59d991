package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
	"github.com/stellarsnaps/stellarsnaps-go/internal/domain"
	"github.com/stellarsnaps/stellarsnaps-go/resolver"
)

// resolveCacheTTL keeps resolved short links for an hour; shorteners are
// effectively immutable mappings.
const resolveCacheTTL = time.Hour

// URLResolver expands a shortened URL by following its redirects.
type URLResolver interface {
	Resolve(ctx context.Context, rawurl string) (snaps.ResolvedURL, error)
}

// ResolveUsecase is the server side of short-link expansion: browser-bound
// callers cannot follow cross-origin redirects themselves, so they delegate
// here. Results are cached in the shared cache so every client benefits.
type ResolveUsecase struct {
	resolver URLResolver
	cache    Cache
}

func NewResolveUsecase(res URLResolver, cache Cache) *ResolveUsecase {
	return &ResolveUsecase{resolver: res, cache: cache}
}

// Resolve expands rawurl, serving from cache when a previous caller already
// resolved it.
func (uc *ResolveUsecase) Resolve(ctx context.Context, rawurl string) (snaps.ResolvedURL, error) {
	ctx, span := tracer.Start(ctx, "Resolve.Usecase.Resolve")
	defer span.End()

	if rawurl == "" {
		return snaps.ResolvedURL{}, domain.ValidationError{Reason: "url is required"}
	}

	cacheKey := "resolve:" + rawurl
	if cached, found, err := uc.cache.Get(ctx, cacheKey); err == nil && found {
		var resolved snaps.ResolvedURL
		if err := json.Unmarshal([]byte(cached), &resolved); err == nil {
			return resolved, nil
		}
	}

	resolved, err := uc.resolver.Resolve(ctx, rawurl)
	if err != nil {
		return snaps.ResolvedURL{}, errors.Wrap(err, "failed to resolve url")
	}

	if !resolver.IsShortener(rawurl) {
		// Direct URLs are cheap; only shortened ones earn a cache slot.
		return resolved, nil
	}

	if data, err := json.Marshal(resolved); err == nil {
		if err := uc.cache.Set(ctx, cacheKey, string(data), resolveCacheTTL); err != nil {
			slog.Warn("failed to cache resolved url",
				slog.String("error", err.Error()),
				slog.String("module", "usecase"),
			)
		}
	}

	return resolved, nil
}
