package usecase

import (
	"context"
	"testing"
	"time"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
)

type mockResolver struct {
	calls int
}

func (m *mockResolver) Resolve(ctx context.Context, rawurl string) (snaps.ResolvedURL, error) {
	m.calls++
	return snaps.ResolvedURL{
		URL:          "https://pay.example.com/s/abc123",
		Domain:       "pay.example.com",
		OriginalURL:  rawurl,
		WasShortened: true,
	}, nil
}

type mockCache struct {
	store map[string]string
}

func newMockCache() *mockCache {
	return &mockCache{store: map[string]string{}}
}

func (m *mockCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := m.store[key]
	return v, ok, nil
}

func (m *mockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.store[key] = value
	return nil
}

func TestResolveUsecaseCachesShortened(t *testing.T) {
	res := &mockResolver{}
	cache := newMockCache()
	uc := NewResolveUsecase(res, cache)
	ctx := context.Background()

	first, err := uc.Resolve(ctx, "https://bit.ly/abc")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	second, err := uc.Resolve(ctx, "https://bit.ly/abc")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if res.calls != 1 {
		t.Fatalf("expected one upstream resolve, got %d", res.calls)
	}
	if first.URL != second.URL {
		t.Fatalf("cache returned a different result: %q vs %q", first.URL, second.URL)
	}
}

func TestResolveUsecaseSkipsCacheForDirect(t *testing.T) {
	res := &mockResolver{}
	cache := newMockCache()
	uc := NewResolveUsecase(res, cache)

	if _, err := uc.Resolve(context.Background(), "https://pay.example.com/s/abc123"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(cache.store) != 0 {
		t.Fatalf("direct urls should not be cached, got %v", cache.store)
	}
}

func TestResolveUsecaseRejectsEmpty(t *testing.T) {
	uc := NewResolveUsecase(&mockResolver{}, newMockCache())

	if _, err := uc.Resolve(context.Background(), ""); err == nil {
		t.Fatal("expected an error for empty url")
	}
}
