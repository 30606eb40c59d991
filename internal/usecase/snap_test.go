package usecase

import (
	"context"
	"errors"
	"testing"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
	"github.com/stellarsnaps/stellarsnaps-go/internal/domain"
)

type mockSnapRepo struct {
	snaps   map[string]snaps.Snap
	deleted string
}

func newMockSnapRepo() *mockSnapRepo {
	return &mockSnapRepo{snaps: map[string]snaps.Snap{}}
}

func (m *mockSnapRepo) Create(ctx context.Context, snap snaps.Snap) error {
	m.snaps[snap.ID] = snap
	return nil
}

func (m *mockSnapRepo) Get(ctx context.Context, id string) (snaps.Snap, error) {
	snap, ok := m.snaps[id]
	if !ok {
		return snaps.Snap{}, domain.NotFoundError{Resource: "snap"}
	}
	return snap, nil
}

func (m *mockSnapRepo) ListByCreator(ctx context.Context, creator string) ([]snaps.Snap, error) {
	var out []snaps.Snap
	for _, snap := range m.snaps {
		if snap.Creator == creator {
			out = append(out, snap)
		}
	}
	return out, nil
}

func (m *mockSnapRepo) Delete(ctx context.Context, id string) error {
	m.deleted = id
	delete(m.snaps, id)
	return nil
}

type mockPublisher struct {
	events []Event
}

func (m *mockPublisher) Publish(ctx context.Context, channel string, event Event) error {
	m.events = append(m.events, event)
	return nil
}

const (
	testCreator = "GCREATORAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	testDest    = "GDESTAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
)

func validSnap() snaps.Snap {
	return snaps.Snap{
		Creator:     testCreator,
		Title:       "Coffee fund",
		Destination: testDest,
	}
}

func TestSnapCreateAssignsIDAndPublishes(t *testing.T) {
	repo := newMockSnapRepo()
	pub := &mockPublisher{}
	uc := NewSnapUsecase(repo, pub)

	created, err := uc.Create(context.Background(), validSnap())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !snaps.IsValidSnapID(created.ID) {
		t.Fatalf("expected a valid snap id, got %q", created.ID)
	}
	if created.AssetCode != "XLM" {
		t.Fatalf("expected default asset code XLM, got %q", created.AssetCode)
	}
	if len(pub.events) != 1 || pub.events[0].Type != "snap.created" {
		t.Fatalf("expected one snap.created event, got %+v", pub.events)
	}
}

func TestSnapCreateRejectsBadInput(t *testing.T) {
	uc := NewSnapUsecase(newMockSnapRepo(), &mockPublisher{})
	ctx := context.Background()

	bad := validSnap()
	bad.Destination = "not-an-address"
	if _, err := uc.Create(ctx, bad); !errors.Is(err, domain.ValidationError{}) {
		t.Fatalf("expected validation error for destination, got %v", err)
	}

	bad = validSnap()
	amount := "-5"
	bad.Amount = &amount
	if _, err := uc.Create(ctx, bad); !errors.Is(err, domain.ValidationError{}) {
		t.Fatalf("expected validation error for amount, got %v", err)
	}

	bad = validSnap()
	bad.AssetCode = "USDC"
	if _, err := uc.Create(ctx, bad); !errors.Is(err, domain.ValidationError{}) {
		t.Fatalf("expected validation error for missing issuer, got %v", err)
	}

	bad = validSnap()
	bad.Title = ""
	if _, err := uc.Create(ctx, bad); !errors.Is(err, domain.ValidationError{}) {
		t.Fatalf("expected validation error for title, got %v", err)
	}
}

func TestSnapDeleteOwnership(t *testing.T) {
	repo := newMockSnapRepo()
	pub := &mockPublisher{}
	uc := NewSnapUsecase(repo, pub)
	ctx := context.Background()

	created, err := uc.Create(ctx, validSnap())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err = uc.Delete(ctx, created.ID, testDest)
	if !errors.Is(err, domain.UnauthorizedError{}) {
		t.Fatalf("expected unauthorized for non-owner, got %v", err)
	}

	if err := uc.Delete(ctx, created.ID, testCreator); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if repo.deleted != created.ID {
		t.Fatalf("expected delete of %s, got %s", created.ID, repo.deleted)
	}
}

func TestSnapGetInvalidID(t *testing.T) {
	uc := NewSnapUsecase(newMockSnapRepo(), &mockPublisher{})

	_, err := uc.Get(context.Background(), "???")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for malformed id, got %v", err)
	}
}
